// Package renderer draws diorama entities with raylib.
package renderer

import (
	"math"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/diorama/camera"
	"github.com/pthm-cable/diorama/components"
	"github.com/pthm-cable/diorama/systems"
)

// Instance is one entity to draw this frame.
type Instance struct {
	Shape     components.Shape
	Transform systems.Transform
	Radius    float32
	Height    float32 // cylinders; 0 uses 2*Radius
	Color     colorful.Color
	Emissive  colorful.Color
	Alpha     float32
	Selected  bool
}

// SceneRenderer draws entity instances under an orbit camera.
type SceneRenderer struct {
	GroundSize   int32
	GroundY      float32
	ShowGround   bool
	SphereRings  int32
	CylinderSegs int32

	opaque      []Instance
	transparent []Instance
}

// NewSceneRenderer creates a renderer with default mesh detail.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		GroundSize:   100,
		GroundY:      -10,
		ShowGround:   true,
		SphereRings:  12,
		CylinderSegs: 16,
	}
}

// Camera3D converts an orbit camera to raylib's camera.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(cam.Eye()),
		Target:     vec(cam.Target),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders instances. Opaque instances are drawn first; translucent ones
// follow, farthest from the eye first. overlay, if non-nil, runs last in
// world space.
func (s *SceneRenderer) Draw(cam *camera.Camera, instances []Instance, overlay func()) {
	s.opaque = s.opaque[:0]
	s.transparent = s.transparent[:0]
	for _, inst := range instances {
		if inst.Alpha < 1 {
			s.transparent = append(s.transparent, inst)
		} else {
			s.opaque = append(s.opaque, inst)
		}
	}
	SortBackToFront(s.transparent, cam.Eye())

	rl.BeginMode3D(Camera3D(cam))

	if s.ShowGround {
		rl.PushMatrix()
		rl.Translatef(0, s.GroundY, 0)
		rl.DrawGrid(s.GroundSize, 2)
		rl.PopMatrix()
	}

	for i := range s.opaque {
		s.drawInstance(&s.opaque[i])
	}
	for i := range s.transparent {
		s.drawInstance(&s.transparent[i])
	}
	if overlay != nil {
		overlay()
	}

	rl.EndMode3D()
}

// Unload frees resources.
func (s *SceneRenderer) Unload() {
	s.opaque = nil
	s.transparent = nil
}

func (s *SceneRenderer) drawInstance(inst *Instance) {
	t := inst.Transform
	axis, angle := AxisAngle(t.Rotation)

	rl.PushMatrix()
	rl.Translatef(t.Position[0], t.Position[1], t.Position[2])
	if angle != 0 {
		rl.Rotatef(mgl32.RadToDeg(angle), axis[0], axis[1], axis[2])
	}
	rl.Scalef(t.Scale[0], t.Scale[1], t.Scale[2])

	col := shade(inst.Color, inst.Emissive, inst.Alpha)
	r := inst.Radius
	zero := rl.Vector3{}

	switch inst.Shape {
	case components.ShapeSphere:
		rl.DrawSphereEx(zero, r, s.SphereRings, s.SphereRings, col)
	case components.ShapeCube:
		rl.DrawCube(zero, 2*r, 2*r, 2*r, col)
	case components.ShapeCone:
		// Facing maps local -Z onto the heading.
		rl.DrawCylinderEx(rl.Vector3{Z: r}, rl.Vector3{Z: -r}, r*0.5, 0, s.CylinderSegs, col)
	case components.ShapeCylinder:
		h := inst.Height
		if h <= 0 {
			h = 2 * r
		}
		rl.DrawCylinder(rl.Vector3{Y: -h / 2}, r, r, h, s.CylinderSegs, col)
	case components.ShapeTorus:
		drawTorus(r, r*0.35, s.CylinderSegs, col)
	}

	if inst.Selected {
		rl.DrawSphereWires(zero, r*1.25, 8, 8, rl.Yellow)
	}
	rl.PopMatrix()
}

// drawTorus approximates a torus in the XZ plane with a ring of short tubes.
func drawTorus(major, minor float32, segments int32, col rl.Color) {
	step := 2 * math.Pi / float64(segments)
	for i := int32(0); i < segments; i++ {
		a0 := float64(i) * step
		a1 := a0 + step
		p0 := rl.Vector3{X: major * float32(math.Cos(a0)), Z: major * float32(math.Sin(a0))}
		p1 := rl.Vector3{X: major * float32(math.Cos(a1)), Z: major * float32(math.Sin(a1))}
		rl.DrawCylinderEx(p0, p1, minor, minor, 8, col)
		rl.DrawSphereEx(p0, minor, 6, 6, col)
	}
}

// shade mixes emissive light into the base color. Emissive is added, so a
// black emissive leaves the base unchanged.
func shade(base, emissive colorful.Color, alpha float32) rl.Color {
	lit := colorful.Color{
		R: base.R + emissive.R,
		G: base.G + emissive.G,
		B: base.B + emissive.B,
	}.Clamped()
	r, g, b := lit.RGB255()
	a := uint8(max(0, min(alpha, 1)) * 255)
	return rl.Color{R: r, G: g, B: b, A: a}
}

// AxisAngle decomposes a rotation into a unit axis and an angle in radians.
// The identity yields angle 0.
func AxisAngle(q mgl32.Quat) (mgl32.Vec3, float32) {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	w := float64(max(-1, min(q.W, 1)))
	angle := float32(2 * math.Acos(w))
	sin := float32(math.Sqrt(1 - w*w))
	if sin < 1e-6 {
		return mgl32.Vec3{1, 0, 0}, 0
	}
	return q.V.Mul(1 / sin), angle
}

// SortBackToFront orders instances by decreasing distance from eye.
func SortBackToFront(instances []Instance, eye mgl32.Vec3) {
	slices.SortStableFunc(instances, func(a, b Instance) int {
		da := a.Transform.Position.Sub(eye).LenSqr()
		db := b.Transform.Position.Sub(eye).LenSqr()
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return 0
	})
}

func vec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
