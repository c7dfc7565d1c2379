// Package camera provides an orbit camera for viewing a diorama.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clip planes for the perspective projection.
const (
	NearPlane = 0.1
	FarPlane  = 1000.0
)

// maxPitch keeps the eye off the poles so the up vector stays valid.
const maxPitch = 1.5

// Camera orbits a target point. Yaw turns around +Y, pitch lifts the eye
// above the target's horizontal plane.
type Camera struct {
	// Target is the look-at point in world coordinates
	Target mgl32.Vec3

	// Orbit angles (radians) and eye distance from Target
	Yaw, Pitch, Distance float32

	// Vertical field of view in degrees
	FOV float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home pose
}

// pose is the state restored by Reset.
type pose struct {
	target               mgl32.Vec3
	yaw, pitch, distance float32
}

// New creates a camera looking at target from the given orbit position.
func New(viewportW, viewportH float32, target mgl32.Vec3, distance, yaw, pitch float32) *Camera {
	c := &Camera{
		Target:      target,
		Yaw:         yaw,
		Pitch:       clamp(pitch, -maxPitch, maxPitch),
		Distance:    distance,
		FOV:         50,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 1,
		MaxDistance: 500,
	}
	c.home = pose{target: c.Target, yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Eye()).Normalize()
}

// Orbit rotates the eye around the target. Pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Pan moves the target in the view plane. dx, dy are fractions of the
// orbit distance so the feel is the same at any zoom.
func (c *Camera) Pan(dx, dy float32) {
	forward := c.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)
	c.Target = c.Target.Add(right.Mul(dx * c.Distance)).Add(up.Mul(dy * c.Distance))
}

// SetDistance sets the orbit distance, clamped to constraints.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy multiplies magnification by factor (>1 moves closer).
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Reset returns to the orbit the camera was created with.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.distance
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, NearPlane, FarPlane)
}

// WorldToScreen projects a world point to screen pixels (origin top-left).
// visible is false for points behind the eye.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, visible bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	sx = (ndcX + 1) / 2 * c.ViewportW
	sy = (1 - ndcY) / 2 * c.ViewportH
	return sx, sy, true
}

// Ray returns the world-space picking ray through a screen pixel.
func (c *Camera) Ray(sx, sy float32) (origin, dir mgl32.Vec3) {
	ndcX := 2*sx/c.ViewportW - 1
	ndcY := 1 - 2*sy/c.ViewportH

	inv := c.Projection().Mul4(c.View()).Inv()
	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	n := near.Vec3().Mul(1 / near.W())
	f := far.Vec3().Mul(1 / far.W())

	return c.Eye(), f.Sub(n).Normalize()
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
