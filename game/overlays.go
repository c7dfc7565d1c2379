package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// overlays are world-space debug drawings toggled from the keyboard.
type overlays struct {
	perception bool // O: selected boid's radii, heading and neighbors
	bounds     bool // B: every flock's bounds box
	paths      bool // T: patrol circles and targets
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	if rl.IsKeyPressed(rl.KeyO) {
		g.overlays.perception = !g.overlays.perception
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.overlays.bounds = !g.overlays.bounds
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.overlays.paths = !g.overlays.paths
	}
}

// drawActiveOverlays renders all currently enabled overlays. Runs inside 3D mode.
func (g *Game) drawActiveOverlays() {
	if g.overlays.perception {
		g.drawPerception()
	}
	if g.overlays.bounds {
		g.drawFlockBounds()
	}
	if g.overlays.paths {
		g.drawPatrolPaths()
	}
}

// drawPerception draws the selected boid's perception and avoidance spheres,
// its velocity, and a line to every flockmate it can currently see.
func (g *Game) drawPerception() {
	e := g.selected
	if !g.hasSel || !g.world.Alive(e) || !g.boidMap.Has(e) {
		return
	}
	pos := g.poseMap.Get(e).Position
	boid := g.boidMap.Get(e)
	params := &g.flocks[boid.Flock].params

	center := vec3(pos)
	rl.DrawSphereWires(center, params.PerceptionRadius, 8, 12, rl.Color{R: 100, G: 200, B: 100, A: 80})
	rl.DrawSphereWires(center, params.AvoidanceRadius, 6, 8, rl.Color{R: 200, G: 100, B: 100, A: 120})
	rl.DrawLine3D(center, vec3(pos.Add(boid.Velocity)), rl.Yellow)

	r2 := params.PerceptionRadius * params.PerceptionRadius
	query := g.boidFilter.Query()
	for query.Next() {
		other, ob, _, _ := query.Get()
		if ob.Flock != boid.Flock || query.Entity() == e {
			continue
		}
		if other.Position.Sub(pos).LenSqr() <= r2 {
			rl.DrawLine3D(center, vec3(other.Position), rl.Color{R: 100, G: 150, B: 200, A: 120})
		}
	}
}

// drawFlockBounds outlines each flock's bounds box. Open axes are drawn at
// a fixed extent around the flock center.
func (g *Game) drawFlockBounds() {
	const openExtent = 50
	for _, f := range g.flocks {
		b := f.params.Bounds
		if b == nil {
			continue
		}
		var c mgl32.Vec3
		if f.params.Center != nil {
			c = *f.params.Center
		}
		var lo, hi mgl32.Vec3
		for i := 0; i < 3; i++ {
			lo[i] = closeAxis(b.Min[i], c[i]-openExtent)
			hi[i] = closeAxis(b.Max[i], c[i]+openExtent)
		}
		mid := lo.Add(hi).Mul(0.5)
		size := hi.Sub(lo)
		rl.DrawCubeWires(vec3(mid), size[0], size[1], size[2], rl.Color{R: 200, G: 200, B: 200, A: 100})
	}
}

// drawPatrolPaths draws each patroller's circle and current target.
func (g *Game) drawPatrolPaths() {
	query := g.patrolFilter.Query()
	for query.Next() {
		pose, patrol, _, _ := query.Get()
		a := &patrol.Agent
		rl.DrawCircle3D(vec3(a.Center), a.Radius, rl.Vector3{X: 1}, 90, rl.Color{R: 150, G: 150, B: 220, A: 120})
		target := a.Target()
		rl.DrawSphere(vec3(target), 0.3, rl.Orange)
		rl.DrawLine3D(vec3(pose.Position), vec3(target), rl.Orange)
	}
}

func closeAxis(v, fallback float32) float32 {
	if math.IsInf(float64(v), 0) {
		return fallback
	}
	return v
}

func vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
