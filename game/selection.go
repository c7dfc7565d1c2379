package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"
)

// Pick returns the nearest entity hit by a ray. dir must be unit length.
// Each entity is tested as a sphere of its label radius times its largest
// scale axis.
func (g *Game) Pick(origin, dir mgl32.Vec3) (ecs.Entity, bool) {
	var closest ecs.Entity
	closestT := float32(math.MaxFloat32)
	found := false

	query := g.labelFilter.Query()
	for query.Next() {
		pose, _, label := query.Get()
		s := pose.Scale
		radius := label.Radius * max(s[0], s[1], s[2])

		t, hit := raySphere(origin, dir, pose.Position, radius)
		if hit && t < closestT {
			closestT = t
			closest = query.Entity()
			found = true
		}
	}
	return closest, found
}

// Toggle flips a clickable prop's target scale between its low and high
// values. Its base scale then eases toward the new target. Returns false
// for entities that are gone or not clickable.
func (g *Game) Toggle(e ecs.Entity) bool {
	if !g.world.Alive(e) || !g.toggleMap.Has(e) {
		return false
	}
	t := g.toggleMap.Get(e)
	anim := g.animMap.Get(e)

	next := t.High
	if anim.Level() > t.Threshold {
		next = t.Low
	}
	anim.SetLevel(next)
	g.collector.RecordToggle()
	return true
}

// raySphere returns the distance along the ray to the first hit of a sphere.
// A ray starting inside the sphere hits at its exit point.
func raySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
