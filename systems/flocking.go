// Package systems contains the per-tick simulation math: flocking, oscillator
// animation and patrol paths. Everything here is a pure function of its
// inputs; the game package owns the entity store and commits results.
package systems

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Member is one flock member as seen in the tick-start snapshot.
type Member struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Species  Species
}

// Result is the committed state of a member after one tick.
type Result struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}

// Neighborhood enumerates candidate neighbors of a snapshot member.
// Visit must call fn for every j != i within radius of member i; extra
// candidates are allowed since the engine re-checks distance.
// Implementations must be safe for concurrent readers.
type Neighborhood interface {
	Visit(i int, radius float32, fn func(j int))
}

// Step advances every member of a flock by dt and returns the new states in
// input order. members is read-only: forces always use tick-start state.
func Step(members []Member, params *FlockParams, dt float32) []Result {
	out := make([]Result, len(members))
	StepRange(members, params, dt, nil, 0, len(members), out)
	return out
}

// StepRange computes results for members[i0:i1] into out[i0:i1].
// A nil Neighborhood scans every member (O(N²)).
// Disjoint ranges may run concurrently over the same snapshot.
func StepRange(members []Member, params *FlockParams, dt float32, nb Neighborhood, i0, i1 int, out []Result) {
	for i := i0; i < i1; i++ {
		out[i] = stepMember(members, params, dt, nb, i)
	}
}

// steering accumulates the neighbor terms for one member.
type steering struct {
	separation mgl32.Vec3
	alignment  mgl32.Vec3
	cohesion   mgl32.Vec3
	count      int
}

func (s *steering) add(p *FlockParams, self, other *Member) {
	d := distance(self.Position, other.Position)
	// Coincident members have no direction to push along.
	if d == 0 {
		return
	}
	same := self.Species.Same(other.Species)
	if d >= p.perceptionFor(self.Species, same) {
		return
	}
	if same {
		s.cohesion = s.cohesion.Add(other.Position)
		s.alignment = s.alignment.Add(other.Velocity)
		s.count++
	}
	if d < p.AvoidanceRadius {
		// normalize(other - self) / d
		s.separation = s.separation.Sub(other.Position.Sub(self.Position).Mul(1 / (d * d)))
	}
}

func stepMember(members []Member, p *FlockParams, dt float32, nb Neighborhood, i int) Result {
	self := &members[i]

	var s steering
	if nb == nil {
		for j := range members {
			if j != i {
				s.add(p, self, &members[j])
			}
		}
	} else {
		nb.Visit(i, p.MaxPerception(), func(j int) {
			if j != i {
				s.add(p, self, &members[j])
			}
		})
	}

	if s.count > 0 {
		inv := 1 / float32(s.count)
		s.cohesion = s.cohesion.Mul(inv).Sub(self.Position)
		s.alignment = s.alignment.Mul(inv)
	}

	target := self.Velocity.
		Add(s.separation.Mul(p.SeparationWeight)).
		Add(s.alignment.Mul(p.AlignmentWeight)).
		Add(s.cohesion.Mul(p.CohesionWeight)).
		Add(centerPull(p, self.Position)).
		Add(boundsPush(p, self.Position))

	// A target with no direction keeps the current heading.
	dir := NormalizeOrZero(target)
	if dir.LenSqr() == 0 {
		dir = NormalizeOrZero(self.Velocity)
	}

	// Turning-rate limiter: exponential smoothing toward the desired velocity.
	f := clamp01(dt * p.TurnSpeed)
	vel := lerp3(self.Velocity, dir.Mul(p.MaxSpeed), f)
	vel = clampSpeed(vel, self.Velocity, p.MinSpeed, p.MaxSpeed)

	return Result{
		Position: self.Position.Add(vel.Mul(dt)),
		Velocity: vel,
	}
}

// centerPull steers toward the configured center, or the origin.
func centerPull(p *FlockParams, pos mgl32.Vec3) mgl32.Vec3 {
	var center mgl32.Vec3
	if p.Center != nil {
		center = *p.Center
	}
	return center.Sub(pos).Mul(p.CenterPullStrength)
}

// boundsPush returns a fixed-magnitude push along each axis the position has
// left. It is not proportional to how far outside the member is.
func boundsPush(p *FlockParams, pos mgl32.Vec3) mgl32.Vec3 {
	var push mgl32.Vec3
	if p.Bounds == nil {
		return push
	}
	for axis := 0; axis < 3; axis++ {
		if pos[axis] < p.Bounds.Min[axis] {
			push[axis] += p.BoundsForce
		} else if pos[axis] > p.Bounds.Max[axis] {
			push[axis] -= p.BoundsForce
		}
	}
	return push
}

// clampSpeed rescales vel into [minSpeed, maxSpeed]. When vel has no
// direction the previous heading is used, then world forward.
func clampSpeed(vel, prev mgl32.Vec3, minSpeed, maxSpeed float32) mgl32.Vec3 {
	speed := vel.Len()
	switch {
	case speed < minSpeed:
		heading := NormalizeOrZero(vel)
		if heading.LenSqr() == 0 {
			heading = NormalizeOrZero(prev)
		}
		if heading.LenSqr() == 0 {
			heading = worldForward
		}
		return heading.Mul(minSpeed)
	case speed > maxSpeed:
		return vel.Mul(maxSpeed / speed)
	}
	return vel
}
