package systems

import "github.com/go-gl/mathgl/mgl32"

// PatrolAgent circles a center point with a vertical undulation.
// Angle is the only state that persists between ticks.
type PatrolAgent struct {
	Center     mgl32.Vec3
	Radius     float32 // > 0
	Angle      float32 // radians in [0, 2π)
	Speed      float32 // radians per second
	Undulation float32 // vertical amplitude, bobs twice per lap
	Gain       float32 // travel speed = Speed * Gain
}

// StepPatrol advances the agent's angle by Speed*dt and returns the new
// target point on its circle. The angle only moves forward for positive
// Speed and dt.
func StepPatrol(agent *PatrolAgent, dt float32) mgl32.Vec3 {
	agent.Angle = normalizeHeading(agent.Angle + agent.Speed*dt)
	return agent.Target()
}

// Target returns the point on the patrol circle for the current angle.
func (a *PatrolAgent) Target() mgl32.Vec3 {
	return mgl32.Vec3{
		a.Center[0] + cosf(a.Angle)*a.Radius,
		a.Center[1] + sinf(a.Angle*2)*a.Undulation,
		a.Center[2] + sinf(a.Angle)*a.Radius,
	}
}

// TravelSpeed is how far the agent may move per second toward its target.
func (a *PatrolAgent) TravelSpeed() float32 {
	return a.Speed * a.Gain
}

// MoveToward steps pos toward target by at most maxStep. It stops on the
// target rather than overshooting it.
func MoveToward(pos, target mgl32.Vec3, maxStep float32) mgl32.Vec3 {
	if maxStep <= 0 {
		return pos
	}
	delta := target.Sub(pos)
	dist := delta.Len()
	if dist <= maxStep || dist == 0 {
		return target
	}
	return pos.Add(delta.Mul(maxStep / dist))
}

// Heading returns the unit direction from pos to target, or zero.
func Heading(pos, target mgl32.Vec3) mgl32.Vec3 {
	return NormalizeOrZero(target.Sub(pos))
}
