// Package components defines ECS components for the diorama scenes.
package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/diorama/systems"
)

// Pose is the displayed transform handed to the viewer each tick.
type Pose struct {
	systems.Transform
}

// Boid marks a flock member. Position lives in Pose.
type Boid struct {
	Velocity mgl32.Vec3
	Species  systems.Species
	Flock    uint8 // index into the scene's flocks
}

// Animated is an entity under oscillator motion.
// Agent.Base is the only field mutated after spawn.
type Animated struct {
	Agent       systems.OscillatorAgent
	TargetScale mgl32.Vec3 // base scale eases toward this
	Proportions mgl32.Vec3 // per-axis shape; zero means uniform
	EaseRate    float32    // per second; 0 snaps
}

// Level is the target scale with the proportions divided out.
func (a *Animated) Level() float32 {
	if a.Proportions[0] == 0 {
		return a.TargetScale[0]
	}
	return a.TargetScale[0] / a.Proportions[0]
}

// SetLevel aims the target scale at level, keeping the proportions.
func (a *Animated) SetLevel(level float32) {
	p := a.Proportions
	if p == (mgl32.Vec3{}) {
		p = mgl32.Vec3{1, 1, 1}
	}
	a.TargetScale = p.Mul(level)
}

// Patrol is an entity following a moving target around a circle.
type Patrol struct {
	Agent systems.PatrolAgent
}

// Tint holds the current material colors.
type Tint struct {
	Color    colorful.Color
	Emissive colorful.Color
	Alpha    float32
}

// Toggle lets a click flip an entity's target scale between Low and High.
type Toggle struct {
	Low, High float32
	Threshold float32 // target above this counts as "high"
}

// Label names an entity for display, picking and snapshots.
type Label struct {
	Group  string // config group name
	Index  int    // index within the group
	Shape  Shape
	Radius float32 // picking and draw radius at unit scale
	Height float32 // cylinder height at unit scale; 0 uses 2*Radius
}
