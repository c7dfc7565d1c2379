package systems

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidParams is returned when flock parameters break an invariant.
var ErrInvalidParams = errors.New("invalid flock parameters")

// DefaultCrossSpeciesPerception is the share of the perception radius used
// for members of another species.
const DefaultCrossSpeciesPerception = 0.5

// DefaultBoundsForce is the magnitude of the push back into bounds.
const DefaultBoundsForce = 2.0

// Species is an optional species tag on a flock member.
// The zero value means "no species": such members flock with everyone.
type Species struct {
	ID    uint32
	Valid bool
}

// NoSpecies is the untagged species.
var NoSpecies = Species{}

// SpeciesOf returns a tagged species.
func SpeciesOf(id uint32) Species {
	return Species{ID: id, Valid: true}
}

// Same reports whether two members school together.
// Two untagged members are the same; a tagged and an untagged member are not.
func (s Species) Same(o Species) bool {
	if s.Valid != o.Valid {
		return false
	}
	return !s.Valid || s.ID == o.ID
}

// Bounds is an axis-aligned box. Axes that should stay open use ±Inf.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// FlockParams configures one flock population. Immutable for a scene's lifetime.
type FlockParams struct {
	PerceptionRadius float32
	AvoidanceRadius  float32
	MaxSpeed         float32
	MinSpeed         float32
	TurnSpeed        float32

	SeparationWeight float32
	AlignmentWeight  float32
	CohesionWeight   float32

	CenterPullStrength float32
	Center             *mgl32.Vec3 // nil pulls toward the origin
	Bounds             *Bounds     // nil disables bounds forces
	BoundsForce        float32

	// CrossSpeciesPerception scales the perception radius for neighbors of
	// another species. Those neighbors only contribute separation.
	CrossSpeciesPerception float32

	// SpeciesPerception scales the observer's perception radius by its own
	// species. Missing entries mean 1.
	SpeciesPerception map[uint32]float32
}

// Validate checks the construction-time invariants.
func (p *FlockParams) Validate() error {
	switch {
	case p.PerceptionRadius <= 0:
		return fmt.Errorf("%w: perception_radius must be > 0, got %g", ErrInvalidParams, p.PerceptionRadius)
	case p.AvoidanceRadius < 0:
		return fmt.Errorf("%w: avoidance_radius must be >= 0, got %g", ErrInvalidParams, p.AvoidanceRadius)
	case p.AvoidanceRadius > p.PerceptionRadius:
		return fmt.Errorf("%w: avoidance_radius %g exceeds perception_radius %g", ErrInvalidParams, p.AvoidanceRadius, p.PerceptionRadius)
	case p.MinSpeed < 0:
		return fmt.Errorf("%w: min_speed must be >= 0, got %g", ErrInvalidParams, p.MinSpeed)
	case p.MinSpeed > p.MaxSpeed:
		return fmt.Errorf("%w: min_speed %g exceeds max_speed %g", ErrInvalidParams, p.MinSpeed, p.MaxSpeed)
	case p.TurnSpeed < 0:
		return fmt.Errorf("%w: turn_speed must be >= 0, got %g", ErrInvalidParams, p.TurnSpeed)
	case p.SeparationWeight < 0, p.AlignmentWeight < 0, p.CohesionWeight < 0:
		return fmt.Errorf("%w: weights must be >= 0 (separation %g, alignment %g, cohesion %g)",
			ErrInvalidParams, p.SeparationWeight, p.AlignmentWeight, p.CohesionWeight)
	case p.CenterPullStrength < 0:
		return fmt.Errorf("%w: center_pull_strength must be >= 0, got %g", ErrInvalidParams, p.CenterPullStrength)
	case p.BoundsForce < 0:
		return fmt.Errorf("%w: bounds_force must be >= 0, got %g", ErrInvalidParams, p.BoundsForce)
	case p.CrossSpeciesPerception < 0 || p.CrossSpeciesPerception > 1:
		return fmt.Errorf("%w: cross_species_perception must be in [0,1], got %g", ErrInvalidParams, p.CrossSpeciesPerception)
	}
	if p.Bounds != nil {
		for axis := 0; axis < 3; axis++ {
			if p.Bounds.Min[axis] > p.Bounds.Max[axis] {
				return fmt.Errorf("%w: bounds min %v exceeds max %v on axis %d", ErrInvalidParams, p.Bounds.Min, p.Bounds.Max, axis)
			}
		}
	}
	for id, scale := range p.SpeciesPerception {
		if scale <= 0 {
			return fmt.Errorf("%w: species %d perception scale must be > 0, got %g", ErrInvalidParams, id, scale)
		}
	}
	return nil
}

// perceptionFor returns the radius a member of species s uses for a neighbor.
func (p *FlockParams) perceptionFor(observer Species, same bool) float32 {
	r := p.PerceptionRadius
	if observer.Valid {
		if scale, ok := p.SpeciesPerception[observer.ID]; ok {
			r *= scale
		}
	}
	if !same {
		r *= p.CrossSpeciesPerception
	}
	return r
}

// MaxPerception is the largest radius any observer can use.
func (p *FlockParams) MaxPerception() float32 {
	r := p.PerceptionRadius
	for _, scale := range p.SpeciesPerception {
		if p.PerceptionRadius*scale > r {
			r = p.PerceptionRadius * scale
		}
	}
	return r
}
