package config

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/diorama/systems"
)

const (
	defaultCrossSpeciesPerception = systems.DefaultCrossSpeciesPerception
	defaultBoundsForce            = systems.DefaultBoundsForce
)

var defaultColor = Vec3{0.8, 0.8, 0.8}

// Vec3 is a YAML [x, y, z] sequence.
type Vec3 [3]float64

// V returns the vector as mgl32.
func (v Vec3) V() mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Range is a closed interval sampled uniformly at spawn. In YAML it is
// either a scalar (fixed value) or a [min, max] pair.
type Range struct {
	Min, Max float64
}

// Fixed returns a degenerate range.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// IsZero reports whether the range was left unset.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Sample draws a value from the range.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// UnmarshalYAML accepts a scalar or a two-element sequence.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*r = Fixed(v)
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := node.Decode(&vs); err != nil {
			return err
		}
		if len(vs) != 2 {
			return fmt.Errorf("line %d: range needs [min, max], got %d values", node.Line, len(vs))
		}
		if vs[0] > vs[1] {
			return fmt.Errorf("line %d: range min %g exceeds max %g", node.Line, vs[0], vs[1])
		}
		*r = Range{Min: vs[0], Max: vs[1]}
		return nil
	}
	return fmt.Errorf("line %d: range must be a number or [min, max]", node.Line)
}

// MarshalYAML writes a fixed range as a scalar.
func (r Range) MarshalYAML() (any, error) {
	if r.Min == r.Max {
		return r.Min, nil
	}
	return []float64{r.Min, r.Max}, nil
}

// Params converts the YAML form into engine parameters.
func (p *FlockParams) Params() systems.FlockParams {
	out := systems.FlockParams{
		PerceptionRadius:       float32(p.PerceptionRadius),
		AvoidanceRadius:        float32(p.AvoidanceRadius),
		MaxSpeed:               float32(p.MaxSpeed),
		MinSpeed:               float32(p.MinSpeed),
		TurnSpeed:              float32(p.TurnSpeed),
		SeparationWeight:       float32(p.SeparationWeight),
		AlignmentWeight:        float32(p.AlignmentWeight),
		CohesionWeight:         float32(p.CohesionWeight),
		CenterPullStrength:     float32(p.CenterPullStrength),
		CrossSpeciesPerception: defaultCrossSpeciesPerception,
		BoundsForce:            defaultBoundsForce,
	}
	if p.Center != nil {
		c := p.Center.V()
		out.Center = &c
	}
	if p.Bounds != nil {
		out.Bounds = &systems.Bounds{Min: p.Bounds.Min.V(), Max: p.Bounds.Max.V()}
	}
	if p.BoundsForce != nil {
		out.BoundsForce = float32(*p.BoundsForce)
	}
	if p.CrossSpeciesPerception != nil {
		out.CrossSpeciesPerception = float32(*p.CrossSpeciesPerception)
	}
	if len(p.SpeciesPerception) > 0 {
		out.SpeciesPerception = make(map[uint32]float32, len(p.SpeciesPerception))
		for id, s := range p.SpeciesPerception {
			out.SpeciesPerception[id] = float32(s)
		}
	}
	return out
}

// SetParams writes engine parameters back into the YAML form.
// Used by the tuner to export a result.
func (p *FlockParams) SetParams(fp systems.FlockParams) {
	p.PerceptionRadius = float64(fp.PerceptionRadius)
	p.AvoidanceRadius = float64(fp.AvoidanceRadius)
	p.MaxSpeed = float64(fp.MaxSpeed)
	p.MinSpeed = float64(fp.MinSpeed)
	p.TurnSpeed = float64(fp.TurnSpeed)
	p.SeparationWeight = float64(fp.SeparationWeight)
	p.AlignmentWeight = float64(fp.AlignmentWeight)
	p.CohesionWeight = float64(fp.CohesionWeight)
	p.CenterPullStrength = float64(fp.CenterPullStrength)
}
