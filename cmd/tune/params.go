package main

import (
	"fmt"

	"github.com/pthm-cable/diorama/config"
	"github.com/pthm-cable/diorama/systems"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable flock parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the flock weight search space. Defaults are taken
// from base so the search starts at the configured flock.
func NewParamVector(base systems.FlockParams) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "separation_weight", Min: 0.1, Max: 5.0, Default: float64(base.SeparationWeight)},
			{Name: "alignment_weight", Min: 0.0, Max: 4.0, Default: float64(base.AlignmentWeight)},
			{Name: "cohesion_weight", Min: 0.0, Max: 4.0, Default: float64(base.CohesionWeight)},
			{Name: "center_pull_strength", Min: 0.0, Max: 0.5, Default: float64(base.CenterPullStrength)},
			{Name: "perception_radius", Min: 2.0, Max: 25.0, Default: float64(base.PerceptionRadius)},
			{Name: "turn_speed", Min: 0.5, Max: 8.0, Default: float64(base.TurnSpeed)},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice,
// clamped into the search bounds.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(v[i], spec.Max))
	}
	return clamped
}

// Apply writes clamped values into p. Order must match Specs.
// The avoidance radius is kept below the perception radius.
func (pv *ParamVector) Apply(p systems.FlockParams, values []float64) systems.FlockParams {
	c := pv.Clamp(values)
	p.SeparationWeight = float32(c[0])
	p.AlignmentWeight = float32(c[1])
	p.CohesionWeight = float32(c[2])
	p.CenterPullStrength = float32(c[3])
	p.PerceptionRadius = float32(c[4])
	p.TurnSpeed = float32(c[5])
	if p.AvoidanceRadius >= p.PerceptionRadius {
		p.AvoidanceRadius = p.PerceptionRadius * 0.5
	}
	return p
}

// ApplyToConfig writes values into the named flock of the named scene.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, scene, flock string, values []float64) error {
	fc, err := findFlock(cfg, scene, flock)
	if err != nil {
		return err
	}
	fc.Params.SetParams(pv.Apply(fc.Params.Params(), values))
	return nil
}

// findFlock locates a flock config. An empty flock name picks the scene's first.
func findFlock(cfg *config.Config, scene, flock string) (*config.FlockConfig, error) {
	sc, err := cfg.Scene(scene)
	if err != nil {
		return nil, err
	}
	if len(sc.Flocks) == 0 {
		return nil, fmt.Errorf("scene %q has no flocks", sc.Name)
	}
	if flock == "" {
		return &sc.Flocks[0], nil
	}
	for i := range sc.Flocks {
		if sc.Flocks[i].Name == flock {
			return &sc.Flocks[i], nil
		}
	}
	return nil, fmt.Errorf("scene %q has no flock %q", sc.Name, flock)
}
