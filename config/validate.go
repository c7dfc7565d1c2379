package config

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/diorama/components"
	"github.com/pthm-cable/diorama/systems"
)

// ErrInvalidConfig is returned for malformed scene configuration.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks every scene. Errors name the scene and group at fault and
// wrap ErrInvalidConfig or systems.ErrInvalidParams.
func (c *Config) Validate() error {
	if c.Sim.ParallelThreshold < 0 {
		return fmt.Errorf("%w: sim.parallel_threshold must be >= 0", ErrInvalidConfig)
	}
	if c.Sim.GridCellSize < 0 {
		return fmt.Errorf("%w: sim.grid_cell_size must be >= 0", ErrInvalidConfig)
	}
	if err := c.validateGridCellSize(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Scenes))
	for i := range c.Scenes {
		sc := &c.Scenes[i]
		if sc.Name == "" {
			return fmt.Errorf("%w: scene %d has no name", ErrInvalidConfig, i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("%w: duplicate scene %q", ErrInvalidConfig, sc.Name)
		}
		seen[sc.Name] = true
		if err := sc.validate(); err != nil {
			return fmt.Errorf("scene %q: %w", sc.Name, err)
		}
	}

	if c.Sim.DefaultScene != "" && !seen[c.Sim.DefaultScene] {
		return fmt.Errorf("%w: default scene %q not defined", ErrInvalidConfig, c.Sim.DefaultScene)
	}
	return nil
}

// minGridCellShare is the smallest grid cell allowed, as a share of the
// largest perception radius. Smaller cells make every neighbor scan probe
// thousands of empty cells.
const minGridCellShare = 0.25

// validateGridCellSize rejects a grid cell that is tiny next to any flock's
// perception radius.
func (c *Config) validateGridCellSize() error {
	cell := c.Sim.GridCellSize
	if cell == 0 {
		return nil
	}
	for _, sc := range c.Scenes {
		for _, f := range sc.Flocks {
			params := f.Params.Params()
			radius := float64(params.MaxPerception())
			if cell < radius*minGridCellShare {
				return fmt.Errorf("%w: sim.grid_cell_size %g is below %g (a quarter of flock %q perception %g in scene %q)",
					ErrInvalidConfig, cell, radius*minGridCellShare, f.Name, radius, sc.Name)
			}
		}
	}
	return nil
}

func (sc *SceneConfig) validate() error {
	if len(sc.Flocks) > 256 {
		return fmt.Errorf("%w: at most 256 flocks per scene", ErrInvalidConfig)
	}
	if err := uniqueNames("flock", len(sc.Flocks), func(i int) string { return sc.Flocks[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("animated", len(sc.Animated), func(i int) string { return sc.Animated[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("patrol", len(sc.Patrols), func(i int) string { return sc.Patrols[i].Name }); err != nil {
		return err
	}
	for i := range sc.Flocks {
		f := &sc.Flocks[i]
		if err := f.validate(); err != nil {
			return fmt.Errorf("flock %q: %w", f.Name, err)
		}
	}
	for i := range sc.Animated {
		a := &sc.Animated[i]
		if err := a.validate(); err != nil {
			return fmt.Errorf("animated %q: %w", a.Name, err)
		}
	}
	for i := range sc.Patrols {
		p := &sc.Patrols[i]
		if err := p.validate(); err != nil {
			return fmt.Errorf("patrol %q: %w", p.Name, err)
		}
	}
	return nil
}

func (f *FlockConfig) validate() error {
	params := f.Params.Params()
	if err := params.Validate(); err != nil {
		return err
	}
	if _, ok := components.ParseShape(f.Shape); !ok {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, f.Shape)
	}
	for i, s := range f.Schools {
		if s.Count < 0 {
			return fmt.Errorf("%w: school %d count must be >= 0", ErrInvalidConfig, i)
		}
		if s.Speed < 0 {
			return fmt.Errorf("%w: school %d speed must be >= 0", ErrInvalidConfig, i)
		}
		if s.Size <= 0 {
			return fmt.Errorf("%w: school %d size must be > 0", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (a *AnimatedConfig) validate() error {
	if _, ok := components.ParseShape(a.Shape); !ok {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, a.Shape)
	}
	if a.Count < 0 {
		return fmt.Errorf("%w: count must be >= 0", ErrInvalidConfig)
	}
	if len(a.Positions) == 0 && a.Area == nil && a.Count > 0 {
		return fmt.Errorf("%w: needs positions or an area", ErrInvalidConfig)
	}
	if len(a.Positions) > 0 && a.Count > len(a.Positions) {
		return fmt.Errorf("%w: count %d exceeds %d positions", ErrInvalidConfig, a.Count, len(a.Positions))
	}
	if a.Scale.Min <= 0 {
		return fmt.Errorf("%w: scale must be > 0", ErrInvalidConfig)
	}
	if a.BaseScale[0] <= 0 || a.BaseScale[1] <= 0 || a.BaseScale[2] <= 0 {
		return fmt.Errorf("%w: base_scale components must be > 0", ErrInvalidConfig)
	}
	for i := range a.Layers {
		l := &a.Layers[i]
		if i == 0 && (l.SharePhase || l.SpeedRatio != 0) {
			return fmt.Errorf("%w: layer 0 has no previous layer to follow", ErrInvalidConfig)
		}
		if err := l.validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	if t := a.Toggle; t != nil {
		if t.Low <= 0 || t.High <= t.Low {
			return fmt.Errorf("%w: toggle needs 0 < low < high, got %g/%g", ErrInvalidConfig, t.Low, t.High)
		}
		if t.EaseRate < 0 {
			return fmt.Errorf("%w: toggle ease_rate must be >= 0", ErrInvalidConfig)
		}
	}
	return nil
}

func (l *LayerConfig) validate() error {
	if l.Speed.Min <= 0 {
		return fmt.Errorf("%w: speed must be > 0", ErrInvalidConfig)
	}
	if l.SpeedRatio < 0 {
		return fmt.Errorf("%w: speed_ratio must be >= 0", ErrInvalidConfig)
	}
	switch systems.MotionKind(l.Kind) {
	case systems.MotionBob, systems.MotionSway, systems.MotionMorph, systems.MotionDrift, systems.MotionSpin:
	case systems.MotionStir:
		if l.Lift < 0 || l.Floor < 0 || l.Settle.Min < 0 {
			return fmt.Errorf("%w: stir lift, settle and floor must be >= 0", ErrInvalidConfig)
		}
	case systems.MotionRise:
		if l.Top <= l.Bottom {
			return fmt.Errorf("%w: rise top %g must exceed bottom %g", ErrInvalidConfig, l.Top, l.Bottom)
		}
	case systems.MotionShuttle:
		if l.Travel == (Vec3{}) {
			return fmt.Errorf("%w: shuttle needs a nonzero travel", ErrInvalidConfig)
		}
	case systems.MotionPulse:
		if l.Min > l.Max {
			return fmt.Errorf("%w: pulse min %g exceeds max %g", ErrInvalidConfig, l.Min, l.Max)
		}
		if l.Shape != "" && l.Shape != "abs" && l.Shape != "unit" {
			return fmt.Errorf("%w: pulse shape %q must be abs or unit", ErrInvalidConfig, l.Shape)
		}
	case systems.MotionColorCycle:
		if l.Saturation < 0 || l.Saturation > 1 || l.Lightness < 0 || l.Lightness > 1 {
			return fmt.Errorf("%w: saturation and lightness must be in [0,1]", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown layer kind %q", ErrInvalidConfig, l.Kind)
	}
	return nil
}

func (p *PatrolConfig) validate() error {
	if _, ok := components.ParseShape(p.Shape); !ok {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, p.Shape)
	}
	if p.Orbit <= 0 {
		return fmt.Errorf("%w: orbit radius must be > 0", ErrInvalidConfig)
	}
	if p.Speed < 0 || p.Gain < 0 {
		return fmt.Errorf("%w: speed and gain must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// uniqueNames rejects empty or repeated group names. Snapshots match
// entities by group name and index.
func uniqueNames(kind string, n int, name func(i int) string) error {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		nm := name(i)
		if nm == "" {
			return fmt.Errorf("%w: %s %d has no name", ErrInvalidConfig, kind, i)
		}
		if seen[nm] {
			return fmt.Errorf("%w: duplicate %s name %q", ErrInvalidConfig, kind, nm)
		}
		seen[nm] = true
	}
	return nil
}
