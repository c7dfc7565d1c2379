package game

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/diorama/components"
	"github.com/pthm-cable/diorama/config"
	"github.com/pthm-cable/diorama/systems"
)

// boidRadius is a flock member's picking radius at unit size.
const boidRadius = 0.5

// spawnScene creates every flock, prop and patroller of sc.
func (g *Game) spawnScene(sc *config.SceneConfig) error {
	if len(sc.Flocks) > 256 {
		return fmt.Errorf("%w: at most 256 flocks per scene", config.ErrInvalidConfig)
	}
	for fi := range sc.Flocks {
		if err := g.spawnFlock(uint8(fi), &sc.Flocks[fi]); err != nil {
			return fmt.Errorf("flock %q: %w", sc.Flocks[fi].Name, err)
		}
	}
	for ai := range sc.Animated {
		if err := g.spawnProps(&sc.Animated[ai]); err != nil {
			return fmt.Errorf("animated %q: %w", sc.Animated[ai].Name, err)
		}
	}
	for pi := range sc.Patrols {
		if err := g.spawnPatrol(&sc.Patrols[pi], pi); err != nil {
			return fmt.Errorf("patrol %q: %w", sc.Patrols[pi].Name, err)
		}
	}
	return nil
}

// spawnFlock validates the flock's parameters and spawns its schools.
func (g *Game) spawnFlock(index uint8, fc *config.FlockConfig) error {
	params := fc.Params.Params()
	if err := params.Validate(); err != nil {
		return err
	}
	shape, ok := components.ParseShape(fc.Shape)
	if !ok {
		return fmt.Errorf("%w: unknown shape %q", config.ErrInvalidConfig, fc.Shape)
	}

	f := flock{name: fc.Name, params: params, shape: shape}
	if g.cfg.Sim.GridCellSize > 0 {
		f.grid = systems.NewSpatialGrid(float32(g.cfg.Sim.GridCellSize))
	}
	g.flocks = append(g.flocks, f)

	n := 0
	for si := range fc.Schools {
		school := &fc.Schools[si]
		species := systems.NoSpecies
		if school.Species != nil {
			species = systems.SpeciesOf(*school.Species)
		}
		for k := 0; k < school.Count; k++ {
			pos := scatter(g.rng, school.Center.V(), school.Spread.V())
			vel := initialVelocity(g.rng, float32(school.Speed), float32(school.VerticalBias))
			size := float32(school.Size)

			pose := components.Pose{Transform: systems.NewTransform(pos, mgl32.Vec3{size, size, size})}
			pose.Rotation = systems.Facing(vel)
			boid := components.Boid{Velocity: vel, Species: species, Flock: index}
			tint := components.Tint{Color: rgb(school.Color), Alpha: 1}
			label := components.Label{Group: fc.Name, Index: n, Shape: shape, Radius: boidRadius}

			g.boidMapper.NewEntity(&pose, &boid, &tint, &label)
			n++
		}
	}
	return nil
}

// spawnProps creates one animated group. Each prop samples its own layer
// parameters so instances never move in lockstep.
func (g *Game) spawnProps(ac *config.AnimatedConfig) error {
	shape, ok := components.ParseShape(ac.Shape)
	if !ok {
		return fmt.Errorf("%w: unknown shape %q", config.ErrInvalidConfig, ac.Shape)
	}

	for i := 0; i < ac.Count; i++ {
		var pos mgl32.Vec3
		switch {
		case i < len(ac.Positions):
			pos = ac.Positions[i].V()
		case ac.Area != nil:
			pos = scatter(g.rng, ac.Area.Center.V(), ac.Area.Extent.V())
		default:
			return fmt.Errorf("%w: prop %d has no position", config.ErrInvalidConfig, i)
		}

		proportions := ac.BaseScale.V()
		scale := proportions.Mul(float32(ac.Scale.Sample(g.rng)))

		layers := make([]systems.Oscillator, 0, len(ac.Layers))
		for li := range ac.Layers {
			var prev *systems.Oscillator
			if li > 0 {
				prev = &layers[li-1]
			}
			osc, err := buildLayer(&ac.Layers[li], i, pos, prev, g.rng)
			if err != nil {
				return fmt.Errorf("layer %d: %w", li, err)
			}
			layers = append(layers, osc)
		}

		pose := components.Pose{Transform: systems.NewTransform(pos, scale)}
		anim := components.Animated{
			Agent:       systems.OscillatorAgent{Layers: layers, Base: pose.Transform},
			TargetScale: scale,
			Proportions: proportions,
		}
		tint := components.Tint{Color: rgb(ac.Color), Alpha: float32(ac.Alpha)}
		label := components.Label{Group: ac.Name, Index: i, Shape: shape, Radius: float32(ac.Radius), Height: float32(ac.Height)}

		// Seed the displayed pose and color at elapsed 0.
		d := systems.Evaluate(&anim.Agent, 0)
		pose.Transform = d.Apply(anim.Agent.Base)
		if d.HasColor {
			tint.Color = d.Color
			tint.Emissive = d.Emissive
		}

		if tc := ac.Toggle; tc != nil {
			anim.EaseRate = float32(tc.EaseRate)
			toggle := components.Toggle{
				Low:       float32(tc.Low),
				High:      float32(tc.High),
				Threshold: float32(tc.Threshold),
			}
			g.togglePropMapper.NewEntity(&pose, &anim, &tint, &label, &toggle)
			continue
		}
		g.propMapper.NewEntity(&pose, &anim, &tint, &label)
	}
	return nil
}

// buildLayer samples one oscillator layer for the prop at index, spawned at
// pos. prev is the layer below it, nil for the first.
func buildLayer(lc *config.LayerConfig, index int, pos mgl32.Vec3, prev *systems.Oscillator, rng *rand.Rand) (systems.Oscillator, error) {
	osc := systems.Oscillator{
		Speed: float32(lc.Speed.Sample(rng)),
		Phase: float32(lc.Phase.Sample(rng) + float64(index)*lc.PhaseStep),
	}
	amplitude := float32(lc.Amplitude.Sample(rng))
	if prev != nil {
		if lc.SharePhase {
			osc.Phase = prev.Phase
		}
		if lc.SpeedRatio > 0 {
			osc.Speed = prev.Speed * float32(lc.SpeedRatio)
		}
	}

	switch systems.MotionKind(lc.Kind) {
	case systems.MotionBob:
		osc.Motion = systems.Bob{Amplitude: amplitude}
	case systems.MotionPulse:
		shape := systems.PulseAbs
		if lc.Shape == "unit" {
			shape = systems.PulseUnit
		}
		osc.Motion = systems.Pulse{
			Min:            float32(lc.Min),
			Max:            float32(lc.Max),
			Shape:          shape,
			PreserveVolume: lc.PreserveVolume,
			Axes:           lc.Axes.V(),
		}
	case systems.MotionColorCycle:
		osc.Motion = systems.ColorCycle{
			HueOffset:         float32(lc.HueOffset.Sample(rng) + float64(index)*lc.HueStep),
			Saturation:        float32(lc.Saturation),
			Lightness:         float32(lc.Lightness),
			EmissiveLightness: float32(lc.EmissiveLightness),
			EmissiveGain:      float32(lc.EmissiveGain),
		}
	case systems.MotionSway:
		osc.Motion = systems.Sway{
			Amplitude:          amplitude,
			Tilt:               float32(lc.Tilt),
			PrimaryAxis:        lc.Axis.V(),
			SecondaryAmplitude: amplitude * float32(lc.SecondaryScale),
			SecondaryRate:      float32(lc.SecondaryRate),
			SecondaryAxis:      lc.SecondaryAxis.V(),
		}
	case systems.MotionMorph:
		osc.Motion = systems.Morph{Amplitude: amplitude}
	case systems.MotionDrift:
		osc.Motion = systems.Drift{Extent: lc.Extent.V(), Rates: lc.Rates.V()}
	case systems.MotionSpin:
		osc.Motion = systems.Spin{Axis: lc.Axis.V()}
	case systems.MotionStir:
		osc.Motion = systems.Stir{
			Threshold: float32(lc.Threshold),
			Lift:      float32(lc.Lift),
			Settle:    float32(lc.Settle.Sample(rng)),
			Floor:     float32(lc.Floor),
		}
	case systems.MotionRise:
		osc.Motion = systems.Rise{Start: pos[1], Bottom: float32(lc.Bottom), Top: float32(lc.Top)}
	case systems.MotionShuttle:
		osc.Motion = systems.Shuttle{Travel: lc.Travel.V()}
	default:
		return osc, fmt.Errorf("%w: unknown layer kind %q", config.ErrInvalidConfig, lc.Kind)
	}
	return osc, nil
}

// spawnPatrol places a patroller at its start point, aimed at its first target.
func (g *Game) spawnPatrol(pc *config.PatrolConfig, index int) error {
	shape, ok := components.ParseShape(pc.Shape)
	if !ok {
		return fmt.Errorf("%w: unknown shape %q", config.ErrInvalidConfig, pc.Shape)
	}
	if pc.Orbit <= 0 {
		return fmt.Errorf("%w: orbit radius must be > 0", config.ErrInvalidConfig)
	}

	agent := systems.PatrolAgent{
		Center:     pc.Center.V(),
		Radius:     float32(pc.Orbit),
		Speed:      float32(pc.Speed),
		Undulation: float32(pc.Undulation),
		Gain:       float32(pc.Gain),
	}
	size := float32(pc.Size)
	start := pc.Start.V()

	pose := components.Pose{Transform: systems.NewTransform(start, mgl32.Vec3{size, size, size})}
	pose.Rotation = systems.Facing(systems.Heading(start, agent.Target()))
	patrol := components.Patrol{Agent: agent}
	tint := components.Tint{Color: rgb(pc.Color), Alpha: 1}
	label := components.Label{Group: pc.Name, Index: index, Shape: shape, Radius: float32(pc.Radius), Height: float32(pc.Height)}

	g.patrolMapper.NewEntity(&pose, &patrol, &tint, &label)
	return nil
}

// scatter returns center offset by (U-0.5)*extent on each axis.
func scatter(rng *rand.Rand, center, extent mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		center[0] + (rng.Float32()-0.5)*extent[0],
		center[1] + (rng.Float32()-0.5)*extent[1],
		center[2] + (rng.Float32()-0.5)*extent[2],
	}
}

// initialVelocity picks a random heading with its vertical component damped
// by verticalBias, scaled to speed. A degenerate draw heads along +Z.
func initialVelocity(rng *rand.Rand, speed, verticalBias float32) mgl32.Vec3 {
	dir := mgl32.Vec3{
		rng.Float32()*2 - 1,
		(rng.Float32()*2 - 1) * verticalBias,
		rng.Float32()*2 - 1,
	}
	dir = systems.NormalizeOrZero(dir)
	if dir.LenSqr() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	return dir.Mul(speed)
}

// rgb converts a config color to colorful.
func rgb(c config.Vec3) colorful.Color {
	return colorful.Color{R: c[0], G: c[1], B: c[2]}
}
