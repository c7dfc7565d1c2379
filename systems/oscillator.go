package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Transform is a world-space pose.
type Transform struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Quat
}

// NewTransform returns a pose at pos with the given scale and no rotation.
func NewTransform(pos, scale mgl32.Vec3) Transform {
	return Transform{Position: pos, Scale: scale, Rotation: mgl32.QuatIdent()}
}

// TransformDelta is the perturbation an oscillator applies around a base pose.
// Offsets add, scale factors multiply per axis, rotations compose.
type TransformDelta struct {
	Offset   mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Quat

	// Color output, only meaningful when HasColor is set.
	HasColor bool
	Hue      float32
	Color    colorful.Color
	Emissive colorful.Color
}

// IdentityDelta leaves a pose unchanged.
func IdentityDelta() TransformDelta {
	return TransformDelta{
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

// Compose layers o on top of d.
func (d TransformDelta) Compose(o TransformDelta) TransformDelta {
	out := TransformDelta{
		Offset:   d.Offset.Add(o.Offset),
		Scale:    mgl32.Vec3{d.Scale[0] * o.Scale[0], d.Scale[1] * o.Scale[1], d.Scale[2] * o.Scale[2]},
		Rotation: d.Rotation.Mul(o.Rotation),
		HasColor: d.HasColor,
		Hue:      d.Hue,
		Color:    d.Color,
		Emissive: d.Emissive,
	}
	if o.HasColor {
		out.HasColor = true
		out.Hue = o.Hue
		out.Color = o.Color
		out.Emissive = o.Emissive
	}
	return out
}

// Apply returns the displayed pose for base.
func (d TransformDelta) Apply(base Transform) Transform {
	return Transform{
		Position: base.Position.Add(d.Offset),
		Scale:    mgl32.Vec3{base.Scale[0] * d.Scale[0], base.Scale[1] * d.Scale[1], base.Scale[2] * d.Scale[2]},
		Rotation: base.Rotation.Mul(d.Rotation),
	}
}

// MotionKind names an oscillator variant.
type MotionKind string

const (
	MotionBob        MotionKind = "bob"
	MotionPulse      MotionKind = "pulse"
	MotionColorCycle MotionKind = "color_cycle"
	MotionSway       MotionKind = "sway"
	MotionMorph      MotionKind = "morph"
	MotionDrift      MotionKind = "drift"
	MotionSpin       MotionKind = "spin"
	MotionStir       MotionKind = "stir"
	MotionRise       MotionKind = "rise"
	MotionShuttle    MotionKind = "shuttle"
)

// Motion is one closed-form oscillator variant. The set is closed: only this
// package implements it.
type Motion interface {
	Kind() MotionKind
	// apply writes the variant's contribution for phase-shifted time t.
	// elapsed and speed are passed for variants that ignore phase.
	apply(d *TransformDelta, t, elapsed, speed float32)
}

// Oscillator drives one Motion with a per-instance phase and rate.
type Oscillator struct {
	Motion Motion
	Phase  float32 // radians, randomised per instance
	Speed  float32 // angular rate multiplier, > 0
}

// Evaluate returns the delta at elapsed seconds. Pure and deterministic.
func (o Oscillator) Evaluate(elapsed float32) TransformDelta {
	d := IdentityDelta()
	if o.Motion == nil {
		return d
	}
	t := elapsed*o.Speed + o.Phase
	o.Motion.apply(&d, t, elapsed, o.Speed)
	return d
}

// OscillatorAgent is an entity under time-driven motion: one or more
// oscillator layers perturbing a base pose. Base is the only state that may
// change after creation, and only from outside the animator.
type OscillatorAgent struct {
	Layers []Oscillator
	Base   Transform
}

// Evaluate composes every layer of agent at elapsed seconds.
func Evaluate(agent *OscillatorAgent, elapsed float32) TransformDelta {
	d := IdentityDelta()
	for i := range agent.Layers {
		d = d.Compose(agent.Layers[i].Evaluate(elapsed))
	}
	return d
}

// Pose returns the displayed transform at elapsed seconds.
func (a *OscillatorAgent) Pose(elapsed float32) Transform {
	return Evaluate(a, elapsed).Apply(a.Base)
}

// EaseScale moves current toward target by dt*rate, clamped to [0,1].
// Used when a click changes an agent's target scale.
func EaseScale(current, target mgl32.Vec3, dt, rate float32) mgl32.Vec3 {
	return lerp3(current, target, clamp01(dt*rate))
}

// Bob floats vertically: y = base_y + sin(t) * amplitude.
type Bob struct {
	Amplitude float32
}

func (Bob) Kind() MotionKind { return MotionBob }

func (m Bob) apply(d *TransformDelta, t, _, _ float32) {
	d.Offset[1] += sinf(t) * m.Amplitude
}

// PulseShape selects the pulse waveform.
type PulseShape uint8

const (
	// PulseAbs uses |sin t|: two beats per period, rests at the minimum.
	PulseAbs PulseShape = iota
	// PulseUnit uses 0.5 + 0.5 sin t: one smooth breath per period.
	PulseUnit
)

// Pulse breathes the scale between Min and Max.
type Pulse struct {
	Min, Max float32
	Shape    PulseShape
	// PreserveVolume divides the Y axis by the factor instead of multiplying,
	// so a bell flattens as it widens.
	PreserveVolume bool
	// Axes selects the scaled axes by its nonzero components. Zero scales all.
	Axes mgl32.Vec3
}

func (Pulse) Kind() MotionKind { return MotionPulse }

func (m Pulse) apply(d *TransformDelta, t, _, _ float32) {
	var w float32
	switch m.Shape {
	case PulseUnit:
		w = 0.5 + 0.5*sinf(t)
	default:
		w = absf(sinf(t))
	}
	s := m.Min + (m.Max-m.Min)*w
	f := mgl32.Vec3{s, s, s}
	if m.PreserveVolume && s != 0 {
		f[1] = 1 / s
	}
	if m.Axes != (mgl32.Vec3{}) {
		for i := range f {
			if m.Axes[i] == 0 {
				f[i] = 1
			}
		}
	}
	d.Scale = mgl32.Vec3{d.Scale[0] * f[0], d.Scale[1] * f[1], d.Scale[2] * f[2]}
}

// ColorCycle walks the hue wheel at speed*60 degrees per second.
// Phase is ignored; HueOffset desynchronises instances.
type ColorCycle struct {
	HueOffset         float32 // degrees
	Saturation        float32
	Lightness         float32
	EmissiveLightness float32
	EmissiveGain      float32
}

func (ColorCycle) Kind() MotionKind { return MotionColorCycle }

func (m ColorCycle) apply(d *TransformDelta, _, elapsed, speed float32) {
	hue := float32(math.Mod(float64(m.HueOffset+elapsed*speed*60), 360))
	if hue < 0 {
		hue += 360
	}
	em := colorful.Hsl(float64(hue), float64(m.Saturation), float64(m.EmissiveLightness))
	gain := float64(m.EmissiveGain)
	d.HasColor = true
	d.Hue = hue
	d.Color = colorful.Hsl(float64(hue), float64(m.Saturation), float64(m.Lightness))
	d.Emissive = colorful.Color{R: em.R * gain, G: em.G * gain, B: em.B * gain}
}

// Sway rocks about two axes: the primary at angle sin(t)*Amplitude around a
// fixed Tilt, the secondary at its own rate and amplitude.
type Sway struct {
	Amplitude          float32
	Tilt               float32
	PrimaryAxis        mgl32.Vec3 // zero means +Z
	SecondaryAmplitude float32
	SecondaryRate      float32
	SecondaryAxis      mgl32.Vec3 // zero means +X
}

func (Sway) Kind() MotionKind { return MotionSway }

func (m Sway) apply(d *TransformDelta, t, _, _ float32) {
	primary := axisOr(m.PrimaryAxis, mgl32.Vec3{0, 0, 1})
	secondary := axisOr(m.SecondaryAxis, mgl32.Vec3{1, 0, 0})
	a := m.Tilt + sinf(t)*m.Amplitude
	b := sinf(t*m.SecondaryRate) * m.SecondaryAmplitude
	rot := mgl32.QuatRotate(a, primary).Mul(mgl32.QuatRotate(b, secondary))
	d.Rotation = d.Rotation.Mul(rot)
}

// Morph distorts the scale non-uniformly with a weighted sum of sines.
type Morph struct {
	Amplitude float32
}

func (Morph) Kind() MotionKind { return MotionMorph }

func (m Morph) apply(d *TransformDelta, t, _, _ float32) {
	f := 1 + (sinf(t)*0.3+sinf(t*1.7)*0.2+cosf(t*2.3)*0.15)*m.Amplitude
	sx := f * (1 + sinf(t*0.7)*0.1)
	sy := f * (1 + cosf(t*0.9)*0.1)
	sz := f * (1 + sinf(t*1.1)*0.1)
	d.Scale = mgl32.Vec3{d.Scale[0] * sx, d.Scale[1] * sy, d.Scale[2] * sz}
}

// Drift traces a Lissajous figure around the base position: sin on X and Y,
// cos on Z, each axis at its own rate.
type Drift struct {
	Extent mgl32.Vec3
	Rates  mgl32.Vec3 // zero means {1, 0.7, 0.9}
}

func (Drift) Kind() MotionKind { return MotionDrift }

var defaultDriftRates = mgl32.Vec3{1, 0.7, 0.9}

func (m Drift) apply(d *TransformDelta, t, _, _ float32) {
	r := m.Rates
	if r == (mgl32.Vec3{}) {
		r = defaultDriftRates
	}
	d.Offset = d.Offset.Add(mgl32.Vec3{
		sinf(t*r[0]) * m.Extent[0],
		sinf(t*r[1]) * m.Extent[1],
		cosf(t*r[2]) * m.Extent[2],
	})
}

// Spin turns continuously about Axis at Speed radians per second.
type Spin struct {
	Axis mgl32.Vec3 // zero means +Y
}

func (Spin) Kind() MotionKind { return MotionSpin }

func (m Spin) apply(d *TransformDelta, t, _, _ float32) {
	angle := normalizeHeading(t)
	d.Rotation = d.Rotation.Mul(mgl32.QuatRotate(angle, axisOr(m.Axis, worldUp)))
}

// Stir kicks a resting grain upward while sin(t) is above Threshold and lets
// it sink back otherwise. The sink is Settle per unit below Threshold and
// never deeper than Floor.
type Stir struct {
	Threshold float32
	Lift      float32
	Settle    float32
	Floor     float32
}

func (Stir) Kind() MotionKind { return MotionStir }

func (m Stir) apply(d *TransformDelta, t, _, _ float32) {
	c := sinf(t)
	var y float32
	if c > m.Threshold {
		y = (c - m.Threshold) * m.Lift
	} else {
		y = -min((m.Threshold-c)*m.Settle, m.Floor)
	}
	d.Offset[1] += y
}

// Rise carries a prop up at speed units per second from Start and wraps it
// from Top back to Bottom. Phase is ignored.
type Rise struct {
	Start  float32 // base height
	Bottom float32
	Top    float32
}

func (Rise) Kind() MotionKind { return MotionRise }

func (m Rise) apply(d *TransformDelta, _, elapsed, speed float32) {
	span := m.Top - m.Bottom
	if span <= 0 {
		return
	}
	y := m.Bottom + wrapf(m.Start-m.Bottom+elapsed*speed, span)
	d.Offset[1] += y - m.Start
}

// Shuttle ping-pongs between the base position and base+Travel at speed
// units per second, turning around at either end. Phase is ignored.
type Shuttle struct {
	Travel mgl32.Vec3
}

func (Shuttle) Kind() MotionKind { return MotionShuttle }

func (m Shuttle) apply(d *TransformDelta, _, elapsed, speed float32) {
	length := m.Travel.Len()
	if length == 0 {
		return
	}
	f := wrapf(elapsed*speed, 2*length) / length
	if f > 1 {
		f = 2 - f
	}
	d.Offset = d.Offset.Add(m.Travel.Mul(f))
}

// wrapf maps x into [0, span).
func wrapf(x, span float32) float32 {
	r := float32(math.Mod(float64(x), float64(span)))
	if r < 0 {
		r += span
	}
	return r
}

func axisOr(axis, fallback mgl32.Vec3) mgl32.Vec3 {
	n := NormalizeOrZero(axis)
	if n.LenSqr() == 0 {
		return fallback
	}
	return n
}
