package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

func approx(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

// near3 compares vectors with an absolute tolerance on their difference.
func near3(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

// nearQuat compares quaternions component-wise with an absolute tolerance.
func nearQuat(a, b mgl32.Quat, eps float32) bool {
	return approx(a.W, b.W, eps) && near3(a.V, b.V, eps)
}

func TestPulseReachesMaxAtQuarterPeriod(t *testing.T) {
	osc := Oscillator{Motion: Pulse{Min: 0.9, Max: 1.1}, Phase: 0, Speed: 2}
	d := osc.Evaluate(math.Pi / 4)

	for axis := 0; axis < 3; axis++ {
		if !approx(d.Scale[axis], 1.1, 1e-5) {
			t.Errorf("scale[%d] = %f, want 1.1", axis, d.Scale[axis])
		}
	}
	if d.Offset != (mgl32.Vec3{}) {
		t.Errorf("pulse should not move the agent, offset %v", d.Offset)
	}
}

func TestPulseShapes(t *testing.T) {
	tests := []struct {
		name  string
		pulse Pulse
		t     float32
		want  mgl32.Vec3
	}{
		{"abs at rest", Pulse{Min: 0.8, Max: 1.2}, 0, mgl32.Vec3{0.8, 0.8, 0.8}},
		{"abs negative half", Pulse{Min: 0.8, Max: 1.2}, -math.Pi / 2, mgl32.Vec3{1.2, 1.2, 1.2}},
		{"unit midpoint", Pulse{Min: 0.9, Max: 1.1, Shape: PulseUnit}, 0, mgl32.Vec3{1, 1, 1}},
		{"unit trough", Pulse{Min: 0.9, Max: 1.1, Shape: PulseUnit}, -math.Pi / 2, mgl32.Vec3{0.9, 0.9, 0.9}},
		{"volume preserving", Pulse{Min: 0.9, Max: 1.1, Shape: PulseUnit, PreserveVolume: true}, math.Pi / 2,
			mgl32.Vec3{1.1, 1 / 1.1, 1.1}},
		{"masked axes", Pulse{Min: 0.8, Max: 1.0, Shape: PulseUnit, Axes: mgl32.Vec3{1, 0, 1}}, -math.Pi / 2,
			mgl32.Vec3{0.8, 1, 0.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Oscillator{Motion: tt.pulse, Speed: 1}.Evaluate(tt.t)
			if !near3(d.Scale, tt.want, 1e-5) {
				t.Errorf("scale = %v, want %v", d.Scale, tt.want)
			}
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	motions := []Motion{
		Bob{Amplitude: 0.5},
		Pulse{Min: 0.9, Max: 1.1, Shape: PulseUnit, PreserveVolume: true},
		ColorCycle{HueOffset: 120, Saturation: 0.8, Lightness: 0.6, EmissiveLightness: 0.3, EmissiveGain: 0.3},
		Sway{Amplitude: 0.05, Tilt: 0.15, SecondaryAmplitude: 0.03, SecondaryRate: 0.7},
		Morph{Amplitude: 0.4},
		Drift{Extent: mgl32.Vec3{1.5, 0.8, 1.5}},
		Spin{},
	}
	for _, m := range motions {
		t.Run(string(m.Kind()), func(t *testing.T) {
			osc := Oscillator{Motion: m, Phase: 1.3, Speed: 0.9}
			for _, elapsed := range []float32{0, 0.5, 17.25, 1000} {
				a := osc.Evaluate(elapsed)
				b := osc.Evaluate(elapsed)
				if a != b {
					t.Fatalf("elapsed %f: %+v != %+v", elapsed, a, b)
				}
			}
		})
	}
}

func TestBobOffsetsVertically(t *testing.T) {
	osc := Oscillator{Motion: Bob{Amplitude: 0.5}, Phase: math.Pi / 2, Speed: 1}
	d := osc.Evaluate(0)
	if !near3(d.Offset, mgl32.Vec3{0, 0.5, 0}, 1e-5) {
		t.Errorf("offset = %v, want (0, 0.5, 0)", d.Offset)
	}
	if d.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("bob should not scale, got %v", d.Scale)
	}
}

func TestColorCycleWrapsHue(t *testing.T) {
	cc := ColorCycle{HueOffset: 350, Saturation: 0.8, Lightness: 0.6, EmissiveLightness: 0.3, EmissiveGain: 0.3}
	// Phase must not affect the hue.
	d := Oscillator{Motion: cc, Phase: 2.5, Speed: 1}.Evaluate(1)

	if !d.HasColor {
		t.Fatal("color cycle should set a color")
	}
	if !approx(d.Hue, 50, 1e-3) {
		t.Errorf("hue = %f, want 50", d.Hue)
	}
	want := colorful.Hsl(50, 0.8, 0.6)
	if !d.Color.AlmostEqualRgb(want) {
		t.Errorf("color = %v, want %v", d.Color, want)
	}
	em := colorful.Hsl(50, 0.8, 0.3)
	wantEm := colorful.Color{R: em.R * 0.3, G: em.G * 0.3, B: em.B * 0.3}
	if !d.Emissive.AlmostEqualRgb(wantEm) {
		t.Errorf("emissive = %v, want %v", d.Emissive, wantEm)
	}
}

func TestSwayRotatesAroundTilt(t *testing.T) {
	sway := Sway{Amplitude: 0.05, Tilt: 0.15}
	d := Oscillator{Motion: sway, Speed: 1}.Evaluate(0)
	want := mgl32.QuatRotate(0.15, mgl32.Vec3{0, 0, 1})
	if !nearQuat(d.Rotation, want, 1e-5) {
		t.Errorf("rotation = %v, want %v", d.Rotation, want)
	}

	// At the peak the primary angle is tilt + amplitude.
	d = Oscillator{Motion: sway, Speed: 1}.Evaluate(math.Pi / 2)
	want = mgl32.QuatRotate(0.2, mgl32.Vec3{0, 0, 1})
	if !nearQuat(d.Rotation, want, 1e-5) {
		t.Errorf("peak rotation = %v, want %v", d.Rotation, want)
	}
}

func TestMorphAndDriftAtZero(t *testing.T) {
	d := Oscillator{Motion: Morph{Amplitude: 1}, Speed: 1}.Evaluate(0)
	// f = 1 + cos(0)*0.15
	want := mgl32.Vec3{1.15, 1.15 * 1.1, 1.15}
	if !near3(d.Scale, want, 1e-5) {
		t.Errorf("morph scale = %v, want %v", d.Scale, want)
	}

	d = Oscillator{Motion: Drift{Extent: mgl32.Vec3{1.5, 0.8, 1.5}}, Speed: 1}.Evaluate(0)
	if !near3(d.Offset, mgl32.Vec3{0, 0, 1.5}, 1e-5) {
		t.Errorf("drift offset = %v, want (0, 0, 1.5)", d.Offset)
	}
}

func TestSpinTurnsAboutY(t *testing.T) {
	d := Oscillator{Motion: Spin{}, Speed: 0.5}.Evaluate(2)
	got := d.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	want := mgl32.Vec3{float32(math.Cos(1)), 0, -float32(math.Sin(1))}
	if !near3(got, want, 1e-5) {
		t.Errorf("spun x axis = %v, want %v", got, want)
	}
}

func TestNilMotionIsIdentity(t *testing.T) {
	if d := (Oscillator{Speed: 1}).Evaluate(3); d != IdentityDelta() {
		t.Errorf("got %+v, want identity", d)
	}
}

func TestComposeLayers(t *testing.T) {
	agent := OscillatorAgent{
		Base: NewTransform(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 2, 2}),
		Layers: []Oscillator{
			{Motion: Bob{Amplitude: 0.5}, Phase: math.Pi / 2, Speed: 1},
			{Motion: Pulse{Min: 0.9, Max: 1.1, Shape: PulseUnit, PreserveVolume: true}, Phase: math.Pi / 2, Speed: 1},
			{Motion: Drift{Extent: mgl32.Vec3{0, 0, 1}}, Speed: 1},
		},
	}

	pose := agent.Pose(0)
	wantPos := mgl32.Vec3{1, 2.5, 4}
	wantScale := mgl32.Vec3{2.2, 2 / 1.1, 2.2}
	if !near3(pose.Position, wantPos, 1e-5) {
		t.Errorf("position = %v, want %v", pose.Position, wantPos)
	}
	if !near3(pose.Scale, wantScale, 1e-5) {
		t.Errorf("scale = %v, want %v", pose.Scale, wantScale)
	}

	// The base pose is never written by evaluation.
	if agent.Base.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("base moved to %v", agent.Base.Position)
	}
}

func TestComposeKeepsLastColor(t *testing.T) {
	red := IdentityDelta()
	red.HasColor, red.Hue, red.Color = true, 0, colorful.Color{R: 1}
	blue := IdentityDelta()
	blue.HasColor, blue.Hue, blue.Color = true, 240, colorful.Color{B: 1}

	if got := red.Compose(blue); got.Hue != 240 {
		t.Errorf("hue = %f, want 240", got.Hue)
	}
	if got := red.Compose(IdentityDelta()); !got.HasColor || got.Hue != 0 {
		t.Errorf("colorless layer dropped the color: %+v", got)
	}
}

func TestEaseScale(t *testing.T) {
	one := mgl32.Vec3{1, 1, 1}
	two := mgl32.Vec3{2, 2, 2}

	got := EaseScale(one, two, 0.1, 5)
	if !near3(got, mgl32.Vec3{1.5, 1.5, 1.5}, 1e-5) {
		t.Errorf("EaseScale half step = %v", got)
	}
	if got := EaseScale(one, two, 10, 5); got != two {
		t.Errorf("EaseScale should clamp at target, got %v", got)
	}
}

func TestUnitPulseIsShiftedSine(t *testing.T) {
	// 0.8..1.2 at speed 2 is 1 + 0.2*sin(2t).
	osc := Oscillator{Motion: Pulse{Min: 0.8, Max: 1.2, Shape: PulseUnit}, Speed: 2}
	for _, at := range []float32{0, 0.3, 1.1, 2.7, 5} {
		want := 1 + 0.2*sinf(2*at)
		if got := osc.Evaluate(at).Scale[0]; !approx(got, want, 1e-5) {
			t.Errorf("scale at %v = %v, want %v", at, got, want)
		}
	}
}

func TestDriftRates(t *testing.T) {
	osc := Oscillator{Motion: Drift{Extent: mgl32.Vec3{1, 0, 1}, Rates: mgl32.Vec3{0.5, 0, 2}}, Speed: 1}
	d := osc.Evaluate(math.Pi)
	if !near3(d.Offset, mgl32.Vec3{1, 0, 1}, 1e-5) {
		t.Errorf("offset = %v, want [1 0 1]", d.Offset)
	}
}

func TestStir(t *testing.T) {
	tests := []struct {
		name string
		stir Stir
		t    float32
		want float32
	}{
		{"kicked up", Stir{Threshold: 0.7, Lift: 5, Settle: 0.2, Floor: 0.5}, math.Pi / 2, 1.5},
		{"settling", Stir{Threshold: 0.7, Lift: 5, Settle: 0.2, Floor: 0.5}, 0, -0.14},
		{"deepest", Stir{Threshold: 0.7, Lift: 5, Settle: 0.2, Floor: 0.5}, -math.Pi / 2, -0.34},
		{"floored", Stir{Threshold: 0.7, Lift: 5, Settle: 0.4, Floor: 0.5}, -math.Pi / 2, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Oscillator{Motion: tt.stir, Speed: 1}.Evaluate(tt.t)
			if !approx(d.Offset[1], tt.want, 1e-5) {
				t.Errorf("y offset = %v, want %v", d.Offset[1], tt.want)
			}
			if d.Offset[0] != 0 || d.Offset[2] != 0 {
				t.Errorf("stir moved sideways: %v", d.Offset)
			}
		})
	}
}

func TestRiseWraps(t *testing.T) {
	rise := Rise{Start: 0, Bottom: -5, Top: 20}
	tests := []struct {
		elapsed float32
		want    float32
	}{
		{0, 0},
		{5, 10},  // y = 10
		{15, 5},  // passed the top once: y = 5
		{25, 0},  // two laps: back at the start
		{10, -5}, // y = 20 wraps to the bottom
	}
	for _, tt := range tests {
		// Phase does not shift a rising prop.
		d := Oscillator{Motion: rise, Speed: 2, Phase: 3}.Evaluate(tt.elapsed)
		if !approx(d.Offset[1], tt.want, 1e-4) {
			t.Errorf("offset at %v = %v, want %v", tt.elapsed, d.Offset[1], tt.want)
		}
	}
}

func TestShuttlePingPong(t *testing.T) {
	osc := Oscillator{Motion: Shuttle{Travel: mgl32.Vec3{8, 0, 0}}, Speed: 2}
	tests := []struct {
		elapsed float32
		want    float32
	}{
		{0, 0},
		{2, 4},
		{4, 8},
		{6, 4},
		{8, 0},
		{9, 2},
	}
	for _, tt := range tests {
		d := osc.Evaluate(tt.elapsed)
		if !near3(d.Offset, mgl32.Vec3{tt.want, 0, 0}, 1e-4) {
			t.Errorf("offset at %v = %v, want [%v 0 0]", tt.elapsed, d.Offset, tt.want)
		}
	}

	still := Oscillator{Motion: Shuttle{}, Speed: 2}.Evaluate(3)
	if still.Offset != (mgl32.Vec3{}) {
		t.Errorf("zero travel moved to %v", still.Offset)
	}
}

func TestWrapf(t *testing.T) {
	if got := wrapf(-1, 4); !approx(got, 3, 1e-6) {
		t.Errorf("wrapf(-1, 4) = %v, want 3", got)
	}
	if got := wrapf(9, 4); !approx(got, 1, 1e-6) {
		t.Errorf("wrapf(9, 4) = %v, want 1", got)
	}
}
