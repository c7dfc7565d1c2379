package telemetry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean, std, p10, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	// Population std of this classic set is exactly 2.
	if math.Abs(std-2) > 1e-9 {
		t.Errorf("std = %v, want 2", std)
	}
	if p10 > p50 || p50 > p90 {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if math.Abs(p50-4.5) > 1e-9 {
		t.Errorf("p50 = %v, want 4.5", p50)
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeSpeedStats(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestPolarization(t *testing.T) {
	tests := []struct {
		name string
		vels []mgl32.Vec3
		want float64
	}{
		{"empty", nil, 0},
		{"aligned", []mgl32.Vec3{{1, 0, 0}, {5, 0, 0}, {0.1, 0, 0}}, 1},
		{"opposed", []mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}}, 0},
		{"stationary counts as zero", []mgl32.Vec3{{0, 0, 2}, {0, 0, 0}}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Polarization(tt.vels)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Polarization = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpreadAndNearest(t *testing.T) {
	pos := []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, 0, 5}, {0, 0, -5}}

	// Centroid is the origin.
	wantSpread := (1 + 1 + 5 + 5) / 4.0
	if got := Spread(pos); math.Abs(got-wantSpread) > 1e-6 {
		t.Errorf("Spread = %v, want %v", got, wantSpread)
	}

	// Nearest: the pair at x=±1 sit 2 apart; each z=±5 member is sqrt(26) from both.
	wantNearest := (2 + 2 + 2*math.Sqrt(26)) / 4
	if got := NearestMean(pos); math.Abs(got-wantNearest) > 1e-4 {
		t.Errorf("NearestMean = %v, want %v", got, wantNearest)
	}

	if NearestMean(pos[:1]) != 0 {
		t.Error("single member should have zero nearest distance")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.25, 0.125)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("ticks per window = %d, want 10", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("flush before window end")
	}
	if !c.ShouldFlush(10) {
		t.Error("no flush at window end")
	}

	c.RecordToggle()
	c.RecordToggle()

	sample := SceneSample{
		Scene: "ocean_depths",
		Flocks: []FlockSample{
			{
				Positions:  []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}},
				Velocities: []mgl32.Vec3{{0, 0, 3}, {0, 0, 3}},
				MinSpeed:   2,
				MaxSpeed:   5,
			},
			{
				Positions:  []mgl32.Vec3{{10, 0, 0}, {10, 4, 0}},
				Velocities: []mgl32.Vec3{{1, 0, 0}, {0, 9, 0}}, // both outside [2,5]
				MinSpeed:   2,
				MaxSpeed:   5,
			},
		},
		Animated:   3,
		Raised:     1,
		PatrolLags: []float64{1, 3},
	}

	stats := c.Flush(10, sample)
	if stats.Boids != 4 || stats.Animated != 3 || stats.Patrols != 2 {
		t.Errorf("counts = %d/%d/%d, want 4/3/2", stats.Boids, stats.Animated, stats.Patrols)
	}
	if stats.Toggles != 2 || stats.Raised != 1 {
		t.Errorf("toggles %d raised %d, want 2 and 1", stats.Toggles, stats.Raised)
	}
	if stats.SpeedViolations != 2 {
		t.Errorf("speed violations = %d, want 2", stats.SpeedViolations)
	}
	if math.Abs(stats.PatrolLag-2) > 1e-9 {
		t.Errorf("patrol lag = %v, want 2", stats.PatrolLag)
	}
	// Spread: first flock 1, second flock 2, equal weights.
	if math.Abs(stats.Spread-1.5) > 1e-6 {
		t.Errorf("spread = %v, want 1.5", stats.Spread)
	}
	if math.Abs(stats.SimTimeSec-1.25) > 1e-6 {
		t.Errorf("sim time = %v, want 1.25", stats.SimTimeSec)
	}

	// Counters reset.
	next := c.Flush(20, SceneSample{})
	if next.Toggles != 0 || next.WindowStartTick != 10 {
		t.Errorf("window not reset: toggles %d start %d", next.Toggles, next.WindowStartTick)
	}
}
