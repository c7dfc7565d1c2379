package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Scene           string  `csv:"scene"`

	// Entity counts at window end
	Boids    int `csv:"boids"`
	Animated int `csv:"animated"`
	Patrols  int `csv:"patrols"`

	// Flock speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Flock shape, member-weighted across flocks
	Polarization float64 `csv:"polarization"` // 1 = every member heading the same way
	Spread       float64 `csv:"spread"`       // mean distance to flock centroid
	NearestMean  float64 `csv:"nearest_mean"` // mean nearest-neighbor distance

	// Members outside [min_speed, max_speed]; anything but 0 is a bug
	SpeedViolations int `csv:"speed_violations"`

	// Patrol tracking
	PatrolLag float64 `csv:"patrol_lag"` // mean distance from patroller to its target

	// Interaction
	Toggles int `csv:"toggles"` // clicks during window
	Raised  int `csv:"raised"`  // toggled props currently targeting high scale
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, population std, and percentiles.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("scene", s.Scene),
		slog.Int("boids", s.Boids),
		slog.Int("animated", s.Animated),
		slog.Int("patrols", s.Patrols),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread", s.Spread),
		slog.Float64("nearest_mean", s.NearestMean),
		slog.Int("speed_violations", s.SpeedViolations),
		slog.Float64("patrol_lag", s.PatrolLag),
		slog.Int("toggles", s.Toggles),
		slog.Int("raised", s.Raised),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
