package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	toggles int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordToggle records a click that flipped a prop's target scale.
func (c *Collector) RecordToggle() {
	c.toggles++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SceneSample is the state sampled at a window boundary.
type SceneSample struct {
	Scene      string
	Flocks     []FlockSample
	Animated   int
	Raised     int
	PatrolLags []float64 // distance from each patroller to its target
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample SceneSample) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Scene:           sample.Scene,
		Animated:        sample.Animated,
		Patrols:         len(sample.PatrolLags),
		Toggles:         c.toggles,
		Raised:          sample.Raised,
	}

	var speeds []float64
	var weighted FlockShape
	for i := range sample.Flocks {
		f := &sample.Flocks[i]
		n := len(f.Velocities)
		if n == 0 {
			continue
		}
		stats.Boids += n
		for _, v := range f.Velocities {
			speeds = append(speeds, float64(v.Len()))
		}
		shape := f.Shape()
		weighted.Polarization += shape.Polarization * float64(n)
		weighted.Spread += shape.Spread * float64(n)
		weighted.NearestMean += shape.NearestMean * float64(n)
		stats.SpeedViolations += f.SpeedViolations()
	}
	if stats.Boids > 0 {
		n := float64(stats.Boids)
		stats.Polarization = weighted.Polarization / n
		stats.Spread = weighted.Spread / n
		stats.NearestMean = weighted.NearestMean / n
	}
	stats.SpeedMean, stats.SpeedStd, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ComputeSpeedStats(speeds)

	if len(sample.PatrolLags) > 0 {
		var sum float64
		for _, l := range sample.PatrolLags {
			sum += l
		}
		stats.PatrolLag = sum / float64(len(sample.PatrolLags))
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.toggles = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// Reset starts a fresh window at tick, dropping pending counters.
// Used when the scene is swapped.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.toggles = 0
}
