package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/diorama/config"
	"github.com/pthm-cable/diorama/game"
	"github.com/pthm-cable/diorama/telemetry"
)

// Target is the flock shape the search aims for.
type Target struct {
	Polarization float64 // mean unit heading length, 0..1
	Spread       float64 // mean distance to centroid
}

// Score scales. An error of one scale unit costs 1.
const (
	polarizationScale = 0.1
	spreadShare       = 0.25 // of the target spread
	violationPenalty  = 10.0 // per member outside its speed bounds
	warmupWindows     = 2    // windows skipped while the flock settles
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	configPath  string
	scene       string
	flock       string
	target      Target
	maxTicks    int32
	seeds       []int64
	statsWindow float64

	mu         sync.Mutex
	lastPolar  float64
	lastSpread float64
}

// NewFitnessEvaluator creates a new evaluator. Every evaluation reloads the
// base config from configPath so runs never share state.
func NewFitnessEvaluator(params *ParamVector, configPath, scene, flock string, target Target, maxTicks int32, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		configPath:  configPath,
		scene:       scene,
		flock:       flock,
		target:      target,
		maxTicks:    maxTicks,
		seeds:       seeds,
		statsWindow: 2.0,
	}
}

// LastShape returns the mean polarization and spread of the most recent
// evaluation.
func (fe *FitnessEvaluator) LastShape() (polarization, spread float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastPolar, fe.lastSpread
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windows []telemetry.WindowStats
	err     error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; the result is their mean.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, polar, spread float64
	var windows int
	for _, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		total += Score(r.windows, fe.target)
		for _, w := range settled(r.windows) {
			polar += w.Polarization
			spread += w.Spread
			windows++
		}
	}

	fe.mu.Lock()
	if windows > 0 {
		fe.lastPolar = polar / float64(windows)
		fe.lastSpread = spread / float64(windows)
	}
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// runSimulation executes a single headless run of the scene.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return runResult{err: err}
	}
	if err := fe.params.ApplyToConfig(cfg, fe.scene, fe.flock, x); err != nil {
		return runResult{err: err}
	}

	var result runResult
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Scene:          fe.scene,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		return runResult{err: err}
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return result
}

// Score rates settled windows against the target. 0 is a perfect match;
// no settled windows scores +Inf.
func Score(windows []telemetry.WindowStats, target Target) float64 {
	valid := settled(windows)
	if len(valid) == 0 {
		return math.Inf(1)
	}

	spreadScale := max(target.Spread*spreadShare, 1e-6)
	var sum float64
	for _, w := range valid {
		dp := (w.Polarization - target.Polarization) / polarizationScale
		ds := (w.Spread - target.Spread) / spreadScale
		sum += dp*dp + ds*ds + violationPenalty*float64(w.SpeedViolations)
	}
	return sum / float64(len(valid))
}

// settled drops the warmup windows and windows with no flock members.
func settled(windows []telemetry.WindowStats) []telemetry.WindowStats {
	if len(windows) <= warmupWindows {
		return nil
	}
	var out []telemetry.WindowStats
	for _, w := range windows[warmupWindows:] {
		if w.Boids > 0 {
			out = append(out, w)
		}
	}
	return out
}
