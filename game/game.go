// Package game assembles a diorama scene into an ECS world and advances it
// one fixed tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/diorama/camera"
	"github.com/pthm-cable/diorama/components"
	"github.com/pthm-cable/diorama/config"
	"github.com/pthm-cable/diorama/renderer"
	"github.com/pthm-cable/diorama/systems"
	"github.com/pthm-cable/diorama/telemetry"
	"github.com/pthm-cable/diorama/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Scene          string         // empty uses sim.default_scene
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// flock is one independent flock of the loaded scene.
type flock struct {
	name   string
	params systems.FlockParams
	shape  components.Shape
	grid   *systems.SpatialGrid // nil scans every member
}

// Game holds the complete scene state.
type Game struct {
	cfg       *config.Config
	sceneName string
	rng       *rand.Rand
	rngSeed   int64

	world *ecs.World

	// Archetype mappers
	boidMapper *ecs.Map4[
		components.Pose,
		components.Boid,
		components.Tint,
		components.Label,
	]
	propMapper *ecs.Map4[
		components.Pose,
		components.Animated,
		components.Tint,
		components.Label,
	]
	togglePropMapper *ecs.Map5[
		components.Pose,
		components.Animated,
		components.Tint,
		components.Label,
		components.Toggle,
	]
	patrolMapper *ecs.Map4[
		components.Pose,
		components.Patrol,
		components.Tint,
		components.Label,
	]

	// Queries
	boidFilter   *ecs.Filter4[components.Pose, components.Boid, components.Tint, components.Label]
	propFilter   *ecs.Filter4[components.Pose, components.Animated, components.Tint, components.Label]
	patrolFilter *ecs.Filter4[components.Pose, components.Patrol, components.Tint, components.Label]
	toggleFilter *ecs.Filter2[components.Animated, components.Toggle]
	labelFilter  *ecs.Filter3[components.Pose, components.Tint, components.Label]

	// Individual component mappers for lookups
	poseMap   *ecs.Map1[components.Pose]
	tintMap   *ecs.Map1[components.Tint]
	labelMap  *ecs.Map1[components.Label]
	boidMap   *ecs.Map[components.Boid]
	animMap   *ecs.Map[components.Animated]
	patrolMap *ecs.Map[components.Patrol]
	toggleMap *ecs.Map[components.Toggle]

	flocks   []flock
	parallel *parallelState

	// State
	tick           int32
	elapsed        float32
	paused         bool
	stepsPerUpdate int
	headless       bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)

	// Viewer (nil when headless)
	camera     *camera.Camera
	scene      *renderer.SceneRenderer
	backdrop   *renderer.Backdrop
	background colorful.Color
	hud        *ui.HUD
	controls   *ui.ControlsPanel
	inspect    *ui.Inspector
	perfPanel  *ui.PerfPanel
	showPerf   bool
	instances  []renderer.Instance
	selected   ecs.Entity
	hasSel     bool
	drag       dragState
	overlays   overlays

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game and loads its starting scene.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:              cfg,
		rngSeed:          opts.Seed,
		stepsPerUpdate:   steps,
		headless:         opts.Headless,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
		parallel:         newParallelState(cfg.Sim.ParallelThreshold),
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om

	if err := g.LoadScene(opts.Scene); err != nil {
		_ = om.Close()
		return nil, err
	}

	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		if err := om.WriteManifest(g.sceneName, g.rngSeed); err != nil {
			slog.Error("failed to write manifest", "error", err)
		}
	}

	if !opts.Headless {
		g.initViewer()
	}
	return g, nil
}

// LoadScene replaces the world with a freshly assembled scene.
// The RNG is reseeded so a scene always spawns the same way for a seed.
func (g *Game) LoadScene(name string) error {
	sc, err := g.cfg.Scene(name)
	if err != nil {
		return err
	}

	g.resetWorld()
	g.rng = rand.New(rand.NewSource(g.rngSeed))
	g.tick = 0
	g.elapsed = 0
	g.hasSel = false
	g.collector.Reset(0)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if err := g.spawnScene(sc); err != nil {
		return fmt.Errorf("scene %q: %w", sc.Name, err)
	}
	g.sceneName = sc.Name
	g.background = rgb(sc.Background)

	boids, props, patrols := g.Counts()
	slog.Info("scene loaded",
		"scene", sc.Name,
		"flocks", len(g.flocks),
		"boids", boids,
		"animated", props,
		"patrols", patrols,
	)

	if g.camera != nil {
		g.camera = newCamera(g.cfg, sc, g.screenWidth, g.screenHeight)
	}
	if g.backdrop != nil {
		g.backdrop.SetBase(g.background)
	}
	return nil
}

// resetWorld drops every entity by replacing the world and its mappers.
func (g *Game) resetWorld() {
	world := ecs.NewWorld()

	g.world = world
	g.boidMapper = ecs.NewMap4[
		components.Pose,
		components.Boid,
		components.Tint,
		components.Label,
	](world)
	g.propMapper = ecs.NewMap4[
		components.Pose,
		components.Animated,
		components.Tint,
		components.Label,
	](world)
	g.togglePropMapper = ecs.NewMap5[
		components.Pose,
		components.Animated,
		components.Tint,
		components.Label,
		components.Toggle,
	](world)
	g.patrolMapper = ecs.NewMap4[
		components.Pose,
		components.Patrol,
		components.Tint,
		components.Label,
	](world)

	g.boidFilter = ecs.NewFilter4[components.Pose, components.Boid, components.Tint, components.Label](world)
	g.propFilter = ecs.NewFilter4[components.Pose, components.Animated, components.Tint, components.Label](world)
	g.patrolFilter = ecs.NewFilter4[components.Pose, components.Patrol, components.Tint, components.Label](world)
	g.toggleFilter = ecs.NewFilter2[components.Animated, components.Toggle](world)
	g.labelFilter = ecs.NewFilter3[components.Pose, components.Tint, components.Label](world)

	g.poseMap = ecs.NewMap1[components.Pose](world)
	g.tintMap = ecs.NewMap1[components.Tint](world)
	g.labelMap = ecs.NewMap1[components.Label](world)
	g.boidMap = ecs.NewMap[components.Boid](world)
	g.animMap = ecs.NewMap[components.Animated](world)
	g.patrolMap = ecs.NewMap[components.Patrol](world)
	g.toggleMap = ecs.NewMap[components.Toggle](world)

	g.flocks = g.flocks[:0]
}

// Update runs one or more simulation steps based on the speed setting.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Step advances the scene by exactly one tick.
func (g *Game) Step() {
	g.simulationStep()
}

// Unload releases all resources.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if g.scene != nil {
		g.scene.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Elapsed returns simulated seconds since the scene was loaded.
func (g *Game) Elapsed() float32 {
	return g.elapsed
}

// SceneName returns the loaded scene.
func (g *Game) SceneName() string {
	return g.sceneName
}

// Paused reports whether the viewer has paused the simulation.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes Update.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the ticks per Update call, clamped to 1..10.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(1, min(n, 10))
}

// Counts returns the number of flock members, animated props and patrollers.
func (g *Game) Counts() (boids, props, patrols int) {
	boidQuery := g.boidFilter.Query()
	for boidQuery.Next() {
		boids++
	}
	propQuery := g.propFilter.Query()
	for propQuery.Next() {
		props++
	}
	patrolQuery := g.patrolFilter.Query()
	for patrolQuery.Next() {
		patrols++
	}
	return boids, props, patrols
}
