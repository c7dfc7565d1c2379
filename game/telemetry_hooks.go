package game

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/diorama/systems"
	"github.com/pthm-cable/diorama/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleScene())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleScene collects the committed state the window stats are built from.
func (g *Game) sampleScene() telemetry.SceneSample {
	sample := telemetry.SceneSample{
		Scene:  g.sceneName,
		Flocks: make([]telemetry.FlockSample, len(g.flocks)),
	}
	for i := range g.flocks {
		sample.Flocks[i].MinSpeed = g.flocks[i].params.MinSpeed
		sample.Flocks[i].MaxSpeed = g.flocks[i].params.MaxSpeed
	}

	boidQuery := g.boidFilter.Query()
	for boidQuery.Next() {
		pose, boid, _, _ := boidQuery.Get()
		f := &sample.Flocks[boid.Flock]
		f.Positions = append(f.Positions, pose.Position)
		f.Velocities = append(f.Velocities, boid.Velocity)
	}

	propQuery := g.propFilter.Query()
	for propQuery.Next() {
		sample.Animated++
	}

	toggleQuery := g.toggleFilter.Query()
	for toggleQuery.Next() {
		anim, toggle := toggleQuery.Get()
		if anim.Level() > toggle.Threshold {
			sample.Raised++
		}
	}

	patrolQuery := g.patrolFilter.Query()
	for patrolQuery.Next() {
		pose, patrol, _, _ := patrolQuery.Get()
		lag := patrol.Agent.Target().Sub(pose.Position).Len()
		sample.PatrolLags = append(sample.PatrolLags, float64(lag))
	}

	return sample
}

// SaveSnapshot writes the current state to dir and returns the file path.
func (g *Game) SaveSnapshot(dir string) (string, error) {
	return telemetry.SaveSnapshot(g.CreateSnapshot(nil), dir)
}

// saveSnapshot creates and saves a bookmark snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.CreateSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// CreateSnapshot builds a snapshot from the current state.
func (g *Game) CreateSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RunID:    g.outputManager.RunID(),
		RNGSeed:  g.rngSeed,
		Scene:    g.sceneName,
		Tick:     g.tick,
		Elapsed:  g.elapsed,
		Bookmark: bookmark,
	}

	boidQuery := g.boidFilter.Query()
	for boidQuery.Next() {
		pose, boid, _, label := boidQuery.Get()
		state := telemetry.BoidState{
			Group:    label.Group,
			Index:    label.Index,
			Flock:    boid.Flock,
			Position: pose.Position,
			Velocity: boid.Velocity,
		}
		if boid.Species.Valid {
			id := boid.Species.ID
			state.Species = &id
		}
		snapshot.Boids = append(snapshot.Boids, state)
	}

	propQuery := g.propFilter.Query()
	for propQuery.Next() {
		_, anim, _, label := propQuery.Get()
		snapshot.Props = append(snapshot.Props, telemetry.PropState{
			Group:       label.Group,
			Index:       label.Index,
			BaseScale:   anim.Agent.Base.Scale,
			TargetScale: anim.TargetScale,
		})
	}

	patrolQuery := g.patrolFilter.Query()
	for patrolQuery.Next() {
		pose, patrol, _, label := patrolQuery.Get()
		snapshot.Patrols = append(snapshot.Patrols, telemetry.PatrolState{
			Group:    label.Group,
			Index:    label.Index,
			Position: pose.Position,
			Angle:    patrol.Agent.Angle,
		})
	}

	return snapshot
}

// entityKey identifies an entity across runs of the same scene.
type entityKey struct {
	group string
	index int
}

// ApplySnapshot restores mutable state saved by CreateSnapshot. The snapshot's
// scene is loaded first; everything else is rebuilt from config and seed.
func (g *Game) ApplySnapshot(s *telemetry.Snapshot) error {
	if s.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, telemetry.SnapshotVersion)
	}
	g.rngSeed = s.RNGSeed
	if err := g.LoadScene(s.Scene); err != nil {
		return err
	}

	boids := make(map[entityKey]telemetry.BoidState, len(s.Boids))
	for _, b := range s.Boids {
		boids[entityKey{b.Group, b.Index}] = b
	}
	props := make(map[entityKey]telemetry.PropState, len(s.Props))
	for _, p := range s.Props {
		props[entityKey{p.Group, p.Index}] = p
	}
	patrols := make(map[entityKey]telemetry.PatrolState, len(s.Patrols))
	for _, p := range s.Patrols {
		patrols[entityKey{p.Group, p.Index}] = p
	}

	var missing []entityKey

	boidQuery := g.boidFilter.Query()
	for boidQuery.Next() {
		pose, boid, _, label := boidQuery.Get()
		key := entityKey{label.Group, label.Index}
		state, ok := boids[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		pose.Position = state.Position
		pose.Rotation = facingOrKeep(pose.Rotation, state.Velocity)
		boid.Velocity = state.Velocity
	}

	propQuery := g.propFilter.Query()
	for propQuery.Next() {
		_, anim, _, label := propQuery.Get()
		key := entityKey{label.Group, label.Index}
		state, ok := props[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		anim.Agent.Base.Scale = state.BaseScale
		anim.TargetScale = state.TargetScale
	}

	patrolQuery := g.patrolFilter.Query()
	for patrolQuery.Next() {
		pose, patrol, _, label := patrolQuery.Get()
		key := entityKey{label.Group, label.Index}
		state, ok := patrols[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		pose.Position = state.Position
		patrol.Agent.Angle = state.Angle
	}

	if len(missing) > 0 {
		return fmt.Errorf("snapshot of %q has no state for %d entities (first %s/%d)",
			s.Scene, len(missing), missing[0].group, missing[0].index)
	}

	g.tick = s.Tick
	g.elapsed = s.Elapsed
	g.collector.Reset(s.Tick)

	// Refresh displayed poses so a paused viewer shows the restored state.
	g.updateOscillators(0)

	slog.Info("snapshot applied", "scene", s.Scene, "tick", s.Tick)
	return nil
}

// facingOrKeep faces along velocity, keeping rot for a zero velocity.
func facingOrKeep(rot mgl32.Quat, velocity mgl32.Vec3) mgl32.Quat {
	if velocity.LenSqr() == 0 {
		return rot
	}
	return systems.Facing(velocity)
}
