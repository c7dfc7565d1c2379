package game

import (
	"github.com/pthm-cable/diorama/systems"
	"github.com/pthm-cable/diorama/telemetry"
)

// simulationStep runs a single tick of the scene.
func (g *Game) simulationStep() {
	dt := g.cfg.Derived.DT32
	perf := g.perfCollector
	perf.StartTick()

	// 1. Flocks: snapshot, compute, commit
	perf.StartPhase(telemetry.PhaseFlockSnapshot)
	g.snapshotFlocks()

	perf.StartPhase(telemetry.PhaseFlocking)
	g.computeFlocks(dt)

	perf.StartPhase(telemetry.PhaseCommit)
	g.applyIntents()

	// 2. Patrollers chase their moving targets
	perf.StartPhase(telemetry.PhasePatrol)
	g.updatePatrols(dt)

	// 3. Oscillators are evaluated at end-of-tick time
	g.elapsed += dt
	perf.StartPhase(telemetry.PhaseOscillators)
	g.updateOscillators(dt)

	g.tick++

	perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	perf.EndTick()
}

// updatePatrols advances every patroller's path angle and moves it a bounded
// step toward the new target, facing its direction of travel.
func (g *Game) updatePatrols(dt float32) {
	query := g.patrolFilter.Query()
	for query.Next() {
		pose, patrol, _, _ := query.Get()
		agent := &patrol.Agent

		target := systems.StepPatrol(agent, dt)
		prev := pose.Position
		pose.Position = systems.MoveToward(prev, target, agent.TravelSpeed()*dt)

		// Keep the last facing when the step is zero.
		if moved := pose.Position.Sub(prev); moved.LenSqr() > 0 {
			pose.Rotation = systems.Facing(moved)
		}
	}
}

// updateOscillators eases base scales toward their targets and writes each
// prop's displayed pose and color for the current elapsed time.
func (g *Game) updateOscillators(dt float32) {
	query := g.propFilter.Query()
	for query.Next() {
		pose, anim, tint, _ := query.Get()
		base := &anim.Agent.Base

		if base.Scale != anim.TargetScale {
			if anim.EaseRate <= 0 {
				base.Scale = anim.TargetScale
			} else {
				base.Scale = systems.EaseScale(base.Scale, anim.TargetScale, dt, anim.EaseRate)
			}
		}

		d := systems.Evaluate(&anim.Agent, g.elapsed)
		pose.Transform = d.Apply(*base)
		if d.HasColor {
			tint.Color = d.Color
			tint.Emissive = d.Emissive
		}
	}
}
