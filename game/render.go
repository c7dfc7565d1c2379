package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/diorama/camera"
	"github.com/pthm-cable/diorama/components"
	"github.com/pthm-cable/diorama/config"
	"github.com/pthm-cable/diorama/renderer"
	"github.com/pthm-cable/diorama/ui"
)

const controlsLegend = "Drag: orbit | Right-drag/WASD: pan | Wheel: zoom | Click: select/toggle | " +
	"Space: pause | </>: speed | 1-9: scene | Tab: panel | P: perf | O/B/T: overlays | F5: snapshot | Home: reset view"

// initViewer creates the camera, renderers and panels. Requires a raylib window.
func (g *Game) initViewer() {
	sc, err := g.cfg.Scene(g.sceneName)
	if err != nil {
		slog.Error("viewer init", "error", err)
		return
	}
	g.camera = newCamera(g.cfg, sc, g.screenWidth, g.screenHeight)
	g.scene = renderer.NewSceneRenderer()
	g.backdrop = renderer.NewBackdrop(g.background)
	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(10, 100, 200)
	g.inspect = ui.NewInspector(int32(g.screenWidth)-270, 10, 260)
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-270, int32(g.screenHeight)-140)
}

// newCamera places the orbit camera on a scene's look-at point.
func newCamera(cfg *config.Config, sc *config.SceneConfig, w, h float32) *camera.Camera {
	cc := cfg.Camera
	cam := camera.New(w, h, sc.Target.V(), float32(cc.Distance), float32(cc.Yaw), float32(cc.Pitch))
	if cc.FOV > 0 {
		cam.FOV = float32(cc.FOV)
	}
	if cc.MinDistance > 0 {
		cam.MinDistance = float32(cc.MinDistance)
	}
	if float32(cc.MaxDistance) > cam.MinDistance {
		cam.MaxDistance = float32(cc.MaxDistance)
	}
	cam.SetDistance(cam.Distance)
	return cam
}

// Draw renders the scene and its panels.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ui.ColorOf(g.background))

	w, h := int32(g.screenWidth), int32(g.screenHeight)
	g.backdrop.Draw(w, h)
	g.scene.Draw(g.camera, g.collectInstances(), g.drawActiveOverlays)

	boids, props, patrols := g.Counts()
	g.hud.Draw(ui.HUDData{
		Title:   "Diorama",
		Scene:   g.sceneName,
		Boids:   boids,
		Props:   props,
		Patrols: patrols,
		Tick:    g.tick,
		Elapsed: g.elapsed,
		Speed:   g.stepsPerUpdate,
		FPS:     rl.GetFPS(),
		Paused:  g.paused,
	})
	g.hud.DrawControls(h, controlsLegend)

	g.applyControls(g.controls.Draw(g.controlsState()))

	if data, ok := g.inspectorData(); ok {
		g.inspect.Draw(data)
	}
	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	rl.EndDrawing()
}

// collectInstances gathers every labeled entity for the scene renderer.
func (g *Game) collectInstances() []renderer.Instance {
	g.instances = g.instances[:0]
	query := g.labelFilter.Query()
	for query.Next() {
		pose, tint, label := query.Get()
		g.instances = append(g.instances, renderer.Instance{
			Shape:     label.Shape,
			Transform: pose.Transform,
			Radius:    label.Radius,
			Height:    label.Height,
			Color:     tint.Color,
			Emissive:  tint.Emissive,
			Alpha:     tint.Alpha,
			Selected:  g.hasSel && query.Entity() == g.selected,
		})
	}
	return g.instances
}

func (g *Game) controlsState() ui.ControlsState {
	return ui.ControlsState{
		Scenes:   g.cfg.SceneNames(),
		Current:  g.sceneName,
		Paused:   g.paused,
		Steps:    g.stepsPerUpdate,
		MaxSteps: 10,
	}
}

// applyControls carries out what the controls panel reported.
func (g *Game) applyControls(a ui.ControlsAction) {
	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.ResetCamera {
		g.camera.Reset()
	}
	g.SetStepsPerUpdate(a.Steps)
	if a.Scene != "" {
		if err := g.LoadScene(a.Scene); err != nil {
			slog.Error("failed to load scene", "scene", a.Scene, "error", err)
		}
	}
}

// inspectorData describes the selected entity, if it still exists.
func (g *Game) inspectorData() (ui.InspectorData, bool) {
	e := g.selected
	if !g.hasSel || !g.world.Alive(e) {
		return ui.InspectorData{}, false
	}
	pose := g.poseMap.Get(e)
	tint := g.tintMap.Get(e)
	label := g.labelMap.Get(e)

	data := ui.InspectorData{
		Group:     label.Group,
		Index:     label.Index,
		Shape:     label.Shape,
		Position:  pose.Position,
		Scale:     pose.Scale,
		Color:     tint.Color,
		Clickable: g.toggleMap.Has(e),
		Values:    make(map[string]float32),
	}

	switch {
	case g.boidMap.Has(e):
		boid := g.boidMap.Get(e)
		data.Fields = components.BoidFieldDescriptors()
		data.Values["speed"] = boid.Velocity.Len()
		data.Values["flock"] = float32(boid.Flock)
		if boid.Species.Valid {
			data.Values["species"] = float32(boid.Species.ID)
		}
	case g.animMap.Has(e):
		anim := g.animMap.Get(e)
		data.Fields = components.AnimatedFieldDescriptors()
		data.Values["layers"] = float32(len(anim.Agent.Layers))
		data.Values["base_scale"] = anim.Agent.Base.Scale[0]
		data.Values["target_scale"] = anim.Level()
	case g.patrolMap.Has(e):
		patrol := g.patrolMap.Get(e)
		data.Fields = components.PatrolFieldDescriptors()
		data.Values["angle"] = patrol.Agent.Angle
		data.Values["lag"] = patrol.Agent.Target().Sub(pose.Position).Len()
	}
	return data, true
}
