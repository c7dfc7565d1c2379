package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	orbitSpeed     = 0.005 // radians per pixel dragged
	keyOrbitSpeed  = 0.03  // radians per frame
	panSpeed       = 0.0015
	keyPanSpeed    = 0.01
	clickSlopPixel = 4 // drags shorter than this count as clicks
)

var sceneKeys = []int32{
	rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive,
	rl.KeySix, rl.KeySeven, rl.KeyEight, rl.KeyNine,
}

// dragState tracks a left-button press so a click can be told from an orbit drag.
type dragState struct {
	active   bool
	traveled float32
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.SetStepsPerUpdate(g.stepsPerUpdate - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.SetStepsPerUpdate(g.stepsPerUpdate + 1)
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		if path, err := g.SaveSnapshot(g.snapshotDirOrDefault()); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	}

	g.handleOverlayKeys()
	g.handleSceneKeys()
	g.handleCameraInput()
	g.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
	if g.inspect != nil {
		g.inspect.SetPosition(int32(w)-270, 10)
	}
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-270, int32(h)-140)
	}
}

// handleSceneKeys switches scenes with the number keys, in config order.
func (g *Game) handleSceneKeys() {
	names := g.cfg.SceneNames()
	for i, key := range sceneKeys {
		if i >= len(names) || !rl.IsKeyPressed(key) {
			continue
		}
		if names[i] == g.sceneName {
			return
		}
		if err := g.LoadScene(names[i]); err != nil {
			slog.Error("failed to load scene", "scene", names[i], "error", err)
		}
		return
	}
}

// handleCameraInput processes orbit, pan and zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Arrow keys orbit
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(keyOrbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-keyOrbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, keyOrbitSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -keyOrbitSpeed)
	}

	// WASD pans
	if rl.IsKeyDown(rl.KeyD) {
		g.camera.Pan(keyPanSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyA) {
		g.camera.Pan(-keyPanSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyW) {
		g.camera.Pan(0, keyPanSpeed)
	}
	if rl.IsKeyDown(rl.KeyS) {
		g.camera.Pan(0, -keyPanSpeed)
	}

	// Right-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X*panSpeed, d.Y*panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1.0 + wheelMove*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse orbits on left-drag and picks on left-click. Clicks on the
// controls panel are left to the panel.
func (g *Game) handleMouse() {
	if g.camera == nil {
		return
	}
	mouse := rl.GetMousePosition()

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if g.controls.Contains(mouse.X, mouse.Y, g.controlsState()) {
			return
		}
		g.drag = dragState{active: true}
	}
	if !g.drag.active {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		g.drag.traveled += abs(d.X) + abs(d.Y)
		if g.drag.traveled > clickSlopPixel {
			g.camera.Orbit(-d.X*orbitSpeed, d.Y*orbitSpeed)
		}
	}

	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		if g.drag.traveled <= clickSlopPixel {
			g.click(mouse.X, mouse.Y)
		}
		g.drag = dragState{}
	}
}

// click selects the entity under the cursor and toggles it when clickable.
// A click on empty space clears the selection.
func (g *Game) click(sx, sy float32) {
	origin, dir := g.camera.Ray(sx, sy)
	e, ok := g.Pick(origin, dir)
	if !ok {
		g.hasSel = false
		return
	}
	g.selected = e
	g.hasSel = true
	g.Toggle(e)
}

func (g *Game) snapshotDirOrDefault() string {
	if g.snapshotDir != "" {
		return g.snapshotDir
	}
	return "snapshots"
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
