package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the panel displays.
type ControlsState struct {
	Scenes   []string
	Current  string
	Paused   bool
	Steps    int
	MaxSteps int
}

// ControlsAction reports what the user clicked this frame.
// Scene is empty when no scene button was pressed.
type ControlsAction struct {
	TogglePause bool
	ResetCamera bool
	Scene       string
	Steps       int
}

// ControlsPanel renders the left-side panel with playback and scene controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls on the visible panel.
func (c *ControlsPanel) Contains(px, py float32, state ControlsState) bool {
	if !c.visible {
		return false
	}
	rect := rl.Rectangle{
		X:      float32(c.x),
		Y:      float32(c.y),
		Width:  float32(c.width),
		Height: float32(c.height(state)),
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: px, Y: py}, rect)
}

const (
	buttonHeight = 24
	rowGap       = 6
)

func (c *ControlsPanel) height(state ControlsState) int32 {
	r := c.renderer
	rows := int32(3 + len(state.Scenes))
	return r.Theme.Padding*2 + r.Theme.LineHeight*2 + rows*(buttonHeight+rowGap)
}

// Draw renders the panel and returns the actions triggered this frame.
func (c *ControlsPanel) Draw(state ControlsState) ControlsAction {
	action := ControlsAction{Steps: state.Steps}
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height(state))

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(r.Theme.LineHeight + 4)

	pauseText := "Pause"
	if state.Paused {
		pauseText = "Resume"
	}
	half := (w - rowGap) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: buttonHeight}, pauseText) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + rowGap, Y: y, Width: half, Height: buttonHeight}, "Reset View") {
		action.ResetCamera = true
	}
	y += buttonHeight + rowGap

	maxSteps := max(state.MaxSteps, 1)
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: y, Width: w - 80, Height: 18},
		"Speed",
		fmt.Sprintf("%dx", state.Steps),
		float32(state.Steps),
		1, float32(maxSteps),
	)
	action.Steps = int(math.Round(float64(steps)))
	y += buttonHeight + rowGap

	r.DrawSectionHeader(int32(x), int32(y), "Scenes")
	y += float32(r.Theme.LineHeight)
	for _, name := range state.Scenes {
		label := name
		if name == state.Current {
			label = "> " + name
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: buttonHeight}, label) && name != state.Current {
			action.Scene = name
		}
		y += buttonHeight + rowGap
	}

	return action
}
