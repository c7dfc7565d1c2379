package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// Backdrop fills the screen with a vertical gradient derived from a scene's
// clear color: the base at the horizon, darker toward the top.
type Backdrop struct {
	top, bottom rl.Color
}

// NewBackdrop creates a backdrop for base.
func NewBackdrop(base colorful.Color) *Backdrop {
	b := &Backdrop{}
	b.SetBase(base)
	return b
}

// SetBase recomputes the gradient for a new clear color.
func (b *Backdrop) SetBase(base colorful.Color) {
	top, bottom := BackdropColors(base)
	b.top = toRL(top)
	b.bottom = toRL(bottom)
}

// BackdropColors returns the gradient's top and bottom colors for base.
// The top keeps base's hue and chroma at a lower lightness.
func BackdropColors(base colorful.Color) (top, bottom colorful.Color) {
	h, c, l := base.Clamped().Hcl()
	top = colorful.Hcl(h, c, l*0.55).Clamped()
	return top, base.Clamped()
}

// Draw clears the screen with the gradient.
func (b *Backdrop) Draw(width, height int32) {
	rl.DrawRectangleGradientV(0, 0, width, height, b.top, b.bottom)
}

func toRL(c colorful.Color) rl.Color {
	r, g, bl := c.RGB255()
	return rl.Color{R: r, G: g, B: bl, A: 255}
}
