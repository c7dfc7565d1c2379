// Package ui provides a descriptor-driven UI for the diorama viewer.
// Panels are built from field metadata so the inspector follows the
// components it displays.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar over Range
	WidgetColorSwatch                   // Color preview square
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// DefaultRange returns a [0, 1] range.
func DefaultRange() FieldRange {
	return FieldRange{Min: 0, Max: 1}
}

// Normalize maps v into [0, 1] over the range, clamping outside values.
// An empty range maps everything to 0.
func (r FieldRange) Normalize(v float32) float32 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	return max(0, min((v-r.Min)/span, 1))
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID          string               // Unique identifier for the field
	Label       string               // Display label
	Widget      WidgetType           // How to render
	Format      string               // Printf format for text (e.g., "%.2f")
	Range       FieldRange           // Value range for bars
	Visible     func(any) bool       // Optional visibility check (nil = always visible)
	Getter      func(any) float32    // Value extractor (for numeric fields)
	TextGetter  func(any) string     // Value extractor (for text fields)
	ColorGetter func(any) rl.Color   // Color extractor (for color swatches)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 15, G: 22, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 75, B: 90, A: 255},
		SectionHeader:  rl.Color{R: 120, G: 200, B: 220, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// ColorOf converts a material color to an opaque raylib color.
func ColorOf(c colorful.Color) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}
