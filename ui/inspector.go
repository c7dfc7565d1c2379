package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/diorama/components"
)

// InspectorData holds all the data needed to render the inspector panel.
// Values is keyed by component field descriptor ID; fields without a value
// are hidden.
type InspectorData struct {
	Group     string
	Index     int
	Shape     components.Shape
	Position  mgl32.Vec3
	Scale     mgl32.Vec3
	Color     colorful.Color
	Clickable bool
	Fields    []components.FieldDescriptor
	Values    map[string]float32
}

// Inspector renders the selected entity panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data and returns the
// Y position below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	sections := append([]SectionDescriptor{entitySection()}, Sections(data.Fields)...)

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range sections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	y := ins.y + padding
	contentWidth := ins.width - padding*2

	rl.DrawText(fmt.Sprintf("%s #%d", data.Group, data.Index), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range sections {
		y = r.DrawSection(x, y, sd, data, contentWidth)
	}
	return y
}

// entitySection describes the fields every entity has.
func entitySection() SectionDescriptor {
	return SectionDescriptor{
		ID:    "entity",
		Title: "Entity",
		Fields: []FieldDescriptor{
			{ID: "shape", Label: "Shape", Widget: WidgetText, TextGetter: func(d any) string {
				return d.(InspectorData).Shape.String()
			}},
			{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				p := d.(InspectorData).Position
				return fmt.Sprintf("%.1f, %.1f, %.1f", p[0], p[1], p[2])
			}},
			{ID: "scale", Label: "Scale", Widget: WidgetText, TextGetter: func(d any) string {
				s := d.(InspectorData).Scale
				return fmt.Sprintf("%.2f, %.2f, %.2f", s[0], s[1], s[2])
			}},
			{ID: "color", Label: "Color", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
				return ColorOf(d.(InspectorData).Color)
			}},
			{ID: "clickable", Label: "Click", Widget: WidgetText,
				Visible: func(d any) bool { return d.(InspectorData).Clickable },
				TextGetter: func(any) string { return "toggles size" },
			},
		},
	}
}

// Sections groups component field descriptors into UI sections, in the
// order their groups first appear.
func Sections(fields []components.FieldDescriptor) []SectionDescriptor {
	var sections []SectionDescriptor
	index := make(map[string]int)
	for _, cf := range fields {
		i, ok := index[cf.Group]
		if !ok {
			i = len(sections)
			index[cf.Group] = i
			sections = append(sections, SectionDescriptor{ID: cf.Group, Title: sectionTitle(cf.Group)})
		}
		sections[i].Fields = append(sections[i].Fields, FieldFrom(cf))
	}
	return sections
}

// FieldFrom converts a component field descriptor into a widget that reads
// its value from InspectorData.Values.
func FieldFrom(cf components.FieldDescriptor) FieldDescriptor {
	id := cf.ID
	fd := FieldDescriptor{
		ID:     id,
		Label:  cf.Label,
		Widget: WidgetText,
		Format: cf.Format,
		Range:  FieldRange{Min: cf.Min, Max: cf.Max},
		Visible: func(d any) bool {
			_, ok := d.(InspectorData).Values[id]
			return ok
		},
		Getter: func(d any) float32 {
			return d.(InspectorData).Values[id]
		},
	}
	if cf.IsBar {
		fd.Widget = WidgetBar
	}
	return fd
}

func sectionTitle(group string) string {
	switch group {
	case "motion":
		return "Motion"
	case "flock":
		return "Flock"
	case "state":
		return "State"
	case "path":
		return "Path"
	}
	return group
}
