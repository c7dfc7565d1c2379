package components

import "strings"

// Shape selects the mesh the viewer draws for an entity.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeCube
	ShapeCone     // flock members, drawn pointing along velocity
	ShapeCylinder // crystals, coral, god rays
	ShapeTorus
)

// String returns the display name for a Shape.
func (s Shape) String() string {
	names := ShapeNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ShapeNames returns the config names for all shapes.
// The order matches the Shape constants.
func ShapeNames() []string {
	return []string{"sphere", "cube", "cone", "cylinder", "torus"}
}

// ParseShape looks up a shape by config name. Empty means sphere.
func ParseShape(name string) (Shape, bool) {
	if name == "" {
		return ShapeSphere, true
	}
	for i, n := range ShapeNames() {
		if strings.EqualFold(n, name) {
			return Shape(i), true
		}
	}
	return ShapeSphere, false
}

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float32 // Minimum value (for bars)
	Max    float32 // Maximum value (for bars)
	IsBar  bool    // True to render as progress bar
	Group  string  // Logical grouping
}

// BoidFieldDescriptors returns metadata for flock member fields.
func BoidFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "speed", Label: "Speed", Format: "%.2f", Min: 0, Max: 10, IsBar: true, Group: "motion"},
		{ID: "species", Label: "Species", Format: "%.0f", Group: "flock"},
		{ID: "flock", Label: "Flock", Format: "%.0f", Group: "flock"},
	}
}

// AnimatedFieldDescriptors returns metadata for animated entity fields.
func AnimatedFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "layers", Label: "Layers", Format: "%.0f", Group: "motion"},
		{ID: "base_scale", Label: "Base Scale", Format: "%.2f", Min: 0, Max: 3, IsBar: true, Group: "state"},
		{ID: "target_scale", Label: "Target", Format: "%.2f", Min: 0, Max: 3, IsBar: true, Group: "state"},
	}
}

// PatrolFieldDescriptors returns metadata for patroller fields.
func PatrolFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "angle", Label: "Angle", Format: "%.2f", Group: "path"},
		{ID: "lag", Label: "Lag", Format: "%.2f", Min: 0, Max: 5, IsBar: true, Group: "path"},
	}
}
