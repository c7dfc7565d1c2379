package ui

import (
	"testing"

	"github.com/pthm-cable/diorama/components"
)

func TestSectionsGroupInOrder(t *testing.T) {
	fields := append(components.BoidFieldDescriptors(), components.AnimatedFieldDescriptors()...)
	sections := Sections(fields)

	wantIDs := []string{"motion", "flock", "state"}
	if len(sections) != len(wantIDs) {
		t.Fatalf("got %d sections, want %d", len(sections), len(wantIDs))
	}
	for i, id := range wantIDs {
		if sections[i].ID != id {
			t.Errorf("section %d = %q, want %q", i, sections[i].ID, id)
		}
	}
	// speed (boid) and layers (animated) share the motion group
	if n := len(sections[0].Fields); n != 2 {
		t.Errorf("motion section has %d fields, want 2", n)
	}
}

func TestFieldFromReadsValues(t *testing.T) {
	fd := FieldFrom(components.FieldDescriptor{ID: "speed", Label: "Speed", Format: "%.2f", Max: 10, IsBar: true})
	if fd.Widget != WidgetBar {
		t.Errorf("widget = %v, want bar", fd.Widget)
	}

	with := InspectorData{Values: map[string]float32{"speed": 4.5}}
	without := InspectorData{}

	if !fd.Visible(with) {
		t.Error("field with a value should be visible")
	}
	if fd.Visible(without) {
		t.Error("field without a value should be hidden")
	}
	if got := fd.Getter(with); got != 4.5 {
		t.Errorf("getter = %v, want 4.5", got)
	}
}

func TestFieldRangeNormalize(t *testing.T) {
	tests := []struct {
		name string
		r    FieldRange
		v    float32
		want float32
	}{
		{"inside", FieldRange{Min: 0, Max: 10}, 5, 0.5},
		{"below", FieldRange{Min: 0, Max: 10}, -3, 0},
		{"above", FieldRange{Min: 0, Max: 10}, 30, 1},
		{"offset", FieldRange{Min: 1, Max: 3}, 2.5, 0.75},
		{"empty", FieldRange{Min: 2, Max: 2}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Normalize(tt.v); got != tt.want {
				t.Errorf("Normalize(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
