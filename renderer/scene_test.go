package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/diorama/systems"
)

func near3(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestAxisAngle(t *testing.T) {
	tests := []struct {
		name      string
		q         mgl32.Quat
		wantAxis  mgl32.Vec3
		wantAngle float32
	}{
		{"identity", mgl32.QuatIdent(), mgl32.Vec3{1, 0, 0}, 0},
		{"quarter about y", mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}), mgl32.Vec3{0, 1, 0}, math.Pi / 2},
		{"large about z", mgl32.QuatRotate(3, mgl32.Vec3{0, 0, 1}), mgl32.Vec3{0, 0, 1}, 3},
		{"negated quaternion", mgl32.QuatRotate(1, mgl32.Vec3{1, 0, 0}).Scale(-1), mgl32.Vec3{1, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis, angle := AxisAngle(tt.q)
			if math.Abs(float64(angle-tt.wantAngle)) > 1e-4 {
				t.Errorf("angle = %v, want %v", angle, tt.wantAngle)
			}
			if !near3(axis, tt.wantAxis, 1e-4) {
				t.Errorf("axis = %v, want %v", axis, tt.wantAxis)
			}
		})
	}
}

func TestSortBackToFront(t *testing.T) {
	at := func(z float32) Instance {
		return Instance{Transform: systems.NewTransform(mgl32.Vec3{0, 0, z}, mgl32.Vec3{1, 1, 1})}
	}
	instances := []Instance{at(1), at(10), at(-5), at(3)}
	SortBackToFront(instances, mgl32.Vec3{})

	want := []float32{10, -5, 3, 1}
	for i, w := range want {
		if got := instances[i].Transform.Position[2]; got != w {
			t.Errorf("instances[%d].z = %v, want %v", i, got, w)
		}
	}
}

func TestShadeAddsEmissive(t *testing.T) {
	base := colorful.Color{R: 0.5, G: 0.2, B: 0}
	plain := shade(base, colorful.Color{}, 1)
	lit := shade(base, colorful.Color{R: 0.8, G: 0.1, B: 0.1}, 0.5)

	if plain.R != 128 || plain.A != 255 {
		t.Errorf("plain = %+v, want R=128 A=255", plain)
	}
	if lit.R != 255 {
		t.Errorf("lit red = %d, want clamped 255", lit.R)
	}
	if lit.G <= plain.G || lit.B <= plain.B {
		t.Errorf("emissive should brighten: plain %+v lit %+v", plain, lit)
	}
	if lit.A != 127 {
		t.Errorf("alpha = %d, want 127", lit.A)
	}
}

func TestBackdropTopIsDarker(t *testing.T) {
	base := colorful.Color{R: 0.02, G: 0.15, B: 0.3}
	top, bottom := BackdropColors(base)
	_, _, lt := top.Hcl()
	_, _, lb := bottom.Hcl()
	if lt >= lb {
		t.Errorf("top lightness %v should be below bottom %v", lt, lb)
	}
	if bottom != base {
		t.Errorf("bottom = %v, want base %v", bottom, base)
	}
}
