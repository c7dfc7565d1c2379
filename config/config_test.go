package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/diorama/systems"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	want := []string{"alien_planet", "ocean_depths", "museum", "platformer", "simple"}
	got := cfg.SceneNames()
	if len(got) != len(want) {
		t.Fatalf("scenes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scene %d = %q, want %q", i, got[i], want[i])
		}
	}

	if cfg.Derived.DT32 <= 0 {
		t.Errorf("DT32 = %f, want > 0", cfg.Derived.DT32)
	}
}

func TestOceanFishDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	sc, err := cfg.Scene("ocean_depths")
	if err != nil {
		t.Fatal(err)
	}
	fish := sc.Flocks[0]
	p := fish.Params.Params()

	if p.CrossSpeciesPerception != 0.5 {
		t.Errorf("cross-species perception = %f, want 0.5", p.CrossSpeciesPerception)
	}
	if p.Bounds == nil {
		t.Fatal("fish bounds missing")
	}
	if !math.IsInf(float64(p.Bounds.Min.X()), -1) || p.Bounds.Min.Y() != -2 || p.Bounds.Max.Y() != 12 {
		t.Errorf("bounds = %+v, want open x/z and y in [-2, 12]", *p.Bounds)
	}
	if p.Center == nil || *p.Center != [3]float32{0, 3, 0} {
		t.Errorf("center = %v, want (0, 3, 0)", p.Center)
	}

	total := 0
	for _, s := range fish.Schools {
		if s.Species == nil {
			t.Errorf("school at %v has no species", s.Center)
		}
		total += s.Count
	}
	if total != 75 {
		t.Errorf("fish total = %d, want 75", total)
	}
}

func TestSceneLookup(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	sc, err := cfg.Scene("")
	if err != nil || sc.Name != cfg.Sim.DefaultScene {
		t.Errorf("empty name should select default scene, got %v, %v", sc, err)
	}
	if _, err := cfg.Scene("atlantis"); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestParseOverlay(t *testing.T) {
	data := []byte(`
sim:
  parallel_threshold: 8
scenes:
  - name: simple
    animated:
      - name: ball
        positions: [[1, 2, 3]]
        layers:
          - kind: bob
            amplitude: 1
  - name: tank
    flocks:
      - name: minnows
        params:
          perception_radius: 4
          avoidance_radius: 1
          max_speed: 3
          min_speed: 1
          turn_speed: 2
        schools:
          - count: 10
            speed: 2
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Sim.ParallelThreshold != 8 {
		t.Errorf("parallel threshold = %d, want 8", cfg.Sim.ParallelThreshold)
	}
	if cfg.Sim.DT <= 0 {
		t.Error("dt default lost by overlay")
	}
	if n := len(cfg.Scenes); n != 6 {
		t.Fatalf("scene count = %d, want 6 (5 defaults + tank)", n)
	}

	simple, _ := cfg.Scene("simple")
	if len(simple.Animated) != 1 || simple.Animated[0].Name != "ball" {
		t.Errorf("simple scene not replaced: %+v", simple.Animated)
	}
	ball := simple.Animated[0]
	if ball.Count != 1 || ball.Scale != Fixed(1) || ball.Layers[0].Speed != Fixed(1) {
		t.Errorf("derived defaults missing: count %d scale %v speed %v", ball.Count, ball.Scale, ball.Layers[0].Speed)
	}

	tank, err := cfg.Scene("tank")
	if err != nil {
		t.Fatal(err)
	}
	p := tank.Flocks[0].Params
	if p.CrossSpeciesPerception == nil || *p.CrossSpeciesPerception != 0.5 {
		t.Error("cross-species perception default not applied")
	}
	if p.BoundsForce == nil || *p.BoundsForce != 2 {
		t.Error("bounds force default not applied")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "avoidance exceeds perception",
			yaml: `
scenes:
  - name: bad
    flocks:
      - name: f
        params: {perception_radius: 2, avoidance_radius: 3, max_speed: 5, min_speed: 1}
`,
			wantErr: systems.ErrInvalidParams,
		},
		{
			name: "min speed exceeds max",
			yaml: `
scenes:
  - name: bad
    flocks:
      - name: f
        params: {perception_radius: 5, avoidance_radius: 1, max_speed: 2, min_speed: 3}
`,
			wantErr: systems.ErrInvalidParams,
		},
		{
			name: "unknown layer kind",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: wobble}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "pulse range inverted",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: pulse, min: 2, max: 1}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "unknown shape",
			yaml: `
scenes:
  - name: bad
    patrols:
      - name: p
        shape: dodecahedron
        orbit: 3
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "toggle without range",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        toggle: {low: 2, high: 1}
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "negative parallel threshold",
			yaml: `
sim:
  parallel_threshold: -1
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "grid cell far below perception",
			yaml: `
sim:
  grid_cell_size: 0.1
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "duplicate animated group",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
      - name: a
        positions: [[1, 0, 0]]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "duplicate flock",
			yaml: `
scenes:
  - name: bad
    flocks:
      - name: f
        shape: cone
        params: {perception_radius: 5, avoidance_radius: 1, max_speed: 5, min_speed: 1}
      - name: f
        shape: cone
        params: {perception_radius: 5, avoidance_radius: 1, max_speed: 5, min_speed: 1}
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "duplicate patrol",
			yaml: `
scenes:
  - name: bad
    patrols:
      - {name: p, shape: sphere, orbit: 3}
      - {name: p, shape: sphere, orbit: 4}
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "first layer shares phase",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: bob, share_phase: true}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "negative speed ratio",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: bob}, {kind: pulse, min: 1, max: 2, speed_ratio: -2}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "flat base scale",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        base_scale: [1, 0, 1]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "rise top below bottom",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: rise, bottom: 5, top: 2}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "shuttle without travel",
			yaml: `
scenes:
  - name: bad
    animated:
      - name: a
        positions: [[0, 0, 0]]
        layers: [{kind: shuttle}]
`,
			wantErr: ErrInvalidConfig,
		},
		{
			name: "missing default scene",
			yaml: `
sim:
  default_scene: nowhere
`,
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGridCellSizeAccepted(t *testing.T) {
	// Sky rays perceive 10 units; a quarter of that is the smallest cell allowed.
	cfg, err := Parse([]byte("sim:\n  grid_cell_size: 2.5\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Sim.GridCellSize != 2.5 {
		t.Errorf("grid_cell_size = %g, want 2.5", cfg.Sim.GridCellSize)
	}
}

func TestRangeYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Range
		wantErr bool
	}{
		{"scalar", "v: 1.5", Fixed(1.5), false},
		{"pair", "v: [0.8, 1.2]", Range{Min: 0.8, Max: 1.2}, false},
		{"inverted", "v: [2, 1]", Range{}, true},
		{"triple", "v: [1, 2, 3]", Range{}, true},
		{"mapping", "v: {a: 1}", Range{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				V Range `yaml:"v"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.V != tt.want {
				t.Errorf("got %v, want %v", out.V, tt.want)
			}
		})
	}
}

func TestWriteYAMLReloads(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if len(reloaded.Scenes) != len(cfg.Scenes) {
		t.Errorf("scene count %d, want %d", len(reloaded.Scenes), len(cfg.Scenes))
	}
	ocean, _ := reloaded.Scene("ocean_depths")
	b := ocean.Flocks[0].Params.Bounds
	if b == nil || !math.IsInf(b.Max[0], 1) {
		t.Errorf("infinite bounds lost in round trip: %+v", b)
	}
}
