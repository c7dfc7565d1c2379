// Package config provides configuration loading and access for the diorama scenes.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim       SimConfig       `yaml:"sim"`
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Scenes    []SceneConfig   `yaml:"scenes"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds tick parameters shared by every scene.
type SimConfig struct {
	DT                float64 `yaml:"dt"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // members per flock before the worker pool is used
	GridCellSize      float64 `yaml:"grid_cell_size"`     // 0 = brute-force neighbor scan
	DefaultScene      string  `yaml:"default_scene"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the initial orbit camera.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	Yaw         float64 `yaml:"yaw"`   // radians
	Pitch       float64 `yaml:"pitch"` // radians
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	FOV         float64 `yaml:"fov"` // degrees
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SceneConfig describes one diorama: its flocks, animated props and patrollers.
type SceneConfig struct {
	Name       string           `yaml:"name"`
	Target     Vec3             `yaml:"target"`     // camera look-at point
	Background Vec3             `yaml:"background"` // clear color, RGB 0..1
	Flocks     []FlockConfig    `yaml:"flocks"`
	Animated   []AnimatedConfig `yaml:"animated"`
	Patrols    []PatrolConfig   `yaml:"patrols"`
}

// FlockConfig is one independent flock: shared parameters plus the schools
// spawned into it.
type FlockConfig struct {
	Name    string         `yaml:"name"`
	Shape   string         `yaml:"shape"`
	Params  FlockParams    `yaml:"params"`
	Schools []SchoolConfig `yaml:"schools"`
}

// FlockParams mirrors systems.FlockParams in YAML form.
type FlockParams struct {
	PerceptionRadius       float64            `yaml:"perception_radius"`
	AvoidanceRadius        float64            `yaml:"avoidance_radius"`
	MaxSpeed               float64            `yaml:"max_speed"`
	MinSpeed               float64            `yaml:"min_speed"`
	TurnSpeed              float64            `yaml:"turn_speed"`
	SeparationWeight       float64            `yaml:"separation_weight"`
	AlignmentWeight        float64            `yaml:"alignment_weight"`
	CohesionWeight         float64            `yaml:"cohesion_weight"`
	CenterPullStrength     float64            `yaml:"center_pull_strength"`
	Center                 *Vec3              `yaml:"center,omitempty"` // nil = origin
	Bounds                 *BoundsConfig      `yaml:"bounds,omitempty"`
	BoundsForce            *float64           `yaml:"bounds_force,omitempty"`
	CrossSpeciesPerception *float64           `yaml:"cross_species_perception,omitempty"`
	SpeciesPerception      map[uint32]float64 `yaml:"species_perception,omitempty"`
}

// BoundsConfig is an axis-aligned box. Use .inf / -.inf for open axes.
type BoundsConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// SchoolConfig spawns Count members around Center.
// Offsets are (U-0.5)*Spread per axis; headings are random with the vertical
// component scaled by VerticalBias.
type SchoolConfig struct {
	Species      *uint32 `yaml:"species,omitempty"`
	Count        int     `yaml:"count"`
	Center       Vec3    `yaml:"center"`
	Spread       Vec3    `yaml:"spread"`
	Speed        float64 `yaml:"speed"`
	VerticalBias float64 `yaml:"vertical_bias"`
	Size         float64 `yaml:"size"`
	Color        Vec3    `yaml:"color"` // RGB 0..1
}

// AnimatedConfig is a group of props driven by oscillator layers.
// Positions lists explicit spawn points; otherwise Count props are scattered
// over Area.
type AnimatedConfig struct {
	Name      string        `yaml:"name"`
	Shape     string        `yaml:"shape"`
	Radius    float64       `yaml:"radius"`
	Height    float64       `yaml:"height,omitempty"` // cylinders; 0 uses 2*radius
	Count     int           `yaml:"count"`
	Positions []Vec3        `yaml:"positions,omitempty"`
	Area      *AreaConfig   `yaml:"area,omitempty"`
	Scale     Range         `yaml:"scale"`
	BaseScale Vec3          `yaml:"base_scale"` // per-axis proportions, multiplied by the sampled scale
	Color     Vec3          `yaml:"color"`
	Alpha     float64       `yaml:"alpha"`
	Layers    []LayerConfig `yaml:"layers"`
	Toggle    *ToggleConfig `yaml:"toggle,omitempty"`
}

// AreaConfig scatters spawn points uniformly in a box around Center.
type AreaConfig struct {
	Center Vec3 `yaml:"center"`
	Extent Vec3 `yaml:"extent"`
}

// LayerConfig is one oscillator layer. Which fields apply depends on Kind.
// Range fields are sampled once per prop at spawn.
type LayerConfig struct {
	Kind      string  `yaml:"kind"`
	Speed     Range   `yaml:"speed"`
	Phase     Range   `yaml:"phase"`
	PhaseStep float64 `yaml:"phase_step"` // added per prop index
	Amplitude Range   `yaml:"amplitude"`

	// Layers after the first may follow the one before them.
	SharePhase bool    `yaml:"share_phase"` // reuse the previous layer's phase
	SpeedRatio float64 `yaml:"speed_ratio"` // nonzero: previous layer's speed times this

	// pulse
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	Shape          string  `yaml:"shape"` // abs | unit
	PreserveVolume bool    `yaml:"preserve_volume"`
	Axes           Vec3    `yaml:"axes"` // nonzero components select scaled axes; zero scales all

	// color_cycle
	HueOffset         Range   `yaml:"hue_offset"`
	HueStep           float64 `yaml:"hue_step"`
	Saturation        float64 `yaml:"saturation"`
	Lightness         float64 `yaml:"lightness"`
	EmissiveLightness float64 `yaml:"emissive_lightness"`
	EmissiveGain      float64 `yaml:"emissive_gain"`

	// sway
	Tilt           float64 `yaml:"tilt"`
	Axis           Vec3    `yaml:"axis"`
	SecondaryAxis  Vec3    `yaml:"secondary_axis"`
	SecondaryScale float64 `yaml:"secondary_scale"` // secondary amplitude as a share of amplitude
	SecondaryRate  float64 `yaml:"secondary_rate"`

	// drift
	Extent Vec3 `yaml:"extent"`
	Rates  Vec3 `yaml:"rates"` // zero uses 1, 0.7, 0.9

	// stir
	Threshold float64 `yaml:"threshold"`
	Lift      float64 `yaml:"lift"`
	Settle    Range   `yaml:"settle"`
	Floor     float64 `yaml:"floor"`

	// rise
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`

	// shuttle
	Travel Vec3 `yaml:"travel"`
}

// ToggleConfig makes a prop clickable: a click flips its target scale.
type ToggleConfig struct {
	Low       float64 `yaml:"low"`
	High      float64 `yaml:"high"`
	Threshold float64 `yaml:"threshold"`
	EaseRate  float64 `yaml:"ease_rate"`
}

// PatrolConfig is one patroller circling Center.
type PatrolConfig struct {
	Name       string  `yaml:"name"`
	Shape      string  `yaml:"shape"`
	Radius     float64 `yaml:"radius"`
	Height     float64 `yaml:"height,omitempty"`
	Size       float64 `yaml:"size"`
	Start      Vec3    `yaml:"start"`
	Center     Vec3    `yaml:"center"`
	Orbit      float64 `yaml:"orbit"`
	Speed      float64 `yaml:"speed"`
	Undulation float64 `yaml:"undulation"`
	Gain       float64 `yaml:"gain"`
	Color      Vec3    `yaml:"color"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32        // Sim.DT as float32
	ScreenW32  float32        // Screen.Width as float32
	ScreenH32  float32        // Screen.Height as float32
	SceneIndex map[string]int // name -> index into Scenes
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.overlay(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a config from YAML bytes on top of the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.overlay(data); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay unmarshals data over c. Scalar sections only overwrite the fields
// present; a scene whose name matches a default scene replaces it, other
// scenes are appended.
func (c *Config) overlay(data []byte) error {
	defaults := c.Scenes
	c.Scenes = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.Scenes = defaults
		return err
	}
	user := c.Scenes
	c.Scenes = defaults
	for _, sc := range user {
		replaced := false
		for i := range c.Scenes {
			if c.Scenes[i].Name == sc.Name {
				c.Scenes[i] = sc
				replaced = true
				break
			}
		}
		if !replaced {
			c.Scenes = append(c.Scenes, sc)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sim.DT <= 0 {
		c.Sim.DT = 1.0 / 60.0
	}
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	for si := range c.Scenes {
		scene := &c.Scenes[si]
		for fi := range scene.Flocks {
			p := &scene.Flocks[fi].Params
			if p.CrossSpeciesPerception == nil {
				v := defaultCrossSpeciesPerception
				p.CrossSpeciesPerception = &v
			}
			if p.BoundsForce == nil {
				v := defaultBoundsForce
				p.BoundsForce = &v
			}
			for k := range scene.Flocks[fi].Schools {
				school := &scene.Flocks[fi].Schools[k]
				if school.Size == 0 {
					school.Size = 1
				}
				if school.Color == (Vec3{}) {
					school.Color = defaultColor
				}
			}
		}
		for ai := range scene.Animated {
			group := &scene.Animated[ai]
			if group.Scale.IsZero() {
				group.Scale = Range{Min: 1, Max: 1}
			}
			if group.BaseScale == (Vec3{}) {
				group.BaseScale = Vec3{1, 1, 1}
			}
			if group.Radius == 0 {
				group.Radius = 0.5
			}
			if group.Alpha == 0 {
				group.Alpha = 1
			}
			if group.Color == (Vec3{}) {
				group.Color = defaultColor
			}
			if group.Count == 0 && len(group.Positions) > 0 {
				group.Count = len(group.Positions)
			}
			for li := range group.Layers {
				layer := &group.Layers[li]
				if layer.Speed.IsZero() {
					layer.Speed = Range{Min: 1, Max: 1}
				}
			}
			if t := group.Toggle; t != nil {
				if t.Low == 0 {
					t.Low = 1
				}
				if t.Threshold == 0 {
					t.Threshold = (t.Low + t.High) / 2
				}
			}
		}
		for pi := range scene.Patrols {
			p := &scene.Patrols[pi]
			if p.Size == 0 {
				p.Size = 1
			}
			if p.Radius == 0 {
				p.Radius = 1
			}
			if p.Color == (Vec3{}) {
				p.Color = defaultColor
			}
		}
	}

	c.Derived.SceneIndex = make(map[string]int, len(c.Scenes))
	for i, sc := range c.Scenes {
		c.Derived.SceneIndex[sc.Name] = i
	}
}

// Scene returns the scene with the given name, or the default scene when
// name is empty.
func (c *Config) Scene(name string) (*SceneConfig, error) {
	if name == "" {
		name = c.Sim.DefaultScene
	}
	i, ok := c.Derived.SceneIndex[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	return &c.Scenes[i], nil
}

// SceneNames lists the configured scenes in order.
func (c *Config) SceneNames() []string {
	names := make([]string, len(c.Scenes))
	for i, sc := range c.Scenes {
		names[i] = sc.Name
	}
	return names
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
