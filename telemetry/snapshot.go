package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the mutable scene state needed to resume a run.
// Everything else is rebuilt from config and the RNG seed.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	RNGSeed int64  `json:"rng_seed"`
	Scene   string `json:"scene"`

	Tick    int32   `json:"tick"`
	Elapsed float32 `json:"elapsed"`

	Boids   []BoidState   `json:"boids"`
	Props   []PropState   `json:"props"`
	Patrols []PatrolState `json:"patrols"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BoidState is one flock member.
type BoidState struct {
	Group    string     `json:"group"`
	Index    int        `json:"index"`
	Flock    uint8      `json:"flock"`
	Species  *uint32    `json:"species,omitempty"`
	Position mgl32.Vec3 `json:"position"`
	Velocity mgl32.Vec3 `json:"velocity"`
}

// PropState is the externally writable state of an animated prop.
type PropState struct {
	Group       string     `json:"group"`
	Index       int        `json:"index"`
	BaseScale   mgl32.Vec3 `json:"base_scale"`
	TargetScale mgl32.Vec3 `json:"target_scale"`
}

// PatrolState is a patroller's position and path angle.
type PatrolState struct {
	Group    string     `json:"group"`
	Index    int        `json:"index"`
	Position mgl32.Vec3 `json:"position"`
	Angle    float32    `json:"angle"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%s_%d", snapshot.Scene, snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name += "_" + sanitized
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
