package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// All methods are nil-safe
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteManifest("simple", 1); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.RunID() != "" {
		t.Error("nil manager should report empty dir and run id")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if _, err := uuid.Parse(om.RunID()); err != nil {
		t.Errorf("run id %q is not a uuid: %v", om.RunID(), err)
	}

	for i := 1; i <= 3; i++ {
		stats := WindowStats{WindowEndTick: int32(i * 600), Scene: "ocean_depths", Boids: 75}
		if err := om.WriteTelemetry(stats); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{}, stats.WindowEndTick); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkScatter, Tick: 1200, Description: "spread doubled"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteManifest("ocean_depths", 7); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,scene,boids") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	data, err = os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "scatter,1200,spread doubled") {
		t.Errorf("bookmark row missing: %q", data)
	}

	data, err = os.ReadFile(filepath.Join(dir, "run.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.RunID != om.RunID() || m.Scene != "ocean_depths" || m.Seed != 7 {
		t.Errorf("manifest = %+v", m)
	}
}
