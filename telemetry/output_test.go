package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/recon/config"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}

	// Every method is a no-op on a nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if err := om.WriteEvents([]Event{{Type: EventFault}}); err != nil {
		t.Errorf("WriteEvents on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil manager: got %q", om.Dir())
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndStep: i * 10, Status: "IN_PROGRESS"}); err != nil {
			t.Fatalf("WriteTelemetry failed: %v", err)
		}
	}
	if err := om.WriteEvents([]Event{
		{Step: 1, Type: EventSighting, RemoteID: "d1", Subject: "v1"},
		{Step: 2, Type: EventFault, RemoteID: "d2"},
	}); err != nil {
		t.Fatalf("WriteEvents failed: %v", err)
	}
	if err := om.WriteEvents(nil); err != nil {
		t.Fatalf("WriteEvents(nil) failed: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkCoverage, Step: 10}); err != nil {
		t.Fatalf("WriteBookmark failed: %v", err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: [numPhases]float64{PhaseUpdate: 80}}, 10); err != nil {
		t.Fatalf("WritePerf failed: %v", err)
	}
	if err := om.WriteLifetimes([]LifetimeStats{{RemoteID: "d1"}, {RemoteID: "d2"}}); err != nil {
		t.Fatalf("WriteLifetimes failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tests := []struct {
		file   string
		lines  int
		header string
	}{
		{"telemetry.csv", 4, "window_end,sim_time,status,"},
		{"events.csv", 3, "step,time,type,remote,subject,detail"},
		{"bookmarks.csv", 2, "type,step,time,description"},
		{"perf.csv", 2, "window_end,avg_step_us,"},
		{"remotes.csv", 3, "remote,label,kind,team,"},
	}
	for _, tt := range tests {
		lines := readLines(t, filepath.Join(dir, tt.file))
		if len(lines) != tt.lines {
			t.Errorf("%s: got %d lines, want %d", tt.file, len(lines), tt.lines)
		}
		if !strings.HasPrefix(lines[0], tt.header) {
			t.Errorf("%s: header %q does not start with %q", tt.file, lines[0], tt.header)
		}
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
