package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/scenario"
)

func TestSnapshotSaveLoad(t *testing.T) {
	// Create a temporary directory
	tmpDir := t.TempDir()

	d1 := drone("d1", "v1")
	loc := geom.Vec2(12, 34)
	d1.Location = &loc
	d1.Fuel = &scenario.FuelState{Amount: 99.5}

	// Create a test snapshot
	snapshot := &SnapshotFile{
		Version:  SnapshotVersion,
		RNGSeed:  42,
		Scenario: testSnapshot(1000, scenario.StatusInProgress, d1, victim("v1")),
		Lifetime: []LifetimeStats{{RemoteID: "d1", Distance: 12.5, FirstSighting: 3}},
		Bookmark: &Bookmark{
			Type:        BookmarkCoverage,
			Step:        1000,
			Description: "Test bookmark",
		},
	}

	// Save the snapshot
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	// Load the snapshot
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	// Verify loaded data matches original
	if loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("RNGSeed mismatch: got %d, want %d", loaded.RNGSeed, snapshot.RNGSeed)
	}
	if loaded.Scenario.Step != 1000 || loaded.Scenario.Status != scenario.StatusInProgress {
		t.Errorf("scenario mismatch: got step %d status %s", loaded.Scenario.Step, loaded.Scenario.Status)
	}
	got := loaded.Scenario.Remotes["d1"]
	if got.Location == nil || !got.Location.Near(loc) {
		t.Errorf("Location mismatch: got %v, want %v", got.Location, loc)
	}
	if got.Fuel == nil || got.Fuel.Amount != 99.5 {
		t.Errorf("Fuel mismatch: got %+v", got.Fuel)
	}
	if len(got.Sensors) != 1 || len(got.Sensors[0].Observations) != 1 {
		t.Errorf("Sensors mismatch: got %+v", got.Sensors)
	}
	if !loaded.Scenario.Remotes["v1"].HasTag("victim") {
		t.Error("Tags not loaded")
	}
	if len(loaded.Lifetime) != 1 || loaded.Lifetime[0].Distance != 12.5 {
		t.Errorf("Lifetime mismatch: got %+v", loaded.Lifetime)
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	// Test with bookmark
	snapshot := &SnapshotFile{
		Version:  SnapshotVersion,
		Scenario: testSnapshot(5000, scenario.StatusInProgress),
		Bookmark: &Bookmark{
			Type: BookmarkFleetLoss,
			Step: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_fleet_loss.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	// Test without bookmark
	snapshotNoBookmark := &SnapshotFile{
		Version:  SnapshotVersion,
		Scenario: testSnapshot(3000, scenario.StatusDone),
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestSnapshotErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := SaveSnapshot(&SnapshotFile{Version: SnapshotVersion}, tmpDir); err == nil {
		t.Error("expected error saving a snapshot without scenario state")
	}

	path := filepath.Join(tmpDir, "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 0}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error loading a snapshot of another version")
	}

	if _, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error loading a missing snapshot")
	}
}
