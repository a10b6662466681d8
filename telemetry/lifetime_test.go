package telemetry

import (
	"testing"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/scenario"
)

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()

	at := func(x, y, fuel float64, active bool) scenario.RemoteState {
		st := drone("d1")
		loc := geom.Vec2(x, y)
		st.Location = &loc
		st.Motion = &scenario.MotionState{Velocity: geom.Vec2(x, y).Scale(0.1)}
		st.Fuel = &scenario.FuelState{Amount: fuel}
		st.Active = active
		return st
	}

	lt.Update(testSnapshot(1, scenario.StatusInProgress, at(0, 0, 10, true)))
	lt.Update(testSnapshot(2, scenario.StatusInProgress, at(3, 4, 8, true)))
	lt.RecordSighting(Event{Type: EventSighting, Time: 2, RemoteID: "d1", Subject: "v1"})
	lt.RecordSighting(Event{Type: EventSighting, Time: 2, RemoteID: "ghost", Subject: "v1"})

	done := at(6, 8, 7.5, false)
	done.Done = true
	lt.Update(testSnapshot(3, scenario.StatusInProgress, done))
	lt.RecordSighting(Event{Type: EventSighting, Time: 3, RemoteID: "d1", Subject: "v2"})

	if lt.Count() != 1 {
		t.Fatalf("Count mismatch: got %d, want 1", lt.Count())
	}
	s := lt.Get("d1")
	if s == nil {
		t.Fatal("d1 not tracked")
	}
	if s.Steps != 3 {
		t.Errorf("Steps mismatch: got %d, want 3", s.Steps)
	}
	if s.Active != 2 {
		t.Errorf("Active mismatch: got %v, want 2", s.Active)
	}
	if !geom.Near(s.Distance, 10) {
		t.Errorf("Distance mismatch: got %v, want 10", s.Distance)
	}
	if !geom.Near(s.PeakSpeed, 1) {
		t.Errorf("PeakSpeed mismatch: got %v, want 1", s.PeakSpeed)
	}
	if !geom.Near(s.FuelUsed, 2.5) {
		t.Errorf("FuelUsed mismatch: got %v, want 2.5", s.FuelUsed)
	}
	if s.Sightings != 2 || s.FirstSighting != 2 {
		t.Errorf("sightings mismatch: got %d first at %v, want 2 first at 2", s.Sightings, s.FirstSighting)
	}
	if s.DoneAt != 3 || s.DisabledAt != -1 {
		t.Errorf("lifecycle mismatch: done at %v, disabled at %v", s.DoneAt, s.DisabledAt)
	}
}

func TestLifetimeTrackerAllSorted(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Update(testSnapshot(1, scenario.StatusInProgress, victim("v2"), drone("d1"), victim("v1")))

	all := lt.All()
	want := []string{"d1", "v1", "v2"}
	if len(all) != len(want) {
		t.Fatalf("All length mismatch: got %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].RemoteID != id {
			t.Errorf("All[%d] mismatch: got %s, want %s", i, all[i].RemoteID, id)
		}
	}
}
