package telemetry

import (
	"fmt"
	"testing"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/scenario"
)

func testSnapshot(step int, status scenario.Status, remotes ...scenario.RemoteState) *scenario.Snapshot {
	snap := &scenario.Snapshot{
		Status:   status,
		Step:     step,
		Time:     float64(step),
		StepSize: 1,
		Remotes:  make(map[string]scenario.RemoteState),
	}
	for _, r := range remotes {
		snap.Remotes[r.ID] = r
		if r.Active {
			snap.Active = append(snap.Active, r.ID)
		}
		if r.Dynamic {
			snap.Dynamic = append(snap.Dynamic, r.ID)
		}
	}
	return snap
}

func drone(id string, sees ...string) scenario.RemoteState {
	return scenario.RemoteState{
		ID:      id,
		Label:   "drone",
		Kind:    "aerial",
		Enabled: true,
		Active:  true,
		Dynamic: true,
		Sensors: []scenario.SensorState{
			{ID: "camera:(0)", Model: "camera", Kind: "vision", Active: true, Observations: sees},
		},
	}
}

func victim(id string) scenario.RemoteState {
	return scenario.RemoteState{
		ID:      id,
		Label:   "victim",
		Kind:    "ground",
		Tags:    []string{"victim"},
		Enabled: true,
		Active:  true,
	}
}

func TestEventDetector_Sightings(t *testing.T) {
	d := NewEventDetector("victim")

	// The drone sees a victim and the other drone; only the victim counts.
	events := d.Check(testSnapshot(1, scenario.StatusInProgress,
		drone("d1", "d2", "v1"), drone("d2"), victim("v1"), victim("v2")), nil)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if e.Type != EventSighting || e.RemoteID != "d1" || e.Subject != "v1" || e.Detail != "camera:(0)" {
		t.Errorf("unexpected sighting: %+v", e)
	}

	// Repeated observations are not new sightings.
	events = d.Check(testSnapshot(2, scenario.StatusInProgress,
		drone("d1", "v1"), drone("d2", "v1", "v2"), victim("v1"), victim("v2")), nil)
	if len(events) != 1 || events[0].Subject != "v2" || events[0].RemoteID != "d2" {
		t.Errorf("expected only the v2 sighting, got %+v", events)
	}

	if !d.Sighted("v1") || !d.Sighted("v2") || d.Sighted("d2") {
		t.Error("sighted set mismatch")
	}
}

func TestEventDetector_Transitions(t *testing.T) {
	d := NewEventDetector("")
	d.Check(testSnapshot(1, scenario.StatusInProgress, drone("d1"), drone("d2")), nil)

	d1 := drone("d1")
	d1.Enabled, d1.Active = false, false
	d2 := drone("d2")
	d2.Done = true

	fault := &scenario.BoundsError{RemoteID: "d2", Location: geom.Vec2(-1, 5)}
	events := d.Check(testSnapshot(2, scenario.StatusError, d1, d2), []error{fault, fmt.Errorf("other")})

	want := []struct {
		typ    EventType
		remote string
	}{
		{EventStatus, ""},
		{EventFault, "d2"},
		{EventFault, ""},
		{EventDisabled, "d1"},
		{EventDone, "d2"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].RemoteID != w.remote {
			t.Errorf("event %d mismatch: got %s/%s, want %s/%s", i, events[i].Type, events[i].RemoteID, w.typ, w.remote)
		}
		if events[i].Step != 2 {
			t.Errorf("event %d step mismatch: got %d, want 2", i, events[i].Step)
		}
	}
	if events[0].Detail != "IN_PROGRESS -> ERROR" {
		t.Errorf("status detail mismatch: got %q", events[0].Detail)
	}
	if events[1].Detail != geom.Vec2(-1, 5).String() {
		t.Errorf("fault detail mismatch: got %q", events[1].Detail)
	}
}
