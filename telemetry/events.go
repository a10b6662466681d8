// Package telemetry provides mission statistics, event detection, bookmarks
// and snapshots.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/recon/scenario"
)

// EventType identifies telemetry events.
type EventType string

const (
	EventStatus   EventType = "status"   // scenario status changed
	EventFault    EventType = "fault"    // remote left out of bounds
	EventSighting EventType = "sighting" // target observed for the first time
	EventDisabled EventType = "disabled" // remote lost its proto switch or ran dry
	EventDone     EventType = "done"     // remote retired
)

// Event represents a single telemetry event.
type Event struct {
	Step     int       `csv:"step"`
	Time     float64   `csv:"time"`
	Type     EventType `csv:"type"`
	RemoteID string    `csv:"remote"`
	Subject  string    `csv:"subject"` // sighted target
	Detail   string    `csv:"detail"`
}

// EventDetector derives events by comparing consecutive snapshots.
type EventDetector struct {
	targetTag string
	prev      *scenario.Snapshot
	sighted   map[string]struct{}
}

// NewEventDetector creates a detector. Sightings are reported for remotes
// carrying targetTag, or for every remote when it is empty.
func NewEventDetector(targetTag string) *EventDetector {
	return &EventDetector{
		targetTag: targetTag,
		sighted:   make(map[string]struct{}),
	}
}

// Sighted reports whether target has been observed.
func (d *EventDetector) Sighted(target string) bool {
	_, ok := d.sighted[target]
	return ok
}

// Check returns the events raised by the step that produced snap. faults are
// the scenario's faults for that step.
func (d *EventDetector) Check(snap *scenario.Snapshot, faults []error) []Event {
	var events []Event
	emit := func(t EventType, remote, subject, detail string) {
		events = append(events, Event{
			Step:     snap.Step,
			Time:     snap.Time,
			Type:     t,
			RemoteID: remote,
			Subject:  subject,
			Detail:   detail,
		})
	}

	if d.prev != nil && d.prev.Status != snap.Status {
		emit(EventStatus, "", "", fmt.Sprintf("%s -> %s", d.prev.Status, snap.Status))
	}

	for _, err := range faults {
		var be *scenario.BoundsError
		if errors.As(err, &be) {
			emit(EventFault, be.RemoteID, "", be.Location.String())
			continue
		}
		emit(EventFault, "", "", err.Error())
	}

	for _, id := range snap.IDs() {
		st := snap.Remotes[id]
		if d.prev != nil {
			if was, ok := d.prev.Remotes[id]; ok {
				if was.Enabled && !st.Enabled {
					emit(EventDisabled, id, "", "")
				}
				if !was.Done && st.Done {
					emit(EventDone, id, "", "")
				}
			}
		}

		for _, sn := range st.Sensors {
			for _, target := range sn.Observations {
				if _, seen := d.sighted[target]; seen {
					continue
				}
				if t, ok := snap.Remotes[target]; !ok || !t.HasTag(d.targetTag) {
					continue
				}
				d.sighted[target] = struct{}{}
				emit(EventSighting, id, target, sn.ID)
			}
		}
	}

	d.prev = snap
	return events
}
