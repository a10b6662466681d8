package telemetry

import (
	"maps"
	"slices"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/scenario"
)

// LifetimeStats tracks per-remote statistics over the mission.
type LifetimeStats struct {
	RemoteID string  `csv:"remote" json:"remote"`
	Label    string  `csv:"label" json:"label"`
	Kind     string  `csv:"kind" json:"kind"`
	Team     string  `csv:"team" json:"team,omitempty"`
	Steps    int     `csv:"steps" json:"steps"`             // steps observed
	Active   float64 `csv:"active_time" json:"active_time"` // simulated time spent active

	Distance  float64 `csv:"distance" json:"distance"`
	PeakSpeed float64 `csv:"peak_speed" json:"peak_speed"`
	FuelUsed  float64 `csv:"fuel_used" json:"fuel_used"`

	Sightings     int     `csv:"sightings" json:"sightings"`
	FirstSighting float64 `csv:"first_sighting" json:"first_sighting"` // -1 until the first sighting

	DisabledAt float64 `csv:"disabled_at" json:"disabled_at"` // -1 while enabled
	DoneAt     float64 `csv:"done_at" json:"done_at"`         // -1 until done

	lastLocation *geom.Vector `csv:"-"`
	lastFuel     *float64     `csv:"-"`
}

// LifetimeTracker manages per-remote lifetime statistics.
type LifetimeTracker struct {
	stats map[string]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[string]*LifetimeStats),
	}
}

// Update folds one snapshot into the per-remote totals, registering remotes
// seen for the first time.
func (lt *LifetimeTracker) Update(snap *scenario.Snapshot) {
	for id, st := range snap.Remotes {
		s := lt.stats[id]
		if s == nil {
			s = &LifetimeStats{
				RemoteID:      id,
				Label:         st.Label,
				Kind:          st.Kind,
				Team:          st.Team,
				FirstSighting: -1,
				DisabledAt:    -1,
				DoneAt:        -1,
			}
			lt.stats[id] = s
		}
		s.Steps++

		if st.Active {
			s.Active += snap.StepSize
		}
		if st.Location != nil {
			if s.lastLocation != nil {
				s.Distance += st.Location.Dist(*s.lastLocation)
			}
			loc := *st.Location
			s.lastLocation = &loc
		}
		if st.Motion != nil {
			s.PeakSpeed = max(s.PeakSpeed, st.Motion.Velocity.Magnitude())
		}
		if st.Fuel != nil {
			if s.lastFuel != nil && *s.lastFuel > st.Fuel.Amount {
				s.FuelUsed += *s.lastFuel - st.Fuel.Amount
			}
			amount := st.Fuel.Amount
			s.lastFuel = &amount
		}
		if !st.Enabled && s.DisabledAt < 0 {
			s.DisabledAt = snap.Time
		}
		if st.Done && s.DoneAt < 0 {
			s.DoneAt = snap.Time
		}
	}
}

// RecordSighting credits the observer of a sighting event.
func (lt *LifetimeTracker) RecordSighting(e Event) {
	s := lt.stats[e.RemoteID]
	if s == nil {
		return
	}
	s.Sightings++
	if s.FirstSighting < 0 {
		s.FirstSighting = e.Time
	}
}

// Get returns the lifetime stats for a remote, or nil if not found.
func (lt *LifetimeTracker) Get(id string) *LifetimeStats {
	return lt.stats[id]
}

// All returns all tracked stats ordered by remote ID.
func (lt *LifetimeTracker) All() []LifetimeStats {
	out := make([]LifetimeStats, 0, len(lt.stats))
	for _, id := range slices.Sorted(maps.Keys(lt.stats)) {
		out = append(out, *lt.stats[id])
	}
	return out
}

// Count returns the number of tracked remotes.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
