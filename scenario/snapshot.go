package scenario

import (
	"maps"
	"slices"
	"time"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/remote"
	"github.com/pthm-cable/recon/sensors"
)

// Snapshot is a read-only projection of the scenario after a step.
type Snapshot struct {
	Timestamp  time.Time              `json:"timestamp"`
	ScenarioID string                 `json:"scenario_id"`
	Status     Status                 `json:"status"`
	Step       int                    `json:"step"`
	Time       float64                `json:"time"`
	StepSize   float64                `json:"step_size"`
	Active     []string               `json:"active"`
	Dynamic    []string               `json:"dynamic"`
	Remotes    map[string]RemoteState `json:"remotes"`
}

// RemoteState is the projection of one remote.
type RemoteState struct {
	ID       string        `json:"id"`
	Team     string        `json:"team,omitempty"`
	Label    string        `json:"label"`
	Kind     string        `json:"kind"`
	Tags     []string      `json:"tags,omitempty"`
	Enabled  bool          `json:"enabled"`
	Active   bool          `json:"active"`
	Done     bool          `json:"done"`
	Dynamic  bool          `json:"dynamic"`
	Location *geom.Vector  `json:"location,omitempty"`
	Motion   *MotionState  `json:"motion,omitempty"`
	Fuel     *FuelState    `json:"fuel,omitempty"`
	Sensors  []SensorState `json:"sensors,omitempty"`
}

// MotionState is the motion of a mobile remote. Nil limits are uncapped.
type MotionState struct {
	Velocity        geom.Vector `json:"velocity"`
	MaxVelocity     *float64    `json:"max_velocity,omitempty"`
	MaxAcceleration *float64    `json:"max_acceleration,omitempty"`
}

// FuelState is the reservoir of a fuelled remote. A nil Max is uncapped.
type FuelState struct {
	Amount float64  `json:"amount"`
	Max    *float64 `json:"max,omitempty"`
}

// SensorState is the projection of one sensor and its payload.
type SensorState struct {
	ID           string   `json:"id"`
	Model        string   `json:"model"`
	Kind         string   `json:"kind"`
	Active       bool     `json:"active"`
	Observations []string `json:"observations,omitempty"`
	Connections  []string `json:"connections,omitempty"`
	Monitoring   string   `json:"monitoring,omitempty"`
}

// Snapshot projects the current state. It never mutates the scenario.
func (s *Scenario) Snapshot() *Snapshot {
	snap := &Snapshot{
		Timestamp:  s.clock(),
		ScenarioID: s.id,
		Status:     s.status,
		Step:       s.step,
		Time:       s.time,
		StepSize:   s.stepSize,
		Active:     slices.Sorted(maps.Keys(s.active)),
		Dynamic:    slices.Sorted(maps.Keys(s.dynamic)),
		Remotes:    make(map[string]RemoteState, len(s.order)),
	}
	for _, id := range s.order {
		r, _ := s.Remote(id)
		snap.Remotes[id] = project(r)
	}
	return snap
}

// HasTag reports whether the remote carries tag. An empty tag matches every
// remote.
func (st RemoteState) HasTag(tag string) bool {
	return tag == "" || slices.Contains(st.Tags, tag)
}

// IDs returns the remote IDs in sorted order.
func (snap *Snapshot) IDs() []string {
	return slices.Sorted(maps.Keys(snap.Remotes))
}

func project(r remote.Remote) RemoteState {
	st := RemoteState{
		ID:      r.ID,
		Team:    r.Team,
		Label:   r.Label,
		Kind:    r.Kind.String(),
		Tags:    slices.Clone(r.Tags),
		Enabled: r.IsEnabled(),
		Active:  r.IsActive(),
		Done:    r.Done,
		Dynamic: r.Dynamic,
	}
	if loc, ok := r.Kin.Location(); ok {
		st.Location = &loc
	}
	if m := r.Kin.Motion(); m != nil {
		st.Motion = &MotionState{
			Velocity:        m.Velocity(),
			MaxVelocity:     m.MaxVelocity().Ptr(),
			MaxAcceleration: m.MaxAcceleration().Ptr(),
		}
	}
	if f := r.Kin.Fuel(); f != nil {
		st.Fuel = &FuelState{Amount: f.Amount(), Max: f.Max().Ptr()}
	}
	for _, sn := range r.Sensors.Sensors() {
		st.Sensors = append(st.Sensors, projectSensor(sn))
	}
	return st
}

func projectSensor(sn *sensors.Sensor) SensorState {
	st := SensorState{
		ID:     sn.ID,
		Model:  sn.Proto.Model,
		Kind:   sn.Kind().String(),
		Active: sn.IsActive(),
	}
	switch sn.Kind() {
	case sensors.KindVision:
		st.Observations = slices.Clone(sn.Observations())
	case sensors.KindComms:
		st.Connections = slices.Clone(sn.Connections())
	case sensors.KindMonitor:
		st.Monitoring, _ = sn.Monitoring()
	}
	return st
}
