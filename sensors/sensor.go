package sensors

import (
	"slices"

	"github.com/pthm-cable/recon/geom"
)

// Subject is the read-only view of a remote that sensors perceive.
type Subject struct {
	ID       string
	Location geom.Vector
	Located  bool
	Tags     []string
	Kinds    KindSet
	Active   bool // active and not done
}

// HasTagMatch reports whether the subject carries any of matchers. An empty
// matcher list matches every subject.
func (s Subject) HasTagMatch(matchers []string) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, m := range matchers {
		if slices.Contains(s.Tags, m) {
			return true
		}
	}
	return false
}

// LineOfSight reports whether nothing blocks the view from a to b.
type LineOfSight func(a, b geom.Vector) bool

// Sensor is one sensor on a remote. Its perception payload depends on the
// Kind of its proto: vision fills observations, comms fills connections and
// monitor holds at most one monitored ID.
type Sensor struct {
	ID    string
	Proto *Proto

	active     bool
	subjects   []string
	monitoring string
}

// IsActive reports whether the sensor is switched on.
func (s *Sensor) IsActive() bool { return s.active }

// Kind returns the sensor's perception model.
func (s *Sensor) Kind() Kind { return s.Proto.Kind }

// Observations returns the remote IDs a vision sensor currently sees.
func (s *Sensor) Observations() []string {
	if s.Proto.Kind != KindVision {
		return nil
	}
	return s.subjects
}

// Connections returns the remote IDs a comms sensor is connected to.
func (s *Sensor) Connections() []string {
	if s.Proto.Kind != KindComms {
		return nil
	}
	return s.subjects
}

// Monitoring returns the remote a monitor sensor is watching.
func (s *Sensor) Monitoring() (string, bool) {
	return s.monitoring, s.monitoring != ""
}

func (s *Sensor) activate() {
	s.active = true
}

func (s *Sensor) deactivate() {
	s.active = false
	s.clear()
}

func (s *Sensor) clear() {
	s.subjects = nil
	s.monitoring = ""
}

// inRange reports whether the subject is within range of the owner. The
// boundary is inclusive to within geom.Precision.
func (s *Sensor) inRange(owner, subject Subject) bool {
	r := s.Proto.Stats.Range
	if !r.IsBounded() {
		return true
	}
	if !owner.Located || !subject.Located {
		return false
	}
	d := owner.Location.Dist(subject.Location)
	return d <= r.Value() || geom.Near(d, r.Value())
}

func (s *Sensor) visible(owner, subject Subject, los LineOfSight) bool {
	if !s.Proto.LineOfSight || los == nil || !owner.Located || !subject.Located {
		return true
	}
	return los(owner.Location, subject.Location)
}

// update recomputes the payload from the population. The owner is never its
// own subject.
func (s *Sensor) update(owner Subject, population []Subject, los LineOfSight) {
	if !s.active || !owner.Active {
		s.clear()
		return
	}

	subjects := make([]string, 0)
	best, bestDist := "", 0.0
	for _, sub := range population {
		if sub.ID == owner.ID || !sub.HasTagMatch(s.Proto.Matchers) || !s.inRange(owner, sub) {
			continue
		}
		switch s.Proto.Kind {
		case KindComms:
			if !sub.Kinds.Has(KindComms) {
				continue
			}
		case KindMonitor:
			if !sub.Active {
				continue
			}
		}
		if !s.visible(owner, sub, los) {
			continue
		}

		if s.Proto.Kind == KindMonitor {
			d := 0.0
			if owner.Located && sub.Located {
				d = owner.Location.Dist(sub.Location)
			}
			if best == "" || d < bestDist || (d == bestDist && sub.ID < best) {
				best, bestDist = sub.ID, d
			}
			continue
		}
		subjects = append(subjects, sub.ID)
	}

	slices.Sort(subjects)
	s.subjects = subjects
	s.monitoring = best
}
