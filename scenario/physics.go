package scenario

import (
	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/remote"
	"github.com/pthm-cable/recon/sensors"
)

// applyField exerts the force of the zone at loc on a mobile remote. Ground
// remotes feel the ground field and aerial remotes the aerial one.
func (s *Scenario) applyField(r remote.Remote, loc geom.Vector, stepSize float64) {
	m := r.Kin.Motion()
	if m == nil {
		return
	}
	zone, err := s.grid.ZoneAt(loc)
	if err != nil {
		return
	}

	var field geom.Field
	switch r.Kind {
	case components.KindGround:
		field = zone.Ground
	case components.KindAerial:
		field = zone.Aerial
	default:
		return
	}
	if force := field.Force(loc, zone.Location); !force.IsZero() {
		m.UpdateVelocityBy(force, stepSize)
	}
}

// enforceBounds brings a remote that left the world back inside by bouncing
// it off the walls from its last in-bounds location. A remote that cannot be
// bounced is recorded as a fault.
func (s *Scenario) enforceBounds(r remote.Remote, prev geom.Vector, hadPrev bool) {
	loc, ok := r.Kin.Location()
	if !ok || s.grid.Contains(loc) {
		return
	}

	if r.Kin.IsMobile() && hadPrev {
		tip, vel, ok := geom.BounceWithin(prev, loc, r.Kin.Velocity(), s.grid.Box())
		if !ok {
			s.log.Warn("bounce failed",
				"remote", r.ID,
				"from", prev,
				"to", loc,
				"time", s.time,
			)
			return
		}
		r.Kin.SetLocation(tip)
		r.Kin.Motion().SetVelocity(vel)
		return
	}

	s.faults = append(s.faults, &BoundsError{RemoteID: r.ID, Location: loc})
	s.log.Error("remote out of bounds",
		"remote", r.ID,
		"x", loc.X,
		"y", loc.Y,
		"time", s.time,
	)
}

// lineOfSight reports whether a and b can see each other across the grid.
// Only BLOCKED zones obstruct sight; running off the world edge does not.
func (s *Scenario) lineOfSight() sensors.LineOfSight {
	if !s.grid.HasBlocked() {
		return nil
	}
	world := s.grid.Box()
	return func(a, b geom.Vector) bool {
		c, hit := geom.RayTrace(a, b, s.grid)
		return !hit || c.Box == world
	}
}
