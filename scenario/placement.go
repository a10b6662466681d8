package scenario

import (
	"math"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/remote"
)

// placementAttempts bounds the rejection sampling of random locations.
const placementAttempts = 100

// randomLocation draws a uniform location in the world outside BLOCKED zones.
func (s *Scenario) randomLocation() geom.Vector {
	var p geom.Vector
	for i := 0; i < placementAttempts; i++ {
		p = geom.Vec2(s.rng.Float64()*s.grid.WorldWidth(), s.rng.Float64()*s.grid.WorldHeight())
		if z, err := s.grid.ZoneAt(p); err == nil && !z.IsBlocked() {
			return p
		}
	}
	s.log.Warn("no open zone found for random placement", "location", p)
	return p
}

// randomVelocity draws the initial velocity of a passive mobile remote whose
// proto does not set one. Ground remotes with a speed distribution draw their
// speed from it; others draw up to their max velocity, or one zone per unit
// time when uncapped.
func (s *Scenario) randomVelocity(p *remote.Proto) (geom.Vector, bool) {
	mp := p.Kinematics.Motion
	if mp == nil || !mp.IsMobile() || mp.InitialVelocity != (geom.Vector{}) {
		return geom.Vector{}, false
	}

	var speed float64
	switch {
	case p.Kind == components.KindGround && p.Ground != nil:
		speed = p.Ground.SpeedMean + s.rng.NormFloat64()*p.Ground.SpeedStdDev
	case mp.MaxVelocity.IsBounded():
		speed = s.rng.Float64() * mp.MaxVelocity.Value()
	default:
		speed = s.rng.Float64() * s.grid.ZoneSize()
	}
	speed = math.Max(0, math.Min(speed, mp.MaxVelocity.Value()))

	theta := s.rng.Float64() * 2 * math.Pi
	return geom.Vec2(math.Cos(theta), math.Sin(theta)).Scale(speed), true
}
