// Package kinematics integrates location, bounded motion and fuel draw for a
// single remote.
package kinematics

import (
	"math"

	"github.com/pthm-cable/recon/geom"
)

// Proto declares the kinematic capabilities of a remote. A nil Motion makes
// the remote stationary and a nil Fuel means it never depletes.
type Proto struct {
	Location *geom.Vector
	Motion   *MotionProto
	Fuel     *FuelProto
}

// IsMobile reports whether the proto describes something that can move.
func (p Proto) IsMobile() bool {
	return p.Motion != nil && p.Motion.IsMobile()
}

// Kinematics is the physical state of one remote.
type Kinematics struct {
	location geom.Vector
	located  bool
	motion   *Motion
	fuel     *Fuel
	usage    UsagePolicy
}

// New creates the kinematic state described by p.
func New(p Proto) Kinematics {
	k := Kinematics{usage: DefaultUsage}
	if p.Location != nil {
		k.location, k.located = *p.Location, true
	}
	if p.Motion != nil {
		k.motion = NewMotion(*p.Motion)
	}
	if p.Fuel != nil {
		k.fuel = NewFuel(*p.Fuel)
		k.SetUsagePolicy(p.Fuel.Policy)
	}
	return k
}

// SetUsagePolicy replaces the fuel draw policy. A nil policy restores
// DefaultUsage.
func (k *Kinematics) SetUsagePolicy(policy UsagePolicy) {
	if policy == nil {
		policy = DefaultUsage
	}
	k.usage = policy
}

// Location returns the location and whether the remote has one.
func (k *Kinematics) Location() (geom.Vector, bool) {
	return k.location, k.located
}

// SetLocation places the remote at v.
func (k *Kinematics) SetLocation(v geom.Vector) {
	k.location, k.located = v, true
}

// Motion returns the motion state, or nil for a stationary remote.
func (k *Kinematics) Motion() *Motion { return k.motion }

// Fuel returns the fuel reservoir, or nil if the remote never depletes.
func (k *Kinematics) Fuel() *Fuel { return k.fuel }

// Velocity returns the current velocity; stationary remotes report zero.
func (k *Kinematics) Velocity() geom.Vector {
	if k.motion == nil {
		return geom.Vector{}
	}
	return k.motion.velocity
}

// IsMobile reports whether the remote can move.
func (k *Kinematics) IsMobile() bool {
	return k.motion != nil && k.motion.IsMobile()
}

// HasFuel reports whether the remote either never depletes or has fuel left.
func (k *Kinematics) HasFuel() bool {
	return k.fuel == nil || !k.fuel.IsEmpty()
}

// Brake returns the acceleration that slows the remote toward rest.
func (k *Kinematics) Brake(stepSize float64) geom.Vector {
	if k.motion == nil {
		return geom.Vector{}
	}
	return k.motion.ShiftVelocityTo(geom.Vector{}, stepSize)
}

// ShiftLocationTo returns the acceleration to apply for the next step of
// stepSize to drive the remote toward dest without overshooting it. maxV and
// maxA further restrict the remote's own limits.
func (k *Kinematics) ShiftLocationTo(dest geom.Vector, maxV, maxA geom.Limit, stepSize float64) geom.Vector {
	if k.motion == nil || !k.located || stepSize <= 0 {
		return geom.Vector{}
	}
	vMax := k.motion.maxVelocity.Min(maxV)
	aMax := k.motion.maxAcceleration.Min(maxA)
	a := aMax.Value()
	v := k.motion.velocity
	speed := v.Magnitude()

	stop := v.Scale(-1 / stepSize)
	if k.location.Near(dest) && speed < a*stepSize {
		return stop
	}

	ds := dest.Sub(k.location)
	remaining := ds.Magnitude()
	if speed > 0 && aMax.IsBounded() && remaining <= brakingDistance(speed, a) {
		if speed < a*stepSize {
			return stop
		}
		return v.Unit().Scale(-a)
	}

	desired := vMax.Clamp(ds.Scale(1 / stepSize))
	dv := desired.Sub(v).Squeeze(a * stepSize)
	next := vMax.Clamp(v.Add(dv))

	if aMax.IsBounded() {
		left := dest.Sub(k.location.Add(next.Scale(stepSize))).Magnitude()
		if nextSpeed := next.Magnitude(); nextSpeed > 0 && left < brakingDistance(nextSpeed, a) {
			// Fastest speed u that still stops on dest: u*dt + u²/2a = |ΔS|.
			u := math.Sqrt(a*a*stepSize*stepSize+2*a*remaining) - a*stepSize
			target := vMax.Clamp(ds.Unit().Scale(u))
			dv = target.Sub(v).Squeeze(a * stepSize)
		}
	}
	return dv.Scale(1 / stepSize)
}

// Update integrates one step of stepSize under acceleration. Non-finite
// accelerations are ignored. Velocity that settles within Precision of zero
// is zeroed so that idle remotes do not drift.
func (k *Kinematics) Update(acceleration geom.Vector, stepSize float64) {
	if !acceleration.IsFinite() {
		acceleration = geom.Vector{}
	}

	moving := false
	if k.motion != nil {
		acceleration = k.motion.maxAcceleration.Clamp(acceleration)
		k.motion.UpdateVelocityBy(acceleration, stepSize)
		if k.motion.velocity.IsZero() {
			k.motion.velocity = geom.Vector{}
		}
		moving = k.motion.IsMoving() || acceleration.Magnitude() > 0
		if k.located {
			k.location = k.location.Add(k.motion.velocity.Scale(stepSize))
		}
	} else {
		acceleration = geom.Vector{}
	}

	if k.fuel != nil {
		k.fuel.UpdateBy(-k.usage(k.fuel.usage, acceleration, moving) * stepSize)
	}
}

// Drain draws rate units of fuel per unit time for stepSize.
func (k *Kinematics) Drain(rate, stepSize float64) {
	if k.fuel == nil || rate <= 0 {
		return
	}
	k.fuel.UpdateBy(-rate * stepSize)
}

func brakingDistance(speed, acceleration float64) float64 {
	if speed <= 0 || math.IsInf(acceleration, 0) || acceleration <= 0 {
		return 0
	}
	return 0.5 * speed * speed / acceleration
}
