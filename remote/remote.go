package remote

import (
	"math"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/intent"
	"github.com/pthm-cable/recon/kinematics"
	"github.com/pthm-cable/recon/sensors"
)

// Remote is a handle over the components of one remote. It is a view: the
// components live in the scenario's world and the handle is only valid for
// the step it was obtained in.
type Remote struct {
	*components.Lifecycle
	Kin     *kinematics.Kinematics
	Sensors *sensors.Controller
}

// IsEnabled reports whether the remote can operate at all: its proto allows
// it and it has not run out of fuel.
func (r Remote) IsEnabled() bool {
	return r.Enabled && r.Kin.HasFuel()
}

// IsActive reports whether the remote is switched on and enabled.
func (r Remote) IsActive() bool {
	return r.Active && r.IsEnabled()
}

// SetActive switches the remote on.
func (r Remote) SetActive() {
	r.Active = true
}

// SetInactive switches the remote and all of its sensors off.
func (r Remote) SetInactive() {
	r.Active = false
	r.Sensors.Deactivate()
}

// SetDone retires the remote for the rest of the mission.
func (r Remote) SetDone() {
	r.SetInactive()
	r.Done = true
}

// Subject returns the view other remotes' sensors perceive.
func (r Remote) Subject() sensors.Subject {
	loc, ok := r.Kin.Location()
	return sensors.Subject{
		ID:       r.ID,
		Location: loc,
		Located:  ok,
		Tags:     r.Tags,
		Kinds:    r.Sensors.Kinds(),
		Active:   r.IsActive() && !r.Done,
	}
}

// Passive returns the intent the engine issues on behalf of a remote that no
// controller drives. Sensors are switched on at the first step and off once
// the remote is inactive; otherwise the remote holds its course. No intent is
// issued for a remote that is out of bounds.
func (r Remote) Passive(firstStep, inBounds bool) (intent.Intent, bool) {
	switch {
	case firstStep && r.IsActive() && r.Sensors.HasInactive():
		return intent.Activate(), true
	case !r.IsActive() && r.Sensors.HasActive():
		return intent.Deactivate(), true
	case inBounds:
		return intent.None(), true
	default:
		return intent.Intent{}, false
	}
}

// Apply executes one intent for a step of stepSize: lifecycle and sensor
// switches first, then motion, then fuel for the active sensors. It returns
// any sensor IDs the intent named that the remote does not carry.
func (r Remote) Apply(in intent.Intent, stepSize float64) []string {
	var unknown []string
	switch in.Type {
	case intent.TypeStartup:
		r.SetActive()
	case intent.TypeShutdown:
		r.SetInactive()
	case intent.TypeDone:
		r.SetDone()
	case intent.TypeActivate:
		unknown = r.Sensors.Activate(in.SensorIDs...)
	case intent.TypeDeactivate:
		unknown = r.Sensors.Deactivate(in.SensorIDs...)
	}

	r.move(in, stepSize)
	r.Kin.Drain(r.Sensors.BatteryUsage(), stepSize)
	return unknown
}

func (r Remote) move(in intent.Intent, stepSize float64) {
	if !r.IsActive() {
		r.Kin.Update(r.Kin.Brake(stepSize), stepSize)
		return
	}

	var acc geom.Vector
	switch in.Type {
	case intent.TypeStop:
		acc = r.Kin.Brake(stepSize)
	case intent.TypeGoTo:
		dest, ok := r.target(in.Location)
		if !ok {
			acc = r.Kin.Brake(stepSize)
			break
		}
		acc = r.Kin.ShiftLocationTo(dest, in.MaxVelocity, in.MaxAcceleration, stepSize)
	case intent.TypeMove:
		acc = in.Acceleration
	case intent.TypeSteer:
		acc = r.steer(in.Direction, stepSize)
	case intent.TypePush:
		if m := r.Kin.Motion(); m != nil && in.Force.IsFinite() {
			m.Push(in.Force, stepSize)
		}
	}
	r.Kin.Update(acc, stepSize)
}

// target resolves an optional location, falling back to home.
func (r Remote) target(loc *geom.Vector) (geom.Vector, bool) {
	if loc != nil {
		return *loc, true
	}
	return r.Home, r.HasHome
}

// steer turns the current velocity toward direction, or toward home, keeping
// its speed.
func (r Remote) steer(direction *geom.Vector, stepSize float64) geom.Vector {
	m := r.Kin.Motion()
	if m == nil {
		return geom.Vector{}
	}
	var dir geom.Vector
	if direction != nil {
		dir = *direction
	} else {
		loc, ok := r.Kin.Location()
		if !ok || !r.HasHome {
			return geom.Vector{}
		}
		dir = r.Home.Sub(loc)
	}
	v := m.Velocity()
	turn := math.Pi
	if a := m.MaxAcceleration(); a.IsBounded() {
		// Largest heading change whose chord fits in one acceleration step.
		turn = 2 * math.Asin(math.Min(1, a.Value()*stepSize/(2*v.Magnitude())))
	}
	return v.TurnToward(dir, turn).Sub(v).Scale(1 / stepSize)
}
