// Package intent defines the per-step commands controllers send to remotes.
package intent

import (
	"fmt"

	"github.com/pthm-cable/recon/geom"
)

// Type identifies the command carried by an Intent.
type Type uint8

const (
	TypeNone       Type = iota // keep the current course
	TypeStop                   // brake to rest
	TypeGoTo                   // steer to a location, or home
	TypeMove                   // apply an acceleration
	TypeSteer                  // keep speed, change heading
	TypeActivate               // switch sensors on
	TypeDeactivate             // switch sensors off
	TypeDone                   // finish for the rest of the mission
	TypeShutdown               // become inactive
	TypeStartup                // become active
	TypePush                   // apply an external force
)

var typeNames = [...]string{
	"none", "stop", "goto", "move", "steer", "activate",
	"deactivate", "done", "shutdown", "startup", "push",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Intent is one command for one remote for one step. Only the fields relevant
// to Type are read.
type Intent struct {
	Type Type

	// GoTo target; nil means the remote's home location. The limits further
	// restrict the remote's own motion envelope.
	Location        *geom.Vector
	MaxVelocity     geom.Limit
	MaxAcceleration geom.Limit

	Acceleration geom.Vector  // Move
	Direction    *geom.Vector // Steer; nil steers toward home
	Force        geom.Vector  // Push
	SensorIDs    []string     // Activate, Deactivate; empty means all
}

// None keeps the current course.
func None() Intent { return Intent{Type: TypeNone} }

// Stop brakes to rest.
func Stop() Intent { return Intent{Type: TypeStop} }

// Done finishes the remote for the rest of the mission.
func Done() Intent { return Intent{Type: TypeDone} }

// Shutdown makes the remote inactive.
func Shutdown() Intent { return Intent{Type: TypeShutdown} }

// Startup makes the remote active again.
func Startup() Intent { return Intent{Type: TypeStartup} }

// GoTo steers toward loc.
func GoTo(loc geom.Vector) Intent {
	return Intent{Type: TypeGoTo, Location: &loc}
}

// GoToWithin steers toward loc under tighter limits.
func GoToWithin(loc geom.Vector, maxV, maxA geom.Limit) Intent {
	return Intent{Type: TypeGoTo, Location: &loc, MaxVelocity: maxV, MaxAcceleration: maxA}
}

// GoHome steers back to the remote's home location.
func GoHome() Intent {
	return Intent{Type: TypeGoTo}
}

// Move applies acceleration for the step.
func Move(acceleration geom.Vector) Intent {
	return Intent{Type: TypeMove, Acceleration: acceleration}
}

// Steer turns toward direction while keeping the current speed.
func Steer(direction geom.Vector) Intent {
	return Intent{Type: TypeSteer, Direction: &direction}
}

// Activate switches on the named sensors, or all of them.
func Activate(ids ...string) Intent {
	return Intent{Type: TypeActivate, SensorIDs: ids}
}

// Deactivate switches off the named sensors, or all of them.
func Deactivate(ids ...string) Intent {
	return Intent{Type: TypeDeactivate, SensorIDs: ids}
}

// Push applies an external force for the step. The force must be finite.
func Push(force geom.Vector) (Intent, error) {
	if !force.IsFinite() {
		return Intent{}, fmt.Errorf("push force %s is not finite", force)
	}
	return Intent{Type: TypePush, Force: force}, nil
}

// Set maps remote IDs to the intent for the coming step.
type Set map[string]Intent
