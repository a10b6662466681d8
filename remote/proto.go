// Package remote assembles remotes from prototypes and applies intents to
// them.
package remote

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/kinematics"
	"github.com/pthm-cable/recon/sensors"
)

// GroundSpec holds the fields specific to ground remotes.
type GroundSpec struct {
	SpeedMean   float64 // initial cruising speed distribution
	SpeedStdDev float64
}

// AerialSpec holds the fields specific to aerial remotes.
type AerialSpec struct {
	// BatteryUsage is the static, horizontal and vertical draw, replacing the
	// fuel usage vector.
	BatteryUsage geom.Vector
}

// Proto is the capability template remotes are built from. Ground and Aerial
// may only be set for remotes of the matching Kind.
type Proto struct {
	Label      string
	Kind       components.Kind
	Tags       []string
	Disabled   bool
	Kinematics kinematics.Proto
	Sensors    []sensors.Config

	Ground *GroundSpec
	Aerial *AerialSpec
}

// Validate checks that the proto is internally consistent.
func (p *Proto) Validate() error {
	if p.Label == "" {
		return errors.New("proto has no label")
	}
	switch p.Kind {
	case components.KindStatic:
		if p.Kinematics.IsMobile() {
			return fmt.Errorf("proto %s: static remotes cannot move", p.Label)
		}
	case components.KindAerial, components.KindGround:
	default:
		return fmt.Errorf("proto %s: unknown kind %s", p.Label, p.Kind)
	}
	if p.Ground != nil {
		if p.Kind != components.KindGround {
			return fmt.Errorf("proto %s: ground fields on %s remote", p.Label, p.Kind)
		}
		if p.Ground.SpeedMean < 0 || p.Ground.SpeedStdDev < 0 {
			return fmt.Errorf("proto %s: negative speed distribution", p.Label)
		}
	}
	if p.Aerial != nil {
		if p.Kind != components.KindAerial {
			return fmt.Errorf("proto %s: aerial fields on %s remote", p.Label, p.Kind)
		}
		if p.Kinematics.Fuel == nil {
			return fmt.Errorf("proto %s: battery usage without fuel", p.Label)
		}
	}
	for _, s := range p.Sensors {
		if s.Proto == nil {
			return fmt.Errorf("proto %s: sensor config without proto", p.Label)
		}
	}
	return nil
}

// Spec places one remote built from a Proto.
type Spec struct {
	ID      string
	Team    string
	Active  bool
	Dynamic bool

	Location *geom.Vector // overrides the proto location
	Velocity *geom.Vector // overrides the proto initial velocity
}

// Parts are the components a remote is assembled from.
type Parts struct {
	Lifecycle  components.Lifecycle
	Kinematics kinematics.Kinematics
	Sensors    sensors.Controller
}

// Remote returns a handle over the parts.
func (p *Parts) Remote() Remote {
	return Remote{Lifecycle: &p.Lifecycle, Kin: &p.Kinematics, Sensors: &p.Sensors}
}

// Build assembles the components of one remote.
func (p *Proto) Build(spec Spec) (Parts, error) {
	if spec.ID == "" {
		return Parts{}, fmt.Errorf("proto %s: remote has no id", p.Label)
	}

	kp := p.Kinematics
	if spec.Location != nil {
		kp.Location = spec.Location
	}
	if kp.Motion != nil {
		m := *kp.Motion
		if spec.Velocity != nil {
			m.InitialVelocity = *spec.Velocity
		}
		kp.Motion = &m
	}
	if kp.Fuel != nil && p.Aerial != nil {
		f := *kp.Fuel
		f.Usage = p.Aerial.BatteryUsage
		kp.Fuel = &f
	}

	sc, err := sensors.NewController(p.Sensors)
	if err != nil {
		return Parts{}, fmt.Errorf("remote %s: %w", spec.ID, err)
	}

	lc := components.Lifecycle{
		ID:      spec.ID,
		Team:    spec.Team,
		Label:   p.Label,
		Kind:    p.Kind,
		Tags:    p.Tags,
		Enabled: !p.Disabled,
		Active:  spec.Active,
		Dynamic: spec.Dynamic,
	}
	if kp.Location != nil {
		lc.Home, lc.HasHome = *kp.Location, true
	}

	return Parts{Lifecycle: lc, Kinematics: kinematics.New(kp), Sensors: sc}, nil
}
