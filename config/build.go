package config

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/kinematics"
	"github.com/pthm-cable/recon/remote"
	"github.com/pthm-cable/recon/scenario"
	"github.com/pthm-cable/recon/sensors"
)

// BuildGrid creates the world grid.
func (c *Config) BuildGrid() (*geom.Grid, error) {
	specs := make([]geom.ZoneSpec, 0, len(c.Grid.Zones))
	for i, z := range c.Grid.Zones {
		zt, err := geom.ParseZoneType(z.Type)
		if err != nil {
			return nil, fmt.Errorf("grid.zones[%d]: %w", i, err)
		}
		spec := geom.ZoneSpec{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height, Type: zt}
		if spec.Ground, err = z.Ground.build(); err != nil {
			return nil, fmt.Errorf("grid.zones[%d].ground: %w", i, err)
		}
		if spec.Aerial, err = z.Aerial.build(); err != nil {
			return nil, fmt.Errorf("grid.zones[%d].aerial: %w", i, err)
		}
		specs = append(specs, spec)
	}

	g, err := geom.NewGrid(c.Grid.Width, c.Grid.Height, c.Grid.ZoneSize, specs...)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	return g, nil
}

func (f *FieldConfig) build() (geom.Field, error) {
	if f == nil {
		return geom.Field{}, nil
	}
	ft, err := geom.ParseFieldType(f.Type)
	if err != nil {
		return geom.Field{}, err
	}
	return geom.Field{Type: ft, Point: f.Point, Magnitude: f.Magnitude, Jerk: f.Jerk}, nil
}

// BuildSensors creates the sensor models by name.
func (c *Config) BuildSensors() (map[string]*sensors.Proto, error) {
	out := make(map[string]*sensors.Proto, len(c.Sensors))
	for name, sc := range c.Sensors {
		kind, err := sensors.ParseKind(sc.Kind)
		if err != nil {
			return nil, fmt.Errorf("sensors.%s: %w", name, err)
		}
		out[name] = &sensors.Proto{
			Model:    name,
			Kind:     kind,
			Tags:     sc.Tags,
			Matchers: sc.Matchers,
			Stats: sensors.Stats{
				Range:        geom.LimitOf(sc.Range),
				Accuracy:     sc.Accuracy,
				Delay:        sc.Delay,
				BatteryUsage: sc.BatteryUsage,
			},
			LineOfSight: sc.LineOfSight,
		}
	}
	return out, nil
}

// BuildProtos creates the remote prototypes by name.
func (c *Config) BuildProtos() (map[string]*remote.Proto, error) {
	models, err := c.BuildSensors()
	if err != nil {
		return nil, err
	}

	out := make(map[string]*remote.Proto, len(c.Protos))
	for _, name := range c.Derived.ProtoNames {
		p, err := c.Protos[name].build(name, models)
		if err != nil {
			return nil, fmt.Errorf("protos.%s: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

func (pc ProtoConfig) build(name string, models map[string]*sensors.Proto) (*remote.Proto, error) {
	kind, err := components.ParseKind(pc.Kind)
	if err != nil {
		return nil, err
	}

	p := &remote.Proto{
		Label:    name,
		Kind:     kind,
		Tags:     pc.Tags,
		Disabled: pc.Disabled,
	}
	p.Kinematics.Location = pc.Location
	if pc.Mobile {
		p.Kinematics.Motion = &kinematics.MotionProto{
			InitialVelocity: pc.InitialVelocity,
			MaxVelocity:     geom.LimitOf(pc.MaxVelocity),
			MaxAcceleration: geom.LimitOf(pc.MaxAcceleration),
		}
	}
	if pc.Fuel != nil {
		policy, err := kinematics.ParseUsagePolicy(pc.Fuel.Policy)
		if err != nil {
			return nil, err
		}
		p.Kinematics.Fuel = &kinematics.FuelProto{
			Initial: pc.Fuel.Initial,
			Max:     geom.LimitOf(pc.Fuel.Max),
			Usage:   pc.Fuel.Usage,
			Policy:  policy,
		}
	}

	switch kind {
	case components.KindGround:
		if pc.SpeedMean != 0 || pc.SpeedStdDev != 0 {
			p.Ground = &remote.GroundSpec{SpeedMean: pc.SpeedMean, SpeedStdDev: pc.SpeedStdDev}
		}
	case components.KindAerial:
		if pc.BatteryUsage != nil {
			p.Aerial = &remote.AerialSpec{BatteryUsage: *pc.BatteryUsage}
		}
	}

	for _, sc := range pc.Sensors {
		model, ok := models[sc.Model]
		if !ok {
			return nil, fmt.Errorf("unknown sensor model %q", sc.Model)
		}
		count := sc.Count
		if count == 0 && len(sc.IDs) == 0 {
			count = 1
		}
		p.Sensors = append(p.Sensors, sensors.Config{Proto: model, Count: count, IDs: sc.IDs, Active: sc.Active})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// BuildScenario converts the configuration into a scenario configuration.
// A nil logger uses slog.Default.
func (c *Config) BuildScenario(logger *slog.Logger) (scenario.Config, error) {
	grid, err := c.BuildGrid()
	if err != nil {
		return scenario.Config{}, err
	}
	protos, err := c.BuildProtos()
	if err != nil {
		return scenario.Config{}, err
	}

	sc := scenario.Config{
		ID:            c.Scenario.ID,
		Seed:          c.Scenario.Seed,
		StepSize:      c.Scenario.StepSize,
		MissionLength: c.Scenario.MissionLength,
		Grid:          grid,
		Logger:        logger,
	}
	for i, rc := range c.Remotes {
		p, ok := protos[rc.Proto]
		if !ok {
			return scenario.Config{}, fmt.Errorf("remotes[%d]: %w: unknown proto %q", i, ErrInvalid, rc.Proto)
		}
		sc.Remotes = append(sc.Remotes, scenario.RemoteConfig{
			Proto:    p,
			Count:    rc.Count,
			IDs:      rc.IDs,
			Team:     rc.Team,
			Active:   rc.Active,
			Dynamic:  rc.Dynamic,
			Location: rc.Location,
		})
	}
	return sc, nil
}
