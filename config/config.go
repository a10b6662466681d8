// Package config provides configuration loading for recon missions.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/kinematics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid marks a configuration that loads but cannot describe a mission.
var ErrInvalid = errors.New("invalid config")

// Config holds all mission configuration parameters.
type Config struct {
	Scenario   ScenarioConfig          `yaml:"scenario"`
	Grid       GridConfig              `yaml:"grid"`
	Sensors    map[string]SensorConfig `yaml:"sensors"`
	Protos     map[string]ProtoConfig  `yaml:"protos"`
	Remotes    []RemoteConfig          `yaml:"remotes"`
	Telemetry  TelemetryConfig         `yaml:"telemetry"`
	Controller ControllerConfig        `yaml:"controller"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScenarioConfig holds the run parameters.
type ScenarioConfig struct {
	ID            string  `yaml:"id"`
	Seed          int64   `yaml:"seed"`
	StepSize      float64 `yaml:"step_size"`      // simulated seconds per step
	MissionLength float64 `yaml:"mission_length"` // simulated seconds
}

// GridConfig holds the world layout. Width and height are in zones.
type GridConfig struct {
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	ZoneSize float64      `yaml:"zone_size"`
	Zones    []ZoneConfig `yaml:"zones"` // applied in order over open zones
}

// ZoneConfig overrides a rectangle of zones.
type ZoneConfig struct {
	X      int          `yaml:"x"`
	Y      int          `yaml:"y"`
	Width  int          `yaml:"width"`  // zero means 1
	Height int          `yaml:"height"` // zero means 1
	Type   string       `yaml:"type"`   // open, blocked, closed, none
	Ground *FieldConfig `yaml:"ground,omitempty"`
	Aerial *FieldConfig `yaml:"aerial,omitempty"`
}

// FieldConfig describes a zone force field.
type FieldConfig struct {
	Type      string      `yaml:"type"` // jerk, push, pull
	Point     geom.Vector `yaml:"point"`
	Magnitude float64     `yaml:"magnitude"`
	Jerk      geom.Vector `yaml:"jerk"`
}

// SensorConfig describes a sensor model. Omitted range is unbounded.
type SensorConfig struct {
	Kind         string   `yaml:"kind"` // vision, comms, monitor
	Tags         []string `yaml:"tags,omitempty"`
	Matchers     []string `yaml:"matchers,omitempty"`
	Range        *float64 `yaml:"range,omitempty"`
	Accuracy     float64  `yaml:"accuracy"`
	Delay        float64  `yaml:"delay"`
	BatteryUsage float64  `yaml:"battery_usage"` // fuel per second while active
	LineOfSight  bool     `yaml:"line_of_sight"`
}

// ProtoConfig describes a remote prototype. Only mobile prototypes get a
// motion envelope, in which omitted limits are unbounded.
type ProtoConfig struct {
	Kind     string       `yaml:"kind"` // static, aerial, ground
	Tags     []string     `yaml:"tags,omitempty"`
	Disabled bool         `yaml:"disabled"`
	Location *geom.Vector `yaml:"location,omitempty"`

	Mobile          bool        `yaml:"mobile"`
	InitialVelocity geom.Vector `yaml:"initial_velocity"`
	MaxVelocity     *float64    `yaml:"max_velocity,omitempty"`
	MaxAcceleration *float64    `yaml:"max_acceleration,omitempty"`

	Fuel *FuelConfig `yaml:"fuel,omitempty"`

	// Ground only
	SpeedMean   float64 `yaml:"speed_mean"`
	SpeedStdDev float64 `yaml:"speed_std_dev"`

	// Aerial only: static, horizontal and vertical battery draw
	BatteryUsage *geom.Vector `yaml:"battery_usage,omitempty"`

	Sensors []ProtoSensorConfig `yaml:"sensors,omitempty"`
}

// FuelConfig describes a fuel reservoir. Omitted max is uncapped.
type FuelConfig struct {
	Initial float64     `yaml:"initial"`
	Max     *float64    `yaml:"max,omitempty"`
	Usage   geom.Vector `yaml:"usage"`            // static, horizontal, vertical
	Policy  string      `yaml:"policy,omitempty"` // default, constant
}

// ProtoSensorConfig attaches sensors of a model to a prototype.
type ProtoSensorConfig struct {
	Model  string   `yaml:"model"`
	Count  int      `yaml:"count"`
	IDs    []string `yaml:"ids,omitempty"`
	Active bool     `yaml:"active"`
}

// RemoteConfig places a group of remotes built from one prototype.
type RemoteConfig struct {
	Proto    string       `yaml:"proto"`
	Count    int          `yaml:"count"`
	IDs      []string     `yaml:"ids,omitempty"`
	Team     string       `yaml:"team,omitempty"`
	Active   bool         `yaml:"active"`
	Dynamic  bool         `yaml:"dynamic"`
	Location *geom.Vector `yaml:"location,omitempty"`
}

// TelemetryConfig holds stats and snapshot output parameters.
type TelemetryConfig struct {
	StatsWindow   float64 `yaml:"stats_window"`   // simulated seconds per stats window
	SnapshotEvery int     `yaml:"snapshot_every"` // steps between snapshots; 0 disables
	TargetTag     string  `yaml:"target_tag"`     // remotes counted toward coverage; empty counts all
}

// ControllerConfig selects the local controller for dynamic remotes.
type ControllerConfig struct {
	Kind         string  `yaml:"kind"`          // random_walk, route, hold
	ArriveRadius float64 `yaml:"arrive_radius"` // waypoint reached within this distance
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldWidth  float64  // Grid.Width * Grid.ZoneSize
	WorldHeight float64  // Grid.Height * Grid.ZoneSize
	ProtoNames  []string // sorted prototype names
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Scenario.StepSize == 0 {
		c.Scenario.StepSize = 1
	}
	if c.Telemetry.StatsWindow == 0 {
		c.Telemetry.StatsWindow = 10 * c.Scenario.StepSize
	}
	if c.Controller.ArriveRadius == 0 {
		c.Controller.ArriveRadius = c.Grid.ZoneSize / 4
	}

	c.Derived.WorldWidth = float64(c.Grid.Width) * c.Grid.ZoneSize
	c.Derived.WorldHeight = float64(c.Grid.Height) * c.Grid.ZoneSize
	c.Derived.ProtoNames = slices.Sorted(maps.Keys(c.Protos))
}

// Validate checks cross references that YAML decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Scenario.MissionLength <= 0 {
		errs = append(errs, fmt.Errorf("scenario.mission_length %v must be positive", c.Scenario.MissionLength))
	}
	if c.Scenario.StepSize <= 0 {
		errs = append(errs, fmt.Errorf("scenario.step_size %v must be positive", c.Scenario.StepSize))
	}
	for _, name := range c.Derived.ProtoNames {
		for _, s := range c.Protos[name].Sensors {
			if _, ok := c.Sensors[s.Model]; !ok {
				errs = append(errs, fmt.Errorf("protos.%s: unknown sensor model %q", name, s.Model))
			}
		}
		if f := c.Protos[name].Fuel; f != nil {
			if _, err := kinematics.ParseUsagePolicy(f.Policy); err != nil {
				errs = append(errs, fmt.Errorf("protos.%s.fuel: %w", name, err))
			}
		}
	}
	for i, r := range c.Remotes {
		if _, ok := c.Protos[r.Proto]; !ok {
			errs = append(errs, fmt.Errorf("remotes[%d]: unknown proto %q", i, r.Proto))
		}
		if r.Count == 0 && len(r.IDs) == 0 {
			errs = append(errs, fmt.Errorf("remotes[%d]: neither count nor ids", i))
		}
	}
	switch c.Controller.Kind {
	case "", ControllerRandomWalk, ControllerRoute, ControllerHold:
	default:
		errs = append(errs, fmt.Errorf("controller.kind: unknown controller %q", c.Controller.Kind))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Controller kinds.
const (
	ControllerRandomWalk = "random_walk"
	ControllerRoute      = "route"
	ControllerHold       = "hold"
)

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
