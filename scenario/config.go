package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/remote"
)

// RemoteConfig declares a group of remotes built from one prototype, either
// Count of them with generated IDs or one per entry in IDs.
type RemoteConfig struct {
	Proto   *remote.Proto
	Count   int
	IDs     []string
	Team    string
	Active  bool
	Dynamic bool // driven by external intents

	// Location overrides the proto location. Remotes with neither are placed
	// at random.
	Location *geom.Vector
}

// Config describes a scenario. It is read once by New.
type Config struct {
	ID            string
	Seed          int64
	StepSize      float64
	MissionLength float64
	Grid          *geom.Grid
	Remotes       []RemoteConfig

	Logger *slog.Logger     // nil uses slog.Default
	Clock  func() time.Time // snapshot timestamps; nil uses time.Now
}

func (c *Config) validate() error {
	var errs []error
	if c.Grid == nil {
		errs = append(errs, errors.New("no grid"))
	}
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 0) {
		errs = append(errs, fmt.Errorf("step size %v must be positive", c.StepSize))
	}
	if !(c.MissionLength >= 0) || math.IsInf(c.MissionLength, 0) {
		errs = append(errs, fmt.Errorf("mission length %v must be non-negative", c.MissionLength))
	}
	for i, rc := range c.Remotes {
		if rc.Proto == nil {
			errs = append(errs, fmt.Errorf("remotes[%d]: no proto", i))
			continue
		}
		if err := rc.Proto.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("remotes[%d]: %w", i, err))
		}
		if rc.Count < 0 {
			errs = append(errs, fmt.Errorf("remotes[%d]: negative count", i))
		}
		if rc.Count > 0 && len(rc.IDs) > 0 && rc.Count != len(rc.IDs) {
			errs = append(errs, fmt.Errorf("remotes[%d]: count %d does not match %d ids", i, rc.Count, len(rc.IDs)))
		}
	}
	return errors.Join(errs...)
}
