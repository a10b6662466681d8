// Package main provides CMA-ES optimization for recon fleet parameters.
package main

import (
	"fmt"

	"github.com/pthm-cable/recon/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// Indices into the parameter vector. Order must match Specs.
const (
	paramArriveRadius = iota
	paramMaxVelocity
	paramMaxAcceleration
	paramCount
)

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec

	// Prototype tuned by the fleet parameters
	Proto string
}

// NewParamVector creates the standard set of optimizable parameters for the
// remotes built from proto.
func NewParamVector(proto string) *ParamVector {
	return &ParamVector{
		Proto: proto,
		Specs: []ParamSpec{
			// Controller
			{Name: "arrive_radius", Path: "controller.arrive_radius", Min: 0.5, Max: 10, Default: 2},
			// Fleet motion envelope
			{Name: "max_velocity", Path: "protos." + proto + ".max_velocity", Min: 1, Max: 10, Default: 5},
			{Name: "max_acceleration", Path: "protos." + proto + ".max_acceleration", Min: 0.2, Max: 4, Default: 1},
			// Fleet size
			{Name: "count", Path: "remotes[" + proto + "].count", Min: 1, Max: 8, Default: 4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	// Clamp values to ensure they're within bounds
	clamped := pv.Clamp(values)

	cfg.Controller.ArriveRadius = clamped[paramArriveRadius]

	if p, ok := cfg.Protos[pv.Proto]; ok {
		maxV, maxA := clamped[paramMaxVelocity], clamped[paramMaxAcceleration]
		p.Mobile = true
		p.MaxVelocity = &maxV
		p.MaxAcceleration = &maxA
		cfg.Protos[pv.Proto] = p
	}

	count := roundCount(clamped[paramCount])
	for i := range cfg.Remotes {
		if cfg.Remotes[i].Proto == pv.Proto && len(cfg.Remotes[i].IDs) == 0 {
			cfg.Remotes[i].Count = count
		}
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
// Unset values fall back to the spec defaults.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := pv.DefaultVector()
	v[paramArriveRadius] = cfg.Controller.ArriveRadius
	if p, ok := cfg.Protos[pv.Proto]; ok {
		if p.MaxVelocity != nil {
			v[paramMaxVelocity] = *p.MaxVelocity
		}
		if p.MaxAcceleration != nil {
			v[paramMaxAcceleration] = *p.MaxAcceleration
		}
	}
	for _, r := range cfg.Remotes {
		if r.Proto == pv.Proto && len(r.IDs) == 0 {
			v[paramCount] = float64(r.Count)
			break
		}
	}
	return v
}

// SeedFromProto returns the starting point of the search: the tuned proto's
// current envelope and fleet size, clamped into bounds. The proto must exist
// and back at least one generated remote group.
func (pv *ParamVector) SeedFromProto(cfg *config.Config) ([]float64, error) {
	if _, ok := cfg.Protos[pv.Proto]; !ok {
		return nil, fmt.Errorf("unknown proto %q", pv.Proto)
	}
	generated := false
	for _, r := range cfg.Remotes {
		if r.Proto == pv.Proto && len(r.IDs) == 0 {
			generated = true
			break
		}
	}
	if !generated {
		return nil, fmt.Errorf("proto %q has no generated remote group to size", pv.Proto)
	}
	return pv.Clamp(pv.ExtractFromConfig(cfg)), nil
}

// Named pairs parameter values with their names for logging.
func (pv *ParamVector) Named(values []float64) map[string]float64 {
	named := make(map[string]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		named[spec.Name] = values[i]
	}
	return named
}

func roundCount(v float64) int {
	return int(v + 0.5)
}
