package kinematics

import (
	"fmt"
	"math"

	"github.com/pthm-cable/recon/geom"
)

// FuelProto declares a fuel reservoir. Usage holds the static, horizontal and
// vertical draw coefficients in X, Y and Z.
type FuelProto struct {
	Initial float64
	Max     geom.Limit
	Usage   geom.Vector
	Policy  UsagePolicy // nil uses DefaultUsage
}

// Fuel is a reservoir clamped to [0, max], or only at 0 when uncapped.
type Fuel struct {
	amount float64
	max    geom.Limit
	usage  geom.Vector
}

// NewFuel creates a reservoir holding the proto's initial amount.
func NewFuel(p FuelProto) *Fuel {
	f := &Fuel{max: p.Max, usage: p.Usage}
	f.set(p.Initial)
	return f
}

// Amount returns the fuel left.
func (f *Fuel) Amount() float64 { return f.amount }

// Max returns the reservoir ceiling.
func (f *Fuel) Max() geom.Limit { return f.max }

// Usage returns the static, horizontal and vertical draw.
func (f *Fuel) Usage() geom.Vector { return f.usage }

// IsEmpty reports whether the reservoir is drained.
func (f *Fuel) IsEmpty() bool {
	return f.amount <= 0
}

// UpdateBy adds delta to the reservoir.
func (f *Fuel) UpdateBy(delta float64) {
	f.set(f.amount + delta)
}

func (f *Fuel) set(amount float64) {
	if math.IsNaN(amount) {
		return
	}
	amount = math.Max(amount, 0)
	if f.max.IsBounded() {
		amount = math.Min(amount, f.max.Value())
	}
	f.amount = amount
}

// UsagePolicy computes the fuel drawn per unit time from a usage vector and
// the commanded acceleration.
type UsagePolicy func(usage, acceleration geom.Vector, moving bool) float64

// DefaultUsage draws the static rate while idle. Under way it adds the
// horizontal rate per unit of ground acceleration and the vertical rate per
// unit of climb or descent.
func DefaultUsage(usage, acceleration geom.Vector, moving bool) float64 {
	if !moving || acceleration.Magnitude() == 0 {
		return usage.X
	}
	return usage.X + usage.Y*acceleration.XY().Magnitude() + usage.Z*math.Abs(acceleration.Z)
}

// ConstantUsage draws the static rate whether or not the remote moves.
func ConstantUsage(usage, _ geom.Vector, _ bool) float64 {
	return usage.X
}

// Usage policy names.
const (
	UsageDefault  = "default"
	UsageConstant = "constant"
)

// ParseUsagePolicy returns the policy registered under name. An empty name
// selects DefaultUsage.
func ParseUsagePolicy(name string) (UsagePolicy, error) {
	switch name {
	case "", UsageDefault:
		return DefaultUsage, nil
	case UsageConstant:
		return ConstantUsage, nil
	default:
		return nil, fmt.Errorf("unknown fuel usage policy %q", name)
	}
}
