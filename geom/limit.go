package geom

import "math"

// Limit is an optional non-negative upper bound. The zero value is unbounded,
// which keeps "no cap configured" distinct from a cap of zero.
type Limit struct {
	value   float64
	bounded bool
}

// Unbounded is the absent limit.
var Unbounded = Limit{}

// Bounded returns a limit of v. Infinite or NaN values yield Unbounded and
// negative values are raised to zero.
func Bounded(v float64) Limit {
	if math.IsInf(v, 1) || math.IsNaN(v) {
		return Unbounded
	}
	return Limit{value: math.Max(v, 0), bounded: true}
}

// LimitOf converts an optional value into a Limit.
func LimitOf(v *float64) Limit {
	if v == nil {
		return Unbounded
	}
	return Bounded(*v)
}

// IsBounded reports whether the limit caps anything.
func (l Limit) IsBounded() bool {
	return l.bounded
}

// Value returns the cap, or +Inf when unbounded.
func (l Limit) Value() float64 {
	if !l.bounded {
		return math.Inf(1)
	}
	return l.value
}

// Ptr returns the cap as an optional value.
func (l Limit) Ptr() *float64 {
	if !l.bounded {
		return nil
	}
	v := l.value
	return &v
}

// Min returns the tighter of the two limits.
func (l Limit) Min(o Limit) Limit {
	if !o.bounded {
		return l
	}
	if !l.bounded || o.value < l.value {
		return o
	}
	return l
}

// Clamp squeezes v to the limit.
func (l Limit) Clamp(v Vector) Vector {
	if !l.bounded {
		return v
	}
	return v.Squeeze(l.value)
}

// Allows reports whether x is within the limit.
func (l Limit) Allows(x float64) bool {
	return !l.bounded || x <= l.value
}
