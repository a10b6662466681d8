// Package geom provides the vector math, grid layout and collision geometry
// that keep remotes inside the world.
//
// World coordinates grow down and to the right: the top edge of the world is
// y = 0 and the bottom edge is y = height.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Precision is the tolerance used by Near comparisons.
const Precision = 0.01

// Vector is an immutable three component vector.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the vector (x, y, z).
func Vec(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Vec2 returns the vector (x, y, 0).
func Vec2(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func fromR3(v r3.Vec) Vector {
	return Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vector) r3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns v + u.
func (v Vector) Add(u Vector) Vector {
	return fromR3(r3.Add(v.r3(), u.r3()))
}

// Sub returns v - u.
func (v Vector) Sub(u Vector) Vector {
	return fromR3(r3.Sub(v.r3(), u.r3()))
}

// Scale returns v * k.
func (v Vector) Scale(k float64) Vector {
	return fromR3(r3.Scale(k, v.r3()))
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	return v.Scale(-1)
}

// Dot returns the dot product of v and u.
func (v Vector) Dot(u Vector) float64 {
	return r3.Dot(v.r3(), u.r3())
}

// Cross returns the cross product of v and u.
func (v Vector) Cross(u Vector) Vector {
	return fromR3(r3.Cross(v.r3(), u.r3()))
}

// Magnitude returns the Euclidean length of v.
func (v Vector) Magnitude() float64 {
	return r3.Norm(v.r3())
}

// Dist returns the distance between v and u.
func (v Vector) Dist(u Vector) float64 {
	return v.Sub(u).Magnitude()
}

// Unit returns v scaled to length 1. The zero vector stays zero.
func (v Vector) Unit() Vector {
	if v.Magnitude() == 0 {
		return Vector{}
	}
	return fromR3(r3.Unit(v.r3()))
}

// XY projects v onto the ground plane.
func (v Vector) XY() Vector {
	return Vector{X: v.X, Y: v.Y}
}

// Projection returns the component of v along u.
func (v Vector) Projection(u Vector) Vector {
	n := u.Unit()
	return n.Scale(v.Dot(n))
}

// Squeeze caps the magnitude of v at limit while keeping its direction.
// A non-finite limit leaves v untouched.
func (v Vector) Squeeze(limit float64) Vector {
	if math.IsInf(limit, 0) || math.IsNaN(limit) {
		return v
	}
	if limit <= 0 {
		return Vector{}
	}
	if v.Magnitude() <= limit {
		return v
	}
	return v.Unit().Scale(limit)
}

// TurnToward rotates v toward the heading of dir by at most maxAngle radians,
// keeping its magnitude. A zero v or dir leaves v untouched; when dir points
// straight back the turn goes counterclockwise in the ground plane.
func (v Vector) TurnToward(dir Vector, maxAngle float64) Vector {
	s := v.Magnitude()
	if s == 0 || dir.Magnitude() == 0 {
		return v
	}
	a, b := v.Unit(), dir.Unit()
	phi := math.Acos(math.Max(-1, math.Min(1, a.Dot(b))))
	if phi <= maxAngle {
		return b.Scale(s)
	}
	if math.Pi-phi < 1e-9 {
		b = Vector{X: -a.Y, Y: a.X}.Unit()
		if b.IsZero() {
			b = Vector{X: 1}
		}
		phi = math.Pi / 2
		if maxAngle >= phi {
			return b.Scale(s)
		}
	}
	sin := math.Sin(phi)
	wa := math.Sin(phi-maxAngle) / sin
	wb := math.Sin(maxAngle) / sin
	return a.Scale(wa).Add(b.Scale(wb)).Unit().Scale(s)
}

// Near reports whether v and u are within Precision of each other.
func (v Vector) Near(u Vector) bool {
	return v.Dist(u) < Precision
}

// IsZero reports whether v is within Precision of the zero vector.
func (v Vector) IsZero() bool {
	return v.Near(Vector{})
}

// IsFinite reports whether every component of v is finite.
func (v Vector) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Near reports whether two scalars are within Precision of each other.
func Near(a, b float64) bool {
	return math.Abs(a-b) < Precision
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
