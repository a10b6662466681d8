package geom

import "math"

var inf = math.Inf(1)

func isInf(f float64) bool { return math.IsInf(f, 0) }

// Hit classifies where a collision point sits on its box.
type Hit uint8

const (
	HitNone           Hit = iota // not on an edge
	HitVerticalEdge              // left or right edge
	HitHorizontalEdge            // top or bottom edge
	HitCorner                    // both
)

func (h Hit) String() string {
	switch h {
	case HitVerticalEdge:
		return "vertical"
	case HitHorizontalEdge:
		return "horizontal"
	case HitCorner:
		return "corner"
	default:
		return "none"
	}
}

// Collision is a point on the boundary of the box that was struck.
type Collision struct {
	Point Vector
	Box   Box
}

// Hit classifies the collision as a side or corner hit.
func (c Collision) Hit() Hit {
	v := c.Box.onVerticalEdge(c.Point)
	h := c.Box.onHorizontalEdge(c.Point)
	switch {
	case v && h:
		return HitCorner
	case v:
		return HitVerticalEdge
	case h:
		return HitHorizontalEdge
	default:
		return HitNone
	}
}

// Reflect mirrors the ray endpoint about the collision point. The component
// perpendicular to the struck side is negated; a corner negates both ground
// components. Altitude is carried through unchanged.
func (c Collision) Reflect(ray Vector) Vector {
	return c.Point.Add(c.reflectDelta(ray.Sub(c.Point)))
}

// ReflectVelocity applies the same mirroring to a velocity, so the speed is
// preserved.
func (c Collision) ReflectVelocity(v Vector) Vector {
	return c.reflectDelta(v)
}

func (c Collision) reflectDelta(d Vector) Vector {
	switch c.Hit() {
	case HitCorner:
		return Vec(-d.X, -d.Y, d.Z)
	case HitVerticalEdge:
		return Vec(-d.X, d.Y, d.Z)
	case HitHorizontalEdge:
		return Vec(d.X, -d.Y, d.Z)
	default:
		return d
	}
}
