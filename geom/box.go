package geom

// Box is an axis-aligned rectangle anchored at its top-left corner. Boxes are
// derived on demand from a Grid or a Zone and never stored.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Left returns the x coordinate of the left edge.
func (b Box) Left() float64 { return b.X }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Top returns the y coordinate of the top edge.
func (b Box) Top() float64 { return b.Y }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// TopLeft returns the top-left corner.
func (b Box) TopLeft() Vector { return Vec2(b.Left(), b.Top()) }

// TopRight returns the top-right corner.
func (b Box) TopRight() Vector { return Vec2(b.Right(), b.Top()) }

// BottomLeft returns the bottom-left corner.
func (b Box) BottomLeft() Vector { return Vec2(b.Left(), b.Bottom()) }

// BottomRight returns the bottom-right corner.
func (b Box) BottomRight() Vector { return Vec2(b.Right(), b.Bottom()) }

// Center returns the midpoint of the box.
func (b Box) Center() Vector {
	return Vec2(b.X+b.Width/2, b.Y+b.Height/2)
}

// Contains reports whether p is inside the box. Points on the boundary, within
// Precision, count as inside.
func (b Box) Contains(p Vector) bool {
	return p.X > b.Left()-Precision && p.X < b.Right()+Precision &&
		p.Y > b.Top()-Precision && p.Y < b.Bottom()+Precision
}

// OnBoundary reports whether p lies on one of the box edges.
func (b Box) OnBoundary(p Vector) bool {
	if !b.Contains(p) {
		return false
	}
	return b.onVerticalEdge(p) || b.onHorizontalEdge(p)
}

// onVerticalEdge reports whether p is on the left or right edge.
func (b Box) onVerticalEdge(p Vector) bool {
	return Near(p.X, b.Left()) || Near(p.X, b.Right())
}

// onHorizontalEdge reports whether p is on the top or bottom edge.
func (b Box) onHorizontalEdge(p Vector) bool {
	return Near(p.Y, b.Top()) || Near(p.Y, b.Bottom())
}

// exit returns the point where the ray from tail (inside) toward tip
// (outside) leaves the box. Edges are taken in the direction of travel and a
// crossing within Precision of a corner snaps onto that corner.
func (b Box) exit(tail, tip Vector) Vector {
	d := tip.Sub(tail)
	tx, ex := crossing(tail.X, d.X, b.Left(), b.Right())
	ty, ey := crossing(tail.Y, d.Y, b.Top(), b.Bottom())

	t := tx
	if ty < t {
		t = ty
	}
	if isInf(t) {
		return tip
	}

	p := tail.Add(d.Scale(t))
	if tx <= ty {
		p.X = ex
	} else {
		p.Y = ey
	}
	if !isInf(tx) && Near(p.X, ex) {
		p.X = ex
	}
	if !isInf(ty) && Near(p.Y, ey) {
		p.Y = ey
	}
	return p
}

// crossing returns the ray parameter at which a coordinate starting at from
// and moving by delta reaches the edge it is heading toward, and that edge.
// A stationary coordinate never crosses.
func crossing(from, delta, lo, hi float64) (float64, float64) {
	switch {
	case delta > 0:
		return (hi - from) / delta, hi
	case delta < 0:
		return (lo - from) / delta, lo
	default:
		return inf, 0
	}
}
