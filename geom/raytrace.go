package geom

// RayTrace walks the segment tail→tip zone by zone and reports the first
// obstacle it meets: the edge of a BLOCKED zone, or the edge of the world when
// tip lies outside it. A tail inside a BLOCKED zone collides immediately.
//
// A ray that leaves a zone through a corner only continues into the diagonal
// zone when neither of the two zones sharing that corner is BLOCKED; otherwise
// the corner is reported against the blocked zone nearer to tail.
func RayTrace(tail, tip Vector, grid *Grid) (Collision, bool) {
	zx, zy, err := grid.index(tail)
	if err != nil {
		return Collision{}, false
	}
	if z := grid.zones[zy][zx]; z.IsBlocked() {
		return Collision{Point: tail, Box: z.Box()}, true
	}

	tipX, tipY, err := grid.index(tip)
	if err != nil {
		tipX, tipY = -1, -1
	}

	total := tail.Dist(tip)
	d := tip.Sub(tail)
	cur := tail
	for i := 0; i <= grid.width+grid.height; i++ {
		if zx == tipX && zy == tipY {
			return Collision{}, false
		}

		box := grid.zones[zy][zx].Box()
		p := box.exit(cur, tip)
		if total-tail.Dist(p) <= 1e-9 {
			return Collision{}, false
		}

		sx, sy := 0, 0
		if (d.X > 0 && Near(p.X, box.Right())) || (d.X < 0 && Near(p.X, box.Left())) {
			sx = sign(d.X)
		}
		if (d.Y > 0 && Near(p.Y, box.Bottom())) || (d.Y < 0 && Near(p.Y, box.Top())) {
			sy = sign(d.Y)
		}
		if sx == 0 && sy == 0 {
			return Collision{}, false
		}

		if sx != 0 && sy != 0 {
			if c, ok := grid.cornerBlock(tail, p, zx+sx, zy, zx, zy+sy); ok {
				return c, true
			}
		}

		nx, ny := zx+sx, zy+sy
		if !grid.inRange(nx, ny) {
			return Collision{Point: p, Box: grid.Box()}, true
		}
		if next := grid.zones[ny][nx]; next.IsBlocked() {
			return Collision{Point: p, Box: next.Box()}, true
		}
		cur, zx, zy = p, nx, ny
	}
	return Collision{}, false
}

// cornerBlock checks the two zones straddling a corner crossing at p.
func (g *Grid) cornerBlock(tail, p Vector, ax, ay, bx, by int) (Collision, bool) {
	var hit *Zone
	for _, idx := range [][2]int{{ax, ay}, {bx, by}} {
		if !g.inRange(idx[0], idx[1]) {
			continue
		}
		z := &g.zones[idx[1]][idx[0]]
		if !z.IsBlocked() {
			continue
		}
		if hit == nil || tail.Dist(z.Location) < tail.Dist(hit.Location) {
			hit = z
		}
	}
	if hit == nil {
		return Collision{}, false
	}
	return Collision{Point: p, Box: hit.Box()}, true
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}
