package controller

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/recon/geom"
)

// Planner finds paths between zones of a Grid, avoiding BLOCKED and CLOSED
// zones.
type Planner struct {
	grid *geom.Grid

	// cleared between searches
	open     *nodeHeap
	closed   map[int]struct{}
	cameFrom map[int]int
	gScore   map[int]float64
}

type node struct {
	x, y  int
	f     float64
	index int
}

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	nd.index = -1
	*h = old[:n-1]
	return nd
}

// NewPlanner creates a planner over grid.
func NewPlanner(grid *geom.Grid) *Planner {
	return &Planner{
		grid:     grid,
		open:     &nodeHeap{},
		closed:   make(map[int]struct{}, 64),
		cameFrom: make(map[int]int, 64),
		gScore:   make(map[int]float64, 64),
	}
}

// FindPath returns waypoints from the zone containing from to the zone
// containing to, ending exactly at to. Waypoints are zone centers with
// straight runs removed. It returns nil if to is unreachable or either
// point lies outside the grid.
func (p *Planner) FindPath(from, to geom.Vector) []geom.Vector {
	sx, sy, ok := p.cell(from)
	if !ok {
		return nil
	}
	gx, gy, ok := p.cell(to)
	if !ok || p.blocked(gx, gy) {
		return nil
	}
	if p.blocked(sx, sy) {
		if sx, sy = p.nearestOpen(sx, sy); sx < 0 {
			return nil
		}
	}
	if sx == gx && sy == gy {
		return []geom.Vector{to}
	}

	*p.open = (*p.open)[:0]
	clear(p.closed)
	clear(p.cameFrom)
	clear(p.gScore)

	w := p.grid.Width()
	startID, goalID := sy*w+sx, gy*w+gx
	p.gScore[startID] = 0
	heap.Push(p.open, &node{x: sx, y: sy, f: heuristic(sx, sy, gx, gy)})

	for p.open.Len() > 0 {
		cur := heap.Pop(p.open).(*node)
		curID := cur.y*w + cur.x
		if curID == goalID {
			return p.reconstruct(startID, goalID, to)
		}
		if _, done := p.closed[curID]; done {
			continue
		}
		p.closed[curID] = struct{}{}

		for i, d := range neighbors {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if p.blocked(nx, ny) {
				continue
			}
			// no corner cutting
			if i >= 4 && (p.blocked(cur.x+d[0], cur.y) || p.blocked(cur.x, cur.y+d[1])) {
				continue
			}
			nID := ny*w + nx
			if _, done := p.closed[nID]; done {
				continue
			}
			cost := 1.0
			if i >= 4 {
				cost = math.Sqrt2
			}
			g := p.gScore[curID] + cost
			if old, seen := p.gScore[nID]; seen && g >= old {
				continue
			}
			p.cameFrom[nID] = curID
			p.gScore[nID] = g
			heap.Push(p.open, &node{x: nx, y: ny, f: g + heuristic(nx, ny, gx, gy)})
		}
	}
	return nil
}

var neighbors = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

func heuristic(x1, y1, x2, y2 int) float64 {
	return math.Hypot(float64(x2-x1), float64(y2-y1))
}

func (p *Planner) reconstruct(startID, goalID int, to geom.Vector) []geom.Vector {
	var ids []int
	for cur := goalID; cur != startID; {
		ids = append(ids, cur)
		prev, ok := p.cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	ids = append(ids, startID)

	w := p.grid.Width()
	path := make([]geom.Vector, len(ids))
	for i := range ids {
		id := ids[len(ids)-1-i]
		z, _ := p.grid.Zone(id%w, id/w)
		path[i] = z.Location
	}
	path[len(path)-1] = to
	return p.simplify(path)
}

// simplify drops waypoints that can be skipped in a straight line.
func (p *Planner) simplify(path []geom.Vector) []geom.Vector {
	if len(path) <= 2 {
		return path
	}
	out := make([]geom.Vector, 0, len(path))
	out = append(out, path[0])
	anchor := path[0]
	for i := 1; i < len(path)-1; i++ {
		if !p.clear(anchor, path[i+1]) {
			out = append(out, path[i])
			anchor = path[i]
		}
	}
	return append(out, path[len(path)-1])
}

// clear reports whether the segment a-b stays in passable zones.
func (p *Planner) clear(a, b geom.Vector) bool {
	dist := a.Dist(b)
	if dist < 0.01 {
		return true
	}
	step := p.grid.ZoneSize() / 2
	n := int(dist/step) + 1
	dir := b.Sub(a).Scale(1 / dist)
	for i := 0; i <= n; i++ {
		pt := a.Add(dir.Scale(math.Min(float64(i)*step, dist)))
		if z, err := p.grid.ZoneAt(pt); err != nil || impassable(z) {
			return false
		}
	}
	return true
}

// nearestOpen searches outward in rings for an open zone. It returns -1, -1
// if none is found.
func (p *Planner) nearestOpen(x, y int) (int, int) {
	limit := max(p.grid.Width(), p.grid.Height())
	for r := 1; r < limit; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				if !p.blocked(x+dx, y+dy) {
					return x + dx, y + dy
				}
			}
		}
	}
	return -1, -1
}

func (p *Planner) cell(v geom.Vector) (int, int, bool) {
	if !p.grid.Contains(v) {
		return 0, 0, false
	}
	zs := p.grid.ZoneSize()
	x := min(int(math.Floor(v.X/zs)), p.grid.Width()-1)
	y := min(int(math.Floor(v.Y/zs)), p.grid.Height()-1)
	return x, y, true
}

// blocked treats cells outside the grid as blocked.
func (p *Planner) blocked(x, y int) bool {
	z, err := p.grid.Zone(x, y)
	return err != nil || impassable(z)
}

func impassable(z geom.Zone) bool {
	return z.Type == geom.ZoneBlocked || z.Type == geom.ZoneClosed
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
