package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfGrid is returned when a zone index or location lies outside the Grid.
var ErrOutOfGrid = errors.New("outside grid")

// ZoneSpec overrides the zones in a rectangle of the Grid at construction.
type ZoneSpec struct {
	X, Y          int // top-left zone index
	Width, Height int // in zones; zero means 1
	Type          ZoneType
	Ground        Field
	Aerial        Field
}

// Grid partitions the world into height rows of width square zones. It is
// immutable after NewGrid returns and may be shared freely.
type Grid struct {
	width    int
	height   int
	zoneSize float64
	zones    [][]Zone // [y][x]
	blocked  bool
}

// NewGrid builds a Grid of open zones and applies the overrides in order.
func NewGrid(width, height int, zoneSize float64, specs ...ZoneSpec) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions %dx%d must be positive", width, height)
	}
	if zoneSize <= 0 || math.IsInf(zoneSize, 0) || math.IsNaN(zoneSize) {
		return nil, fmt.Errorf("zone size %v must be positive and finite", zoneSize)
	}

	g := &Grid{
		width:    width,
		height:   height,
		zoneSize: zoneSize,
		zones:    make([][]Zone, height),
	}
	for y := 0; y < height; y++ {
		g.zones[y] = make([]Zone, width)
		for x := 0; x < width; x++ {
			g.zones[y][x] = Zone{
				Type:     ZoneOpen,
				Location: g.center(x, y),
				Size:     zoneSize,
			}
		}
	}

	for _, s := range specs {
		w, h := max(s.Width, 1), max(s.Height, 1)
		if !g.inRange(s.X, s.Y) || !g.inRange(s.X+w-1, s.Y+h-1) {
			return nil, fmt.Errorf("zone override (%d, %d) %dx%d: %w", s.X, s.Y, w, h, ErrOutOfGrid)
		}
		for y := s.Y; y < s.Y+h; y++ {
			for x := s.X; x < s.X+w; x++ {
				z := &g.zones[y][x]
				z.Type = s.Type
				z.Ground = s.Ground
				z.Aerial = s.Aerial
			}
		}
		if s.Type == ZoneBlocked {
			g.blocked = true
		}
	}
	return g, nil
}

// Width returns the number of zone columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of zone rows.
func (g *Grid) Height() int { return g.height }

// ZoneSize returns the side length of each zone.
func (g *Grid) ZoneSize() float64 { return g.zoneSize }

// WorldWidth returns the width of the world in world units.
func (g *Grid) WorldWidth() float64 { return float64(g.width) * g.zoneSize }

// WorldHeight returns the height of the world in world units.
func (g *Grid) WorldHeight() float64 { return float64(g.height) * g.zoneSize }

// Box returns the bounds of the whole world.
func (g *Grid) Box() Box {
	return Box{Width: g.WorldWidth(), Height: g.WorldHeight()}
}

// Contains reports whether p is within the world bounds.
func (g *Grid) Contains(p Vector) bool {
	return g.Box().Contains(p)
}

// HasBlocked reports whether any zone is BLOCKED.
func (g *Grid) HasBlocked() bool { return g.blocked }

// Zone returns the zone at column x, row y.
func (g *Grid) Zone(x, y int) (Zone, error) {
	if !g.inRange(x, y) {
		return Zone{}, fmt.Errorf("zone (%d, %d): %w", x, y, ErrOutOfGrid)
	}
	return g.zones[y][x], nil
}

// ZoneAt returns the zone containing p. Points on the far edges of the world
// belong to the last row or column.
func (g *Grid) ZoneAt(p Vector) (Zone, error) {
	x, y, err := g.index(p)
	if err != nil {
		return Zone{}, err
	}
	return g.zones[y][x], nil
}

func (g *Grid) index(p Vector) (int, int, error) {
	if !g.Contains(p) {
		return 0, 0, fmt.Errorf("zone at %s: %w", p, ErrOutOfGrid)
	}
	x := clampIndex(int(math.Floor(p.X/g.zoneSize)), g.width)
	y := clampIndex(int(math.Floor(p.Y/g.zoneSize)), g.height)
	return x, y, nil
}

func (g *Grid) center(x, y int) Vector {
	return Vec2(g.zoneSize*(float64(x)+0.5), g.zoneSize*(float64(y)+0.5))
}

func (g *Grid) inRange(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
