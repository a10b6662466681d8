// Package controller provides local controllers that issue intents for the
// dynamic remotes of a scenario.
package controller

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/recon/config"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/intent"
	"github.com/pthm-cable/recon/scenario"
)

// Controller decides the next intents from the latest snapshot.
type Controller interface {
	Intents(snap *scenario.Snapshot) intent.Set
}

// New creates the controller named by kind.
func New(kind string, seed int64, grid *geom.Grid, arriveRadius float64) (Controller, error) {
	switch kind {
	case "", config.ControllerRandomWalk:
		return NewRandomWalk(seed, grid, arriveRadius), nil
	case config.ControllerRoute:
		return NewRoute(seed, grid, arriveRadius), nil
	case config.ControllerHold:
		return Hold{}, nil
	default:
		return nil, fmt.Errorf("unknown controller %q", kind)
	}
}

// RandomWalk sends every dynamic remote to a random open location, picking a
// new one whenever the remote arrives. Inactive sensors are switched on first.
type RandomWalk struct {
	rng          *rand.Rand
	grid         *geom.Grid
	arriveRadius float64
	waypoints    map[string]geom.Vector
}

// NewRandomWalk creates a seeded RandomWalk over grid.
func NewRandomWalk(seed int64, grid *geom.Grid, arriveRadius float64) *RandomWalk {
	return &RandomWalk{
		rng:          rand.New(rand.NewSource(seed)),
		grid:         grid,
		arriveRadius: arriveRadius,
		waypoints:    make(map[string]geom.Vector),
	}
}

// Waypoint returns the current target of a remote.
func (w *RandomWalk) Waypoint(id string) (geom.Vector, bool) {
	wp, ok := w.waypoints[id]
	return wp, ok
}

// Intents activates idle sensors, then sends each remote to its waypoint.
func (w *RandomWalk) Intents(snap *scenario.Snapshot) intent.Set {
	out := make(intent.Set, len(snap.Dynamic))
	for _, id := range snap.Dynamic {
		st, ok := snap.Remotes[id]
		if !ok || !st.Active || st.Done || st.Location == nil {
			delete(w.waypoints, id)
			continue
		}

		if off := inactiveSensors(st); len(off) > 0 {
			out[id] = intent.Activate(off...)
			continue
		}

		wp, ok := w.waypoints[id]
		if !ok || st.Location.Dist(wp) <= w.arriveRadius {
			wp = w.pick()
			w.waypoints[id] = wp
		}
		out[id] = intent.GoTo(wp)
	}
	return out
}

// pick draws a location in an open zone.
func (w *RandomWalk) pick() geom.Vector {
	var p geom.Vector
	for i := 0; i < 100; i++ {
		p = geom.Vec2(w.rng.Float64()*w.grid.WorldWidth(), w.rng.Float64()*w.grid.WorldHeight())
		if z, err := w.grid.ZoneAt(p); err == nil && !impassable(z) {
			break
		}
	}
	return p
}

// Route behaves like RandomWalk but plans a path around impassable zones and
// sends each remote through its waypoints in turn.
type Route struct {
	walk    *RandomWalk
	planner *Planner
	paths   map[string][]geom.Vector
}

// NewRoute creates a seeded Route over grid.
func NewRoute(seed int64, grid *geom.Grid, arriveRadius float64) *Route {
	return &Route{
		walk:    NewRandomWalk(seed, grid, arriveRadius),
		planner: NewPlanner(grid),
		paths:   make(map[string][]geom.Vector),
	}
}

// Path returns the waypoints a remote has left to visit.
func (r *Route) Path(id string) []geom.Vector {
	return r.paths[id]
}

// Intents activates idle sensors, then moves each remote along its path.
func (r *Route) Intents(snap *scenario.Snapshot) intent.Set {
	out := make(intent.Set, len(snap.Dynamic))
	for _, id := range snap.Dynamic {
		st, ok := snap.Remotes[id]
		if !ok || !st.Active || st.Done || st.Location == nil {
			delete(r.paths, id)
			continue
		}

		if off := inactiveSensors(st); len(off) > 0 {
			out[id] = intent.Activate(off...)
			continue
		}

		path := r.paths[id]
		for len(path) > 0 && st.Location.Dist(path[0]) <= r.walk.arriveRadius {
			path = path[1:]
		}
		// unreachable goals are dropped and redrawn next step
		if len(path) == 0 {
			path = r.planner.FindPath(*st.Location, r.walk.pick())
			if len(path) > 1 {
				path = path[1:] // start zone center
			}
		}
		r.paths[id] = path
		if len(path) == 0 {
			out[id] = intent.Stop()
			continue
		}
		out[id] = intent.GoTo(path[0])
	}
	return out
}

// Hold keeps every dynamic remote where it is.
type Hold struct{}

// Intents stops every active dynamic remote.
func (Hold) Intents(snap *scenario.Snapshot) intent.Set {
	out := make(intent.Set, len(snap.Dynamic))
	for _, id := range snap.Dynamic {
		if st := snap.Remotes[id]; st.Active && !st.Done {
			out[id] = intent.Stop()
		}
	}
	return out
}

func inactiveSensors(st scenario.RemoteState) []string {
	var ids []string
	for _, s := range st.Sensors {
		if !s.Active {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
