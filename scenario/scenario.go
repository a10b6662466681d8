// Package scenario advances a population of remotes through simulated time
// inside a zoned world.
//
// A Scenario is single threaded: each Update completes before the next may
// begin, and Snapshot may be called freely between steps. Remotes are stored
// as entities in an ECS world, one entity per remote with its lifecycle,
// kinematics and sensor components.
package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/recon/components"
	"github.com/pthm-cable/recon/geom"
	"github.com/pthm-cable/recon/intent"
	"github.com/pthm-cable/recon/kinematics"
	"github.com/pthm-cable/recon/remote"
	"github.com/pthm-cable/recon/sensors"
)

var (
	// ErrOutOfBounds marks a remote found outside the world that could not be
	// bounced back in.
	ErrOutOfBounds = errors.New("remote out of bounds")

	// ErrInvalidTime is returned by SetTime for times outside the mission.
	ErrInvalidTime = errors.New("time outside mission")

	// ErrInvalidStep is returned by Update for a non-positive step size.
	ErrInvalidStep = errors.New("invalid step size")
)

// BoundsError records a remote left outside the world by a step.
type BoundsError struct {
	RemoteID string
	Location geom.Vector
}

// Error implements error.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("remote %s at %s: out of bounds", e.RemoteID, e.Location)
}

// Unwrap lets errors.Is match ErrOutOfBounds.
func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

// timeEpsilon absorbs float drift when summing step sizes up to the mission
// length.
const timeEpsilon = 1e-9

// Scenario owns the grid, the remote population and the simulated clock.
type Scenario struct {
	id            string
	grid          *geom.Grid
	stepSize      float64
	missionLength float64
	time          float64
	step          int
	status        Status

	log   *slog.Logger
	clock func() time.Time
	rng   *rand.Rand

	world   *ecs.World
	mapper  *ecs.Map3[components.Lifecycle, kinematics.Kinematics, sensors.Controller]
	filter  *ecs.Filter3[components.Lifecycle, kinematics.Kinematics, sensors.Controller]
	byID    map[string]ecs.Entity
	order   []string
	active  map[string]struct{}
	dynamic map[string]struct{}

	faults []error
}

// New builds a scenario from cfg.
func New(cfg Config) (*Scenario, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", cfg.ID, err)
	}

	world := ecs.NewWorld()
	s := &Scenario{
		id:            cfg.ID,
		grid:          cfg.Grid,
		stepSize:      cfg.StepSize,
		missionLength: cfg.MissionLength,
		status:        StatusStart,
		log:           cfg.Logger,
		clock:         cfg.Clock,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		world:         world,
		mapper:        ecs.NewMap3[components.Lifecycle, kinematics.Kinematics, sensors.Controller](world),
		filter:        ecs.NewFilter3[components.Lifecycle, kinematics.Kinematics, sensors.Controller](world),
		byID:          make(map[string]ecs.Entity),
		active:        make(map[string]struct{}),
		dynamic:       make(map[string]struct{}),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	s.log = s.log.With("scenario", s.id)

	generated := make(map[string]int)
	for i, rc := range cfg.Remotes {
		ids := rc.IDs
		if len(ids) == 0 {
			for n := 0; n < rc.Count; n++ {
				ids = append(ids, fmt.Sprintf("%s:(%d)", rc.Proto.Label, generated[rc.Proto.Label]))
				generated[rc.Proto.Label]++
			}
		}
		for _, id := range ids {
			if err := s.spawn(id, rc); err != nil {
				return nil, fmt.Errorf("scenario %s: remotes[%d]: %w", s.id, i, err)
			}
		}
	}
	s.reconcile()

	s.log.Debug("scenario created", "remotes", len(s.order), "dynamic", len(s.dynamic))
	return s, nil
}

// spawn creates the entity for one remote.
func (s *Scenario) spawn(id string, rc RemoteConfig) error {
	if _, dup := s.byID[id]; dup {
		return fmt.Errorf("duplicate remote id %q", id)
	}

	spec := remote.Spec{
		ID:       id,
		Team:     rc.Team,
		Active:   rc.Active,
		Dynamic:  rc.Dynamic,
		Location: rc.Location,
	}
	if spec.Location == nil && rc.Proto.Kinematics.Location == nil {
		loc := s.randomLocation()
		spec.Location = &loc
	}
	if !rc.Dynamic && rc.Active {
		if v, ok := s.randomVelocity(rc.Proto); ok {
			spec.Velocity = &v
		}
	}

	parts, err := rc.Proto.Build(spec)
	if err != nil {
		return err
	}
	entity := s.mapper.NewEntity(&parts.Lifecycle, &parts.Kinematics, &parts.Sensors)
	s.byID[id] = entity
	s.order = append(s.order, id)
	if rc.Dynamic {
		s.dynamic[id] = struct{}{}
	}
	return nil
}

// ID returns the scenario identifier.
func (s *Scenario) ID() string { return s.id }

// Grid returns the world grid.
func (s *Scenario) Grid() *geom.Grid { return s.grid }

// Time returns the simulated time.
func (s *Scenario) Time() float64 { return s.time }

// Step returns the number of completed steps.
func (s *Scenario) Step() int { return s.step }

// StepSize returns the configured step size.
func (s *Scenario) StepSize() float64 { return s.stepSize }

// MissionLength returns the simulated time at which the mission ends.
func (s *Scenario) MissionLength() float64 { return s.missionLength }

// Status returns the current status.
func (s *Scenario) Status() Status { return s.status }

// IDs returns every remote ID in creation order.
func (s *Scenario) IDs() []string { return slices.Clone(s.order) }

// IsDynamic reports whether the remote is driven by external intents.
func (s *Scenario) IsDynamic(id string) bool {
	_, ok := s.dynamic[id]
	return ok
}

// IsActive reports whether the remote is in the active index.
func (s *Scenario) IsActive(id string) bool {
	_, ok := s.active[id]
	return ok
}

// Faults returns the out-of-bounds faults raised by the last Update.
func (s *Scenario) Faults() []error {
	return slices.Clone(s.faults)
}

// Remote returns a handle over the remote with the given ID. The handle is
// only valid until the next Update.
func (s *Scenario) Remote(id string) (remote.Remote, bool) {
	entity, ok := s.byID[id]
	if !ok {
		return remote.Remote{}, false
	}
	lc, kin, sc := s.mapper.Get(entity)
	return remote.Remote{Lifecycle: lc, Kin: kin, Sensors: sc}, true
}

// SetTime moves the simulated clock to t, which must lie within the mission.
func (s *Scenario) SetTime(t float64) error {
	if !(t >= 0 && t <= s.missionLength) {
		return fmt.Errorf("set time %v of %v: %w", t, s.missionLength, ErrInvalidTime)
	}
	s.time = t
	return nil
}

// Update advances the scenario by one step of stepSize, applying intents to
// the remotes they name. Remotes that are not dynamic and have no intent get
// the passive default behaviour. Out-of-bounds faults do not stop the step:
// they move the scenario into ERROR and are available from Faults.
func (s *Scenario) Update(intents intent.Set, stepSize float64) error {
	if !(stepSize > 0) || math.IsInf(stepSize, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, stepSize)
	}

	s.faults = nil
	s.time += stepSize
	if s.missionLength-s.time < timeEpsilon {
		s.time = s.missionLength
	}
	if s.status == StatusDone {
		return nil
	}

	first := s.status == StatusStart
	s.setStatus(StatusInProgress)
	s.stepSize = stepSize
	s.step++
	s.warnUnknown(intents)

	query := s.filter.Query()
	for query.Next() {
		lc, kin, sc := query.Get()
		s.updateRemote(remote.Remote{Lifecycle: lc, Kin: kin, Sensors: sc}, intents, first, stepSize)
	}

	s.sense()
	s.reconcile()

	if len(s.faults) > 0 {
		s.setStatus(StatusError)
	}
	if s.time >= s.missionLength {
		s.setStatus(StatusDone)
	}
	return nil
}

func (s *Scenario) updateRemote(r remote.Remote, intents intent.Set, first bool, stepSize float64) {
	if !r.IsEnabled() || r.Done {
		r.Sensors.Deactivate()
		return
	}

	prev, located := r.Kin.Location()
	inBounds := located && s.grid.Contains(prev)

	in, ok := intents[r.ID]
	switch {
	case ok:
	case r.Dynamic:
		in, ok = intent.None(), true
	default:
		in, ok = r.Passive(first, inBounds)
	}

	if ok {
		if inBounds {
			s.applyField(r, prev, stepSize)
		}
		if unknown := r.Apply(in, stepSize); len(unknown) > 0 {
			s.log.Warn("intent names unknown sensors", "remote", r.ID, "sensors", unknown)
		}
	}
	s.enforceBounds(r, prev, inBounds)
}

func (s *Scenario) warnUnknown(intents intent.Set) {
	var unknown []string
	for id := range intents {
		if _, ok := s.byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		s.log.Warn("intents for unknown remotes", "remotes", unknown, "time", s.time)
	}
}

// sense recomputes every sensor payload against the post-move population.
func (s *Scenario) sense() {
	var (
		subjects []sensors.Subject
		owners   []*sensors.Controller
	)
	query := s.filter.Query()
	for query.Next() {
		lc, kin, sc := query.Get()
		r := remote.Remote{Lifecycle: lc, Kin: kin, Sensors: sc}
		subjects = append(subjects, r.Subject())
		owners = append(owners, sc)
	}

	los := s.lineOfSight()
	for i, sc := range owners {
		sc.Update(subjects[i], subjects, los)
	}
}

// reconcile rebuilds the active index from the remotes' flags.
func (s *Scenario) reconcile() {
	query := s.filter.Query()
	for query.Next() {
		lc, kin, sc := query.Get()
		r := remote.Remote{Lifecycle: lc, Kin: kin, Sensors: sc}
		if r.IsActive() && !r.Done {
			s.active[r.ID] = struct{}{}
		} else {
			delete(s.active, r.ID)
		}
	}
}

func (s *Scenario) setStatus(status Status) {
	if s.status == status {
		return
	}
	s.log.Debug("status changed", "from", s.status, "to", status, "time", s.time)
	s.status = status
}
