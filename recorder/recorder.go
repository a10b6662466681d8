// Package recorder stores mission snapshots in SQLite for later replay and
// analysis.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	sfgeom "github.com/peterstace/simplefeatures/geom"
	"github.com/pthm-cable/recon/scenario"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotStarted is returned when frames are recorded before Start.
var ErrNotStarted = errors.New("recorder: no run started")

const createBatchSize = 500

// Recorder writes one Frame per remote per recorded snapshot.
type Recorder struct {
	db  *gorm.DB
	run *Run
	log *slog.Logger
}

// RunMeta describes the mission a run records.
type RunMeta struct {
	ScenarioID    string
	Seed          int64
	StepSize      float64
	MissionLength float64
}

// Open connects to the SQLite database at path and migrates the schema.
// An empty path records into memory.
func Open(path string, log *slog.Logger) (*Recorder, error) {
	if log == nil {
		log = slog.Default()
	}

	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        createBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening recorder db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql interface: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if err := db.AutoMigrate(Models...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	if path != "" {
		log.Info("recording to sqlite", "path", path)
	}
	return &Recorder{db: db, log: log}, nil
}

// Start begins a new run; later frames belong to it.
func (r *Recorder) Start(meta RunMeta) (uint, error) {
	run := &Run{
		ScenarioID:    meta.ScenarioID,
		Seed:          meta.Seed,
		StepSize:      meta.StepSize,
		MissionLength: meta.MissionLength,
	}
	if err := r.db.Create(run).Error; err != nil {
		return 0, fmt.Errorf("creating run: %w", err)
	}
	r.run = run
	r.log.Debug("recorder run started", "run", run.ID, "scenario", meta.ScenarioID)
	return run.ID, nil
}

// RunID returns the current run, or 0 before Start.
func (r *Recorder) RunID() uint {
	if r.run == nil {
		return 0
	}
	return r.run.ID
}

// Record stores snap under the current run.
func (r *Recorder) Record(snap *scenario.Snapshot) error {
	if r.run == nil {
		return ErrNotStarted
	}

	ids := snap.IDs()
	frames := make([]Frame, 0, len(ids))
	for _, id := range ids {
		f, err := newFrame(r.run.ID, snap, snap.Remotes[id])
		if err != nil {
			return err
		}
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		return nil
	}

	if err := r.db.CreateInBatches(frames, createBatchSize).Error; err != nil {
		return fmt.Errorf("recording step %d: %w", snap.Step, err)
	}

	r.run.Frames++
	r.run.Remotes = max(r.run.Remotes, len(frames))
	err := r.db.Model(r.run).Updates(map[string]interface{}{
		"frames":  r.run.Frames,
		"remotes": r.run.Remotes,
	}).Error
	if err != nil {
		return fmt.Errorf("updating run %d: %w", r.run.ID, err)
	}
	return nil
}

func newFrame(runID uint, snap *scenario.Snapshot, st scenario.RemoteState) (Frame, error) {
	f := Frame{
		RunID:    runID,
		RemoteID: st.ID,
		Step:     snap.Step,
		Time:     snap.Time,
		Status:   snap.Status.String(),
		Enabled:  st.Enabled,
		Active:   st.Active,
		Done:     st.Done,
		Sensors:  datatypes.JSON("[]"),
	}
	if st.Location != nil {
		f.Located = true
		f.X, f.Y, f.Z = st.Location.X, st.Location.Y, st.Location.Z
	}
	if st.Motion != nil {
		v := st.Motion.Velocity
		f.VX, f.VY, f.VZ = v.X, v.Y, v.Z
	}
	if st.Fuel != nil {
		amount := st.Fuel.Amount
		f.Fuel = &amount
	}
	if len(st.Sensors) > 0 {
		data, err := json.Marshal(st.Sensors)
		if err != nil {
			return Frame{}, fmt.Errorf("encoding sensors of %s: %w", st.ID, err)
		}
		f.Sensors = datatypes.JSON(data)
	}
	return f, nil
}

// Runs returns every recorded run, oldest first.
func (r *Recorder) Runs() ([]Run, error) {
	var runs []Run
	if err := r.db.Order("id").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Frames returns the frames of one remote in a run ordered by step.
func (r *Recorder) Frames(runID uint, remoteID string) ([]Frame, error) {
	var frames []Frame
	err := r.db.
		Where("run_id = ? AND remote_id = ?", runID, remoteID).
		Order("step").
		Find(&frames).Error
	if err != nil {
		return nil, fmt.Errorf("loading frames of %s: %w", remoteID, err)
	}
	return frames, nil
}

// Track returns the recorded ground path of one remote. Frames without a
// location are skipped and repeated points collapse into one; a path with
// fewer than two distinct points gives an empty line.
func (r *Recorder) Track(runID uint, remoteID string) (sfgeom.LineString, error) {
	frames, err := r.Frames(runID, remoteID)
	if err != nil {
		return sfgeom.LineString{}, err
	}

	coords := make([]float64, 0, len(frames)*2)
	for _, f := range frames {
		if !f.Located {
			continue
		}
		if n := len(coords); n >= 2 && coords[n-2] == f.X && coords[n-1] == f.Y {
			continue
		}
		coords = append(coords, f.X, f.Y)
	}
	if len(coords) < 4 {
		return sfgeom.LineString{}, nil
	}

	seq := sfgeom.NewSequence(coords, sfgeom.DimXY)
	ls, err := sfgeom.NewLineString(seq)
	if err != nil {
		return sfgeom.LineString{}, fmt.Errorf("track of %s: %w", remoteID, err)
	}
	return ls, nil
}

// SensorStates decodes the sensor payloads stored in f.
func (f Frame) SensorStates() ([]scenario.SensorState, error) {
	var states []scenario.SensorState
	if len(f.Sensors) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(f.Sensors, &states); err != nil {
		return nil, fmt.Errorf("decoding sensors of %s: %w", f.RemoteID, err)
	}
	return states, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
