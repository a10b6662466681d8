// Package mission drives a scenario headlessly: local controllers issue
// intents, the scenario steps, and telemetry, snapshots and recordings are
// written along the way.
package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/recon/config"
	"github.com/pthm-cable/recon/controller"
	"github.com/pthm-cable/recon/recorder"
	"github.com/pthm-cable/recon/scenario"
	"github.com/pthm-cable/recon/telemetry"
)

// bookmarkHistory is the number of windows kept for bookmark detection.
const bookmarkHistory = 10

// Runner owns one mission run.
type Runner struct {
	cfg  *config.Config
	seed int64
	log  *slog.Logger

	scn  *scenario.Scenario
	ctrl controller.Controller
	last *scenario.Snapshot

	maxSteps      int
	logStats      bool
	snapshotDir   string
	snapshotEvery int
	statsCallback func(telemetry.WindowStats)

	collector *telemetry.Collector
	events    *telemetry.EventDetector
	bookmarks *telemetry.BookmarkDetector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	recorder  *recorder.Recorder
}

// New builds the scenario and controller described by opts and opens the
// requested outputs.
func New(opts Options) (*Runner, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Scenario.Seed
	}

	sc, err := cfg.BuildScenario(log)
	if err != nil {
		return nil, fmt.Errorf("building scenario: %w", err)
	}
	sc.Seed = seed
	sc.Clock = opts.Clock

	scn, err := scenario.New(sc)
	if err != nil {
		return nil, fmt.Errorf("creating scenario: %w", err)
	}

	ctrl, err := controller.New(cfg.Controller.Kind, seed, scn.Grid(), cfg.Controller.ArriveRadius)
	if err != nil {
		return nil, err
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}
	snapshotEvery := cfg.Telemetry.SnapshotEvery
	if opts.SnapshotEvery > 0 {
		snapshotEvery = opts.SnapshotEvery
	}

	r := &Runner{
		cfg:           cfg,
		seed:          seed,
		log:           log,
		scn:           scn,
		ctrl:          ctrl,
		last:          scn.Snapshot(),
		maxSteps:      opts.MaxSteps,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		snapshotEvery: snapshotEvery,
		statsCallback: opts.StatsCallback,
		collector:     telemetry.NewCollector(statsWindow, cfg.Telemetry.TargetTag),
		events:        telemetry.NewEventDetector(cfg.Telemetry.TargetTag),
		bookmarks:     telemetry.NewBookmarkDetector(bookmarkHistory),
		lifetimes:     telemetry.NewLifetimeTracker(),
		perf:          telemetry.NewPerfCollector(max(1, int(statsWindow/scn.StepSize()))),
	}
	r.lifetimes.Update(r.last)

	if r.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		return nil, err
	}
	if err := r.output.WriteConfig(cfg); err != nil {
		r.output.Close()
		return nil, err
	}

	if opts.RecordPath != "" {
		if r.recorder, err = recorder.Open(opts.RecordPath, log); err != nil {
			r.output.Close()
			return nil, err
		}
		_, err = r.recorder.Start(recorder.RunMeta{
			ScenarioID:    scn.ID(),
			Seed:          seed,
			StepSize:      scn.StepSize(),
			MissionLength: scn.MissionLength(),
		})
		if err == nil {
			err = r.recorder.Record(r.last)
		}
		if err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

// Scenario returns the scenario being driven.
func (r *Runner) Scenario() *scenario.Scenario { return r.scn }

// Seed returns the seed of the run.
func (r *Runner) Seed() int64 { return r.seed }

// Last returns the snapshot taken after the latest step.
func (r *Runner) Last() *scenario.Snapshot { return r.last }

// Lifetimes returns the per-remote totals so far.
func (r *Runner) Lifetimes() []telemetry.LifetimeStats { return r.lifetimes.All() }

// Done reports whether the mission has ended or the step limit is reached.
func (r *Runner) Done() bool {
	if r.scn.Status() == scenario.StatusDone {
		return true
	}
	return r.maxSteps > 0 && r.scn.Step() >= r.maxSteps
}

// Step advances the mission by one step and reports whether it is over.
func (r *Runner) Step() (bool, error) {
	if r.Done() {
		return true, nil
	}

	r.perf.StartStep()

	r.perf.StartPhase(telemetry.PhaseControl)
	intents := r.ctrl.Intents(r.last)

	r.perf.StartPhase(telemetry.PhaseUpdate)
	if err := r.scn.Update(intents, r.scn.StepSize()); err != nil {
		r.perf.EndStep(len(r.last.Remotes))
		return false, fmt.Errorf("step %d: %w", r.scn.Step()+1, err)
	}
	snap := r.scn.Snapshot()

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	events := r.events.Check(snap, r.scn.Faults())
	r.collector.Record(events...)
	r.lifetimes.Update(snap)
	for _, e := range events {
		if e.Type == telemetry.EventSighting {
			r.lifetimes.RecordSighting(e)
		}
	}

	r.perf.StartPhase(telemetry.PhaseOutput)
	if err := r.output.WriteEvents(events); err != nil {
		r.log.Error("failed to write events", "error", err)
	}
	if r.recorder != nil {
		if err := r.recorder.Record(snap); err != nil {
			r.log.Error("failed to record step", "step", snap.Step, "error", err)
		}
	}
	if r.snapshotDir != "" && r.snapshotEvery > 0 && snap.Step%r.snapshotEvery == 0 {
		r.saveSnapshot(snap, nil)
	}

	r.perf.EndStep(len(snap.Remotes))
	r.last = snap

	if r.collector.ShouldFlush(snap.Time) || snap.Status == scenario.StatusDone {
		r.flushTelemetry(snap)
	}

	done := r.Done()
	if done {
		r.log.Info("mission finished",
			"scenario", snap.ScenarioID,
			"status", snap.Status.String(),
			"step", snap.Step,
			"time", snap.Time,
		)
	}
	return done, nil
}

// Run steps until the mission is over or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := r.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// flushTelemetry closes the stats window and handles bookmarks.
func (r *Runner) flushTelemetry(snap *scenario.Snapshot) {
	stats := r.collector.Flush(snap)
	perfStats := r.perf.Stats()

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := r.output.WriteTelemetry(stats); err != nil {
		r.log.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndStep); err != nil {
		r.log.Error("failed to write perf", "error", err)
	}

	for _, bm := range r.bookmarks.Check(stats) {
		if r.logStats {
			bm.LogBookmark()
		}
		if err := r.output.WriteBookmark(bm); err != nil {
			r.log.Error("failed to write bookmark", "error", err)
		}
		if r.snapshotDir != "" {
			r.saveSnapshot(snap, &bm)
		}
	}
}

// saveSnapshot writes snap and the lifetime totals to the snapshot directory.
func (r *Runner) saveSnapshot(snap *scenario.Snapshot, bookmark *telemetry.Bookmark) {
	file := &telemetry.SnapshotFile{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  r.seed,
		Scenario: snap,
		Lifetime: r.lifetimes.All(),
		Bookmark: bookmark,
	}

	path, err := telemetry.SaveSnapshot(file, r.snapshotDir)
	if err != nil {
		r.log.Error("failed to save snapshot", "error", err)
		return
	}
	r.log.Info("snapshot saved", "path", path, "step", snap.Step)
}

// Close writes the per-remote totals and releases all outputs.
func (r *Runner) Close() error {
	var errs []error
	if err := r.output.WriteLifetimes(r.lifetimes.All()); err != nil {
		errs = append(errs, err)
	}
	if err := r.output.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
