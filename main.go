package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/recon/config"
	"github.com/pthm-cable/recon/mission"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, -1 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = run until the mission ends)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in simulated seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshotEvery := flag.Int("snapshot-every", 0, "Steps between periodic snapshots (0 = use config)")
	record := flag.String("record", "", "SQLite file to record every step into")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed < 0 {
		rngSeed = time.Now().UnixNano()
	}

	runner, err := mission.New(mission.Options{
		Config:        cfg,
		Seed:          rngSeed,
		MaxSteps:      *maxSteps,
		StatsWindow:   *statsWindow,
		LogStats:      *logStats,
		OutputDir:     *outputDir,
		SnapshotDir:   *snapshotDir,
		SnapshotEvery: *snapshotEvery,
		RecordPath:    *record,
		Logger:        logger,
	})
	if err != nil {
		slog.Error("failed to start mission", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting mission",
		"scenario", runner.Scenario().ID(),
		"seed", runner.Seed(),
		"remotes", len(runner.Scenario().IDs()),
		"mission_length", runner.Scenario().MissionLength(),
		"max_steps", *maxSteps,
	)

	runErr := runner.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		slog.Info("interrupted", "step", runner.Scenario().Step())
		runErr = nil
	}
	if err := runner.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if runErr != nil {
		slog.Error("mission failed", "error", runErr)
		os.Exit(1)
	}
}
