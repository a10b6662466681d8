package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pthm-cable/recon/config"
	"github.com/pthm-cable/recon/mission"
	"github.com/pthm-cable/recon/telemetry"
)

// Evaluation summarizes the missions flown for one parameter vector,
// averaged over seeds.
type Evaluation struct {
	Fitness  float64
	Coverage float64
	Quality  float64
	FuelLeft float64 // fraction of the starting mean fuel still held at the end
	Sighted  float64
	Targets  float64
	Faults   float64 // remotes that went into fault during the mission
	Failed   int     // seeds whose mission could not be run
}

// FitnessEvaluator flies headless recon missions and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	maxSteps   int
	seeds      []int64
	configPath string
	log        *slog.Logger
}

// NewFitnessEvaluator creates a new evaluator. Every run loads a fresh copy of
// the config at configPath.
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxSteps:   maxSteps,
		seeds:      seeds,
		configPath: configPath,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Evaluate flies one mission per seed in parallel and averages the results.
// Lower fitness is better.
func (fe *FitnessEvaluator) Evaluate(x []float64) Evaluation {
	runs := make([]Evaluation, len(fe.seeds))
	errs := make([]error, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			windows, err := fe.runMission(x, seed)
			if err != nil {
				errs[i] = err
				return
			}
			runs[i] = summarize(windows)
		}()
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			fe.log.Error("mission failed", "seed", fe.seeds[i], "error", err)
			failed++
		}
	}
	return average(runs, errs, failed)
}

// runMission flies a single headless mission and returns its window stats.
func (fe *FitnessEvaluator) runMission(x []float64, seed int64) ([]telemetry.WindowStats, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	runner, err := mission.New(mission.Options{
		Config:   cfg,
		Seed:     seed,
		MaxSteps: fe.maxSteps,
		Logger:   fe.log,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	return windows, nil
}

// summarize scores one mission from its window stats.
func summarize(windows []telemetry.WindowStats) Evaluation {
	if len(windows) == 0 {
		return Evaluation{}
	}
	last := windows[len(windows)-1]

	ev := Evaluation{
		Coverage: last.Coverage,
		Sighted:  float64(last.Sighted),
		Targets:  float64(last.Targets),
	}
	for _, w := range windows {
		ev.Faults += float64(w.Faults)
	}
	if first := windows[0].FuelMean; first > 0 {
		ev.FuelLeft = clamp01(last.FuelMean / first)
	}
	ev.Quality = computeQuality(windows, ev.FuelLeft)
	ev.Fitness = computeFitness(ev.Coverage, ev.Quality)
	return ev
}

// average folds per-seed summaries into one. Failed seeds score zero
// fitness and count toward the mean so a fragile fleet is not favoured.
func average(runs []Evaluation, errs []error, failed int) Evaluation {
	ev := Evaluation{Failed: failed}
	if len(runs) == 0 {
		return ev
	}
	for i, r := range runs {
		if errs[i] != nil {
			continue
		}
		ev.Fitness += r.Fitness
		ev.Coverage += r.Coverage
		ev.Quality += r.Quality
		ev.FuelLeft += r.FuelLeft
		ev.Sighted += r.Sighted
		ev.Targets += r.Targets
		ev.Faults += r.Faults
	}
	n := float64(len(runs))
	ev.Fitness /= n
	ev.Coverage /= n
	ev.Quality /= n
	ev.FuelLeft /= n
	ev.Sighted /= n
	ev.Targets /= n
	ev.Faults /= n
	return ev
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(coverage × (1.0 + 0.2 × quality))
// Coverage dominates; quality adds up to 20% bonus to separate fleets that
// sight the same targets.
func computeFitness(coverage, quality float64) float64 {
	return -(coverage * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightSpeed = 0.6
	qualityWeightFuel  = 0.4
)

// computeQuality scores how early coverage was reached and how much fuel the
// fleet kept, in [0, 1].
func computeQuality(windows []telemetry.WindowStats, fuelLeft float64) float64 {
	if len(windows) == 0 {
		return 0
	}

	// Area under the coverage curve rewards early sightings.
	var area float64
	for _, w := range windows {
		area += w.Coverage
	}
	speedScore := area / float64(len(windows))

	return clamp01(qualityWeightSpeed*speedScore + qualityWeightFuel*clamp01(fuelLeft))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
