// Command optimize searches for fleet parameters that maximize target
// coverage using CMA-ES.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/recon/config"
)

type options struct {
	configPath string
	proto      string
	outputDir  string
	maxSteps   int
	seeds      int
	maxEvals   int
	population int
	stepSize   float64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.proto, "proto", "drone", "Prototype of the fleet being tuned")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxSteps, "max-steps", 0, "Maximum mission steps per run (0 = full mission)")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&opts.stepSize, "step-size", 0.3, "Initial CMA-ES step size in normalized units")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	if opts.outputDir == "" {
		return errors.New("--output is required")
	}
	if opts.seeds < 1 {
		return fmt.Errorf("--seeds must be at least 1, got %d", opts.seeds)
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector(opts.proto)
	start, err := params.SeedFromProto(baseCfg)
	if err != nil {
		return err
	}

	evals, err := createEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return err
	}
	defer evals.Close()

	evaluator := NewFitnessEvaluator(params, opts.maxSteps, evalSeeds(opts.seeds), opts.configPath)
	s := newSearch(params, evaluator.Evaluate, evals)

	popSize := opts.population
	if popSize == 0 {
		// Auto-size: 4 + floor(3*ln(n))
		popSize = 4 + int(3.0*math.Log(float64(params.Dim())))
	}

	logger.Info("starting CMA-ES",
		"proto", opts.proto,
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_steps", opts.maxSteps,
		"start", params.Named(start),
	)

	began := time.Now()
	s.progress = func(n int, ev Evaluation) {
		elapsed := time.Since(began)
		eta := time.Duration(opts.maxEvals-n) * (elapsed / time.Duration(n))
		logger.Info("evaluation",
			"eval", n,
			"coverage", ev.Coverage,
			"sighted", ev.Sighted,
			"targets", ev.Targets,
			"faults", ev.Faults,
			"fuel_left", ev.FuelLeft,
			"fitness", ev.Fitness,
			"best", s.best.Fitness,
			"elapsed", elapsed.Round(time.Second),
			"eta", eta.Round(time.Second),
		)
	}

	problem := optimize.Problem{Func: s.objective}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: opts.stepSize, Population: popSize}

	if _, err := optimize.Minimize(problem, params.Normalize(start), settings, method); err != nil {
		// Hitting the evaluation budget is reported as an error too.
		logger.Warn("optimization ended", "error", err)
	}
	if s.bestValues == nil {
		return errors.New("no evaluations completed")
	}

	logger.Info("optimization complete",
		"evals", s.evals,
		"elapsed", time.Since(began).Round(time.Second),
		"coverage", s.best.Coverage,
		"sighted", s.best.Sighted,
		"faults", s.best.Faults,
		"fitness", s.best.Fitness,
		"best", params.Named(s.bestValues),
	)

	bestCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(bestCfg, s.bestValues)
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	logger.Info("best config saved", "path", out)
	return nil
}

// evalSeeds returns n mission seeds spread apart so runs share no prefix.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}

// search tracks the best parameter vector seen and logs every evaluation.
type search struct {
	params   *ParamVector
	evaluate func([]float64) Evaluation
	log      *evalLog
	progress func(n int, ev Evaluation)

	evals      int
	best       Evaluation
	bestValues []float64
}

func newSearch(params *ParamVector, evaluate func([]float64) Evaluation, log *evalLog) *search {
	return &search{
		params:   params,
		evaluate: evaluate,
		log:      log,
		best:     Evaluation{Fitness: math.Inf(1)},
	}
}

// objective is the CMA-ES objective over normalized parameters.
func (s *search) objective(x []float64) float64 {
	values := s.params.Clamp(s.params.Denormalize(x))
	ev := s.evaluate(values)
	s.evals++

	if ev.Fitness < s.best.Fitness {
		s.best = ev
		s.bestValues = values
	}
	if s.log != nil {
		if err := s.log.write(newEvalRecord(s.evals, ev, values)); err != nil {
			slog.Warn("failed to log evaluation", "eval", s.evals, "error", err)
		}
	}
	if s.progress != nil {
		s.progress(s.evals, ev)
	}
	return ev.Fitness
}
