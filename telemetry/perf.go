package telemetry

import (
	"log/slog"
	"time"
)

// Phase is a timed section of a mission step.
type Phase int

// Phases of a mission step, in execution order.
const (
	PhaseControl Phase = iota
	PhaseUpdate
	PhaseTelemetry
	PhaseOutput
	numPhases
)

var phaseNames = [numPhases]string{"control", "update", "telemetry", "output"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// stepSample is the timing of one mission step.
type stepSample struct {
	total   time.Duration
	phases  [numPhases]time.Duration
	remotes int
}

// PerfCollector times mission steps over a rolling window of the last
// windowSize steps.
type PerfCollector struct {
	ring  []stepSample
	next  int
	count int

	cur        stepSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]stepSample, windowSize)}
}

// StartStep begins timing a new mission step.
func (p *PerfCollector) StartStep() {
	p.stepStart = time.Now()
	p.cur = stepSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndStep finishes the current step and records it with the number of
// remotes the step simulated.
func (p *PerfCollector) EndStep(remotes int) {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.stepStart)
	p.cur.remotes = remotes

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// PerfStats holds step timing aggregated over the collector window.
type PerfStats struct {
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	// Average duration and share of step time per phase, indexed by Phase
	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	StepsPerSecond float64
	AvgRemotes     float64
	PerRemote      time.Duration // average step time divided by average remotes
}

// Stats aggregates the steps currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	remotes := 0
	for i, sample := range p.ring[:p.count] {
		total += sample.total
		remotes += sample.remotes
		if i == 0 || sample.total < s.MinStep {
			s.MinStep = sample.total
		}
		s.MaxStep = max(s.MaxStep, sample.total)
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgStep = total / n
	s.AvgRemotes = float64(remotes) / float64(p.count)
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgStep > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgStep) * 100
		}
	}
	if s.AvgStep > 0 {
		s.StepsPerSecond = float64(time.Second) / float64(s.AvgStep)
	}
	if s.AvgRemotes > 0 {
		s.PerRemote = time.Duration(float64(s.AvgStep) / s.AvgRemotes)
	}
	return s
}

// LogStats logs the stats at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("min_step_us", s.MinStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
		slog.Int64("per_remote_ns", s.PerRemote.Nanoseconds()),
	}
	for ph := range numPhases {
		if s.PhasePct[ph] > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	AvgRemotes   float64 `csv:"avg_remotes"`
	PerRemoteNS  int64   `csv:"per_remote_ns"`
	ControlPct   float64 `csv:"control_pct"`
	UpdatePct    float64 `csv:"update_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	OutputPct    float64 `csv:"output_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgStepUS:    s.AvgStep.Microseconds(),
		MinStepUS:    s.MinStep.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		StepsPerSec:  s.StepsPerSecond,
		AvgRemotes:   s.AvgRemotes,
		PerRemoteNS:  s.PerRemote.Nanoseconds(),
		ControlPct:   s.PhasePct[PhaseControl],
		UpdatePct:    s.PhasePct[PhaseUpdate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
		OutputPct:    s.PhasePct[PhaseOutput],
	}
}
