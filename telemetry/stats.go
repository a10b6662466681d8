package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of simulated time.
type WindowStats struct {
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTime         float64 `csv:"sim_time"`
	Status          string  `csv:"status"`

	// Population at window end
	Remotes  int `csv:"remotes"`
	Active   int `csv:"active"`
	Dynamic  int `csv:"dynamic"`
	Done     int `csv:"done"`
	Disabled int `csv:"disabled"`

	// Perception at window end
	Observations int `csv:"observations"`
	Connections  int `csv:"connections"`
	Monitoring   int `csv:"monitoring"`

	// Coverage of target remotes, cumulative over the mission
	Targets  int     `csv:"targets"`
	Sighted  int     `csv:"sighted"`
	Coverage float64 `csv:"coverage"`

	// Events during window
	NewSightings  int `csv:"new_sightings"`
	Faults        int `csv:"faults"`
	StatusChanges int `csv:"status_changes"`

	// Fuel distribution over fuelled remotes
	FuelMean float64 `csv:"fuel_mean"`
	FuelStd  float64 `csv:"fuel_std"`
	FuelP10  float64 `csv:"fuel_p10"`
	FuelP50  float64 `csv:"fuel_p50"`
	FuelP90  float64 `csv:"fuel_p90"`

	// Speed distribution over mobile remotes
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary is the mean, population standard deviation and deciles of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes a Summary. An empty sample summarizes to zeros.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Summary{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTime),
		slog.String("status", s.Status),
		slog.Int("remotes", s.Remotes),
		slog.Int("active", s.Active),
		slog.Int("dynamic", s.Dynamic),
		slog.Int("done", s.Done),
		slog.Int("disabled", s.Disabled),
		slog.Int("observations", s.Observations),
		slog.Int("connections", s.Connections),
		slog.Int("monitoring", s.Monitoring),
		slog.Int("targets", s.Targets),
		slog.Int("sighted", s.Sighted),
		slog.Float64("coverage", s.Coverage),
		slog.Int("new_sightings", s.NewSightings),
		slog.Int("faults", s.Faults),
		slog.Int("status_changes", s.StatusChanges),
		slog.Float64("fuel_mean", s.FuelMean),
		slog.Float64("fuel_std", s.FuelStd),
		slog.Float64("fuel_p10", s.FuelP10),
		slog.Float64("fuel_p50", s.FuelP50),
		slog.Float64("fuel_p90", s.FuelP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTime,
		"status", s.Status,
		"active", s.Active,
		"done", s.Done,
		"disabled", s.Disabled,
		"observations", s.Observations,
		"connections", s.Connections,
		"monitoring", s.Monitoring,
		"sighted", s.Sighted,
		"targets", s.Targets,
		"coverage", s.Coverage,
		"new_sightings", s.NewSightings,
		"faults", s.Faults,
		"fuel_mean", s.FuelMean,
		"fuel_p10", s.FuelP10,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
	)
}
