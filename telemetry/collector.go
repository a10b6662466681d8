package telemetry

import "github.com/pthm-cable/recon/scenario"

// Collector accumulates events within windows of simulated time and produces
// WindowStats.
type Collector struct {
	windowDuration float64
	targetTag      string

	// Current window tracking
	windowStartStep int
	windowStartTime float64

	// Event counters for current window
	newSightings  int
	faults        int
	statusChanges int

	// Cumulative over the mission
	sighted int
}

// NewCollector creates a new stats collector.
// windowDuration: how long each stats window lasts in simulated time
// targetTag: tag marking the remotes that count toward coverage; empty counts all
func NewCollector(windowDuration float64, targetTag string) *Collector {
	return &Collector{
		windowDuration: windowDuration,
		targetTag:      targetTag,
	}
}

// Record counts events into the current window.
func (c *Collector) Record(events ...Event) {
	for _, e := range events {
		switch e.Type {
		case EventSighting:
			c.newSightings++
			c.sighted++
		case EventFault:
			c.faults++
		case EventStatus:
			c.statusChanges++
		}
	}
}

// ShouldFlush returns true if enough simulated time has passed to flush the
// window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDuration-1e-9
}

// Flush produces a WindowStats from snap and resets counters for the next
// window.
func (c *Collector) Flush(snap *scenario.Snapshot) WindowStats {
	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   snap.Step,
		SimTime:         snap.Time,
		Status:          snap.Status.String(),

		Remotes: len(snap.Remotes),
		Active:  len(snap.Active),
		Dynamic: len(snap.Dynamic),

		Sighted: c.sighted,

		NewSightings:  c.newSightings,
		Faults:        c.faults,
		StatusChanges: c.statusChanges,
	}

	var fuel, speed []float64
	for _, st := range snap.Remotes {
		if st.Done {
			stats.Done++
		}
		if !st.Enabled {
			stats.Disabled++
		}
		if st.HasTag(c.targetTag) {
			stats.Targets++
		}
		if st.Fuel != nil {
			fuel = append(fuel, st.Fuel.Amount)
		}
		if st.Motion != nil {
			speed = append(speed, st.Motion.Velocity.Magnitude())
		}
		for _, sn := range st.Sensors {
			stats.Observations += len(sn.Observations)
			stats.Connections += len(sn.Connections)
			if sn.Monitoring != "" {
				stats.Monitoring++
			}
		}
	}
	if stats.Targets > 0 {
		stats.Coverage = float64(stats.Sighted) / float64(stats.Targets)
	}

	fs := Summarize(fuel)
	stats.FuelMean, stats.FuelStd = fs.Mean, fs.Std
	stats.FuelP10, stats.FuelP50, stats.FuelP90 = fs.P10, fs.P50, fs.P90

	ss := Summarize(speed)
	stats.SpeedMean, stats.SpeedStd = ss.Mean, ss.Std
	stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ss.P10, ss.P50, ss.P90

	// Reset for next window
	c.windowStartStep = snap.Step
	c.windowStartTime = snap.Time
	c.newSightings = 0
	c.faults = 0
	c.statusChanges = 0

	return stats
}

// WindowDuration returns the simulated time covered by each window.
func (c *Collector) WindowDuration() float64 {
	return c.windowDuration
}
