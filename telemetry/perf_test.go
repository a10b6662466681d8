package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseControl)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseUpdate)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep(4)
	}

	stats := pc.Stats()

	if stats.AvgStep <= 0 {
		t.Error("expected positive average step duration")
	}
	if stats.PhaseAvg[PhaseControl] <= 0 {
		t.Error("expected control phase to be tracked")
	}
	if stats.PhaseAvg[PhaseUpdate] <= 0 {
		t.Error("expected update phase to be tracked")
	}
	if stats.PhaseAvg[PhaseOutput] != 0 {
		t.Errorf("output phase mismatch: got %v, want 0", stats.PhaseAvg[PhaseOutput])
	}
	if stats.MinStep > stats.AvgStep || stats.AvgStep > stats.MaxStep {
		t.Errorf("expected min <= avg <= max, got %v %v %v", stats.MinStep, stats.AvgStep, stats.MaxStep)
	}
	if stats.AvgRemotes != 4 {
		t.Errorf("AvgRemotes mismatch: got %v, want 4", stats.AvgRemotes)
	}
	if want := stats.AvgStep / 4; stats.PerRemote != want {
		t.Errorf("PerRemote mismatch: got %v, want %v", stats.PerRemote, want)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	// Ten steps through a five-step window; only the last five count.
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(10 * time.Microsecond)
		pc.EndStep(i)
	}

	stats := pc.Stats()

	if stats.AvgStep <= 0 {
		t.Error("expected positive average step duration after window filled")
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
	// Remotes 5..9
	if stats.AvgRemotes != 7 {
		t.Errorf("AvgRemotes mismatch: got %v, want 7", stats.AvgRemotes)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseTelemetry)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseOutput)
		time.Sleep(2 * time.Millisecond)
		pc.EndStep(1)
	}

	stats := pc.Stats()

	if stats.PhasePct[PhaseOutput] <= stats.PhasePct[PhaseTelemetry] {
		t.Errorf("expected output phase (%v%%) > telemetry phase (%v%%)", stats.PhasePct[PhaseOutput], stats.PhasePct[PhaseTelemetry])
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 {
		t.Errorf("WindowEnd mismatch: got %d, want 42", row.WindowEnd)
	}
	if row.OutputPct != stats.PhasePct[PhaseOutput] {
		t.Errorf("OutputPct mismatch: got %v, want %v", row.OutputPct, stats.PhasePct[PhaseOutput])
	}
	if row.AvgRemotes != 1 {
		t.Errorf("AvgRemotes mismatch: got %v, want 1", row.AvgRemotes)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats != (PerfStats{}) {
		t.Errorf("empty stats mismatch: got %+v, want zero", stats)
	}
	if stats.PerRemote != 0 || stats.StepsPerSecond != 0 {
		t.Error("expected no throughput for empty collector")
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseControl, "control"},
		{PhaseOutput, "output"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() mismatch: got %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}
