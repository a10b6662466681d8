package mission

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/recon/config"
	"github.com/pthm-cable/recon/telemetry"
)

// Options configures a Runner.
type Options struct {
	Config        *config.Config // nil loads the embedded defaults
	Seed          int64          // 0 uses the configured seed
	MaxSteps      int            // 0 runs until the mission is DONE
	StatsWindow   float64        // simulated seconds per stats window; 0 uses config
	LogStats      bool           // log window stats, perf and bookmarks
	OutputDir     string         // CSV output; empty disables
	SnapshotDir   string         // JSON snapshots; empty disables
	SnapshotEvery int            // steps between periodic snapshots; 0 uses config
	RecordPath    string         // SQLite recording; empty disables

	Logger *slog.Logger     // nil uses slog.Default
	Clock  func() time.Time // snapshot timestamps; nil uses time.Now

	// StatsCallback receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}
