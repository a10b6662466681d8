package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/recon/scenario"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCoverage      BookmarkType = "coverage"
	BookmarkCoverageStall BookmarkType = "coverage_stall"
	BookmarkFleetLoss     BookmarkType = "fleet_loss"
	BookmarkFaultStreak   BookmarkType = "fault_streak"
	BookmarkMissionEnd    BookmarkType = "mission_end"
)

// coverageMilestones are the coverage fractions announced once each.
var coverageMilestones = []float64{0.25, 0.5, 0.75, 1}

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Step        int          `csv:"step" json:"step"`
	Time        float64      `csv:"time" json:"time"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"time", b.Time,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments of a mission.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	milestone    int  // next coverage milestone index
	stalled      bool // stall already reported for the current coverage
	peakActive   int  // peak active count since the last fleet loss
	faultWindows int  // consecutive windows with faults
	ended        bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for stall detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkCoverage(stats))
	add(bd.checkCoverageStall(stats))
	add(bd.checkFleetLoss(stats))
	add(bd.checkFaultStreak(stats))
	add(bd.checkMissionEnd(stats))

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkCoverage(stats WindowStats) *Bookmark {
	if stats.Targets == 0 {
		return nil
	}

	// Several milestones may pass in one window; report the highest.
	reached := -1
	for bd.milestone < len(coverageMilestones) && stats.Coverage >= coverageMilestones[bd.milestone] {
		reached = bd.milestone
		bd.milestone++
	}
	if reached < 0 {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkCoverage,
		Step:        stats.WindowEndStep,
		Time:        stats.SimTime,
		Description: fmt.Sprintf("Coverage reached %.0f%% (%d of %d targets)", coverageMilestones[reached]*100, stats.Sighted, stats.Targets),
	}
}

func (bd *BookmarkDetector) checkCoverageStall(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < bd.historySize || stats.Targets == 0 || stats.Coverage >= 1 || stats.Active == 0 {
		return nil
	}

	for _, h := range history {
		if h.Sighted != stats.Sighted {
			bd.stalled = false
			return nil
		}
	}
	if bd.stalled {
		return nil
	}
	bd.stalled = true

	return &Bookmark{
		Type:        BookmarkCoverageStall,
		Step:        stats.WindowEndStep,
		Time:        stats.SimTime,
		Description: fmt.Sprintf("No new sightings over %d windows at %.0f%% coverage", len(history)+1, stats.Coverage*100),
	}
}

func (bd *BookmarkDetector) checkFleetLoss(stats WindowStats) *Bookmark {
	if stats.Active > bd.peakActive {
		bd.peakActive = stats.Active
		return nil
	}
	if bd.peakActive < 2 {
		return nil
	}

	drop := 1.0 - float64(stats.Active)/float64(bd.peakActive)
	if drop < 0.5 {
		return nil
	}

	// Reset peak after loss
	oldPeak := bd.peakActive
	bd.peakActive = stats.Active

	return &Bookmark{
		Type:        BookmarkFleetLoss,
		Step:        stats.WindowEndStep,
		Time:        stats.SimTime,
		Description: fmt.Sprintf("Active remotes fell %.0f%% from %d to %d", drop*100, oldPeak, stats.Active),
	}
}

func (bd *BookmarkDetector) checkFaultStreak(stats WindowStats) *Bookmark {
	if stats.Faults == 0 {
		bd.faultWindows = 0
		return nil
	}
	bd.faultWindows++

	if bd.faultWindows == 3 { // trigger exactly once per streak
		return &Bookmark{
			Type:        BookmarkFaultStreak,
			Step:        stats.WindowEndStep,
			Time:        stats.SimTime,
			Description: fmt.Sprintf("Bounds faults in %d consecutive windows", bd.faultWindows),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkMissionEnd(stats WindowStats) *Bookmark {
	if bd.ended || stats.Status != scenario.StatusDone.String() {
		return nil
	}
	bd.ended = true

	return &Bookmark{
		Type:        BookmarkMissionEnd,
		Step:        stats.WindowEndStep,
		Time:        stats.SimTime,
		Description: fmt.Sprintf("Mission ended with %.0f%% coverage and %d active remotes", stats.Coverage*100, stats.Active),
	}
}
