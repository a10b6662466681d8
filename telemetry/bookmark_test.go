package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_CoverageMilestones(t *testing.T) {
	bd := NewBookmarkDetector(10)

	tests := []struct {
		sighted int
		want    bool
	}{
		{1, false}, // 10%
		{3, true},  // 30% passes 25%
		{4, false},
		{8, true}, // 80% passes 50% and 75% at once
		{9, false},
		{10, true},
		{10, false},
	}

	for i, tt := range tests {
		stats := WindowStats{WindowEndStep: i, Targets: 10, Sighted: tt.sighted, Coverage: float64(tt.sighted) / 10, Active: 3}
		got := hasBookmark(bd.Check(stats), BookmarkCoverage)
		if got != tt.want {
			t.Errorf("window %d (%d sighted): coverage bookmark = %v, want %v", i, tt.sighted, got, tt.want)
		}
	}
}

func TestBookmarkDetector_CoverageStall(t *testing.T) {
	bd := NewBookmarkDetector(3)

	stall := 0
	for i := 0; i < 8; i++ {
		stats := WindowStats{WindowEndStep: i, Targets: 10, Sighted: 2, Coverage: 0.2, Active: 4}
		if hasBookmark(bd.Check(stats), BookmarkCoverageStall) {
			stall++
			if i != 3 {
				t.Errorf("stall reported at window %d, want 3", i)
			}
		}
	}
	if stall != 1 {
		t.Errorf("expected one stall bookmark, got %d", stall)
	}

	// Progress clears the stall so it can be reported again.
	bd.Check(WindowStats{Targets: 10, Sighted: 3, Coverage: 0.3, Active: 4})
	for i := 0; i < 3; i++ {
		if hasBookmark(bd.Check(WindowStats{Targets: 10, Sighted: 3, Coverage: 0.3, Active: 4}), BookmarkCoverageStall) {
			stall++
		}
	}
	if stall != 2 {
		t.Errorf("expected a second stall bookmark, got %d total", stall)
	}
}

func TestBookmarkDetector_FleetLoss(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndStep: i, Active: 8})
	}
	if hasBookmark(bd.Check(WindowStats{Active: 5}), BookmarkFleetLoss) {
		t.Error("a 37% drop should not be a fleet loss")
	}
	if !hasBookmark(bd.Check(WindowStats{Active: 4}), BookmarkFleetLoss) {
		t.Error("expected fleet_loss bookmark at 50% drop")
	}
	// Peak resets after the loss.
	if hasBookmark(bd.Check(WindowStats{Active: 3}), BookmarkFleetLoss) {
		t.Error("fleet loss should be measured from the new peak")
	}
}

func TestBookmarkDetector_FaultStreak(t *testing.T) {
	bd := NewBookmarkDetector(10)

	faults := []int{1, 2, 0, 1, 1, 1, 1}
	var fired []int
	for i, n := range faults {
		if hasBookmark(bd.Check(WindowStats{WindowEndStep: i, Faults: n}), BookmarkFaultStreak) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 5 {
		t.Errorf("fault streak fired at %v, want [5]", fired)
	}
}

func TestBookmarkDetector_MissionEnd(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if hasBookmark(bd.Check(WindowStats{Status: "IN_PROGRESS"}), BookmarkMissionEnd) {
		t.Error("mission end before DONE")
	}
	if !hasBookmark(bd.Check(WindowStats{Status: "DONE", Targets: 4, Sighted: 3, Coverage: 0.75}), BookmarkMissionEnd) {
		t.Error("expected mission_end bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{Status: "DONE"}), BookmarkMissionEnd) {
		t.Error("mission end reported twice")
	}
}
