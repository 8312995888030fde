package reveal

import (
	"testing"
	"time"

	"github.com/remolabs/remo/internal/comment"
	"github.com/remolabs/remo/internal/moment"
)

func testMoments() []moment.Moment {
	return []moment.Moment{
		{ID: "m0", TimestampSeconds: 0},
		{ID: "m5", TimestampSeconds: 5},
		{ID: "m20", TimestampSeconds: 20},
	}
}

func testComments() []comment.Comment {
	return []comment.Comment{
		{ID: "c0", TimestampSeconds: 0},
		{ID: "c5", TimestampSeconds: 5},
		{ID: "c20", TimestampSeconds: 20},
	}
}

func stoppedClock() func() time.Time {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func TestRevealSetGrowsMonotonically(t *testing.T) {
	e := NewEngine()
	moments := testMoments()
	comments := testComments()

	for _, tick := range []int{0, 5, 12} {
		e.Advance(tick, moments, comments)
	}

	if !e.Revealed("c0") || !e.Revealed("c5") {
		t.Error("comments at 0 and 5 should be revealed after advancing to 12")
	}
	if e.Revealed("c20") {
		t.Error("comment at 20 must not be revealed yet")
	}

	// Seeking back must not shrink the reveal set.
	e.Advance(2, moments, comments)
	if !e.Revealed("c0") || !e.Revealed("c5") {
		t.Error("seek-back un-revealed comments")
	}
}

func TestStaleTickAfterSeekCannotUnreveal(t *testing.T) {
	e := NewEngine()
	moments := testMoments()
	comments := testComments()

	e.Advance(25, moments, comments)
	// A stale tick from before the seek arrives late.
	e.Advance(3, moments, comments)

	if !e.Revealed("c20") {
		t.Error("stale tick un-revealed a comment")
	}
	if e.Watermark() != 3 {
		t.Errorf("watermark = %d, want 3", e.Watermark())
	}
}

func TestVisibilityPredicate(t *testing.T) {
	e := NewEngine()
	comments := testComments()
	e.Advance(6, testMoments(), comments)
	e.Advance(2, testMoments(), comments)

	if !e.Visible(comments[1], 2) {
		t.Error("revealed comment at 5 should stay visible at playhead 2")
	}
	if e.Visible(comments[2], 2) {
		t.Error("unrevealed future comment should be hidden")
	}

	e.SetShowAll(true)
	if !e.Visible(comments[2], 2) {
		t.Error("show-all should make every comment visible")
	}
	if !e.Upcoming(comments[2], 2) {
		t.Error("future comment should be flagged upcoming in show-all mode")
	}
	if e.Upcoming(comments[0], 2) {
		t.Error("reached comment must not be flagged upcoming")
	}
}

func TestActiveMomentSelection(t *testing.T) {
	moments := testMoments()

	if got := ActiveMoment(moments, 12); got == nil || got.ID != "m5" {
		t.Errorf("ActiveMoment(12) = %v, want m5", got)
	}
	if got := ActiveMoment(moments, 0); got == nil || got.ID != "m0" {
		t.Errorf("ActiveMoment(0) = %v, want m0", got)
	}
	if got := ActiveMoment([]moment.Moment{{ID: "m9", TimestampSeconds: 9}}, 3); got != nil {
		t.Errorf("ActiveMoment before first moment = %v, want nil", got)
	}
}

func TestActiveMomentTieBreakLatestWins(t *testing.T) {
	moments := []moment.Moment{
		{ID: "first", TimestampSeconds: 10},
		{ID: "second", TimestampSeconds: 10},
	}
	if got := ActiveMoment(moments, 15); got.ID != "second" {
		t.Errorf("tie-break picked %q, want second", got.ID)
	}
}

func TestManualScrollAwayPausesLiveFollow(t *testing.T) {
	e := NewEngine()
	if e.State() != Live {
		t.Fatalf("initial state = %q, want live", e.State())
	}

	e.ReportScroll(false)
	if e.State() != PausedManual {
		t.Errorf("state after scroll-away = %q, want paused", e.State())
	}
	if !e.JumpToLatest() {
		t.Error("scroll-away should raise the jump-to-latest affordance")
	}

	// Returning to the bottom clears the affordance but not the state.
	e.ReportScroll(true)
	if e.JumpToLatest() {
		t.Error("returning to bottom should clear the affordance")
	}
	if e.State() != PausedManual {
		t.Error("returning to bottom must not resume live-follow")
	}
}

func TestFollowLiveClearsSelection(t *testing.T) {
	e := NewEngine()
	e.SelectMoment("m5")
	if e.State() != PausedManual || e.SelectedMomentID() != "m5" {
		t.Fatalf("selection did not pause follow: state=%q selected=%q", e.State(), e.SelectedMomentID())
	}

	e.FollowLive()
	if e.State() != Live {
		t.Errorf("state = %q, want live", e.State())
	}
	if e.SelectedMomentID() != "" {
		t.Errorf("selectedMomentID = %q, want empty", e.SelectedMomentID())
	}
}

func TestDisplayedMomentFollowsModeAndSelection(t *testing.T) {
	e := NewEngine()
	moments := testMoments()

	if got := e.DisplayedMoment(moments, 12); got == nil || got.ID != "m5" {
		t.Errorf("live displayed moment = %v, want m5", got)
	}

	e.SelectMoment("m20")
	if got := e.DisplayedMoment(moments, 12); got == nil || got.ID != "m20" {
		t.Errorf("pinned displayed moment = %v, want m20", got)
	}
}

func TestScrollDirectiveOnActiveChange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	e := newEngine(func() time.Time { return now })
	moments := testMoments()
	comments := testComments()

	if !e.Advance(0, moments, comments) {
		t.Error("first active moment should emit a scroll directive")
	}

	// Another change inside the debounce window collapses.
	now = now.Add(100 * time.Millisecond)
	if e.Advance(6, moments, comments) {
		t.Error("directive inside debounce window should collapse")
	}

	now = now.Add(time.Second)
	if !e.Advance(21, moments, comments) {
		t.Error("directive after debounce window should fire")
	}
}

func TestNoScrollDirectiveWhenPausedOrScrolledAway(t *testing.T) {
	e := newEngine(stoppedClock())
	moments := testMoments()
	comments := testComments()

	e.ReportScroll(false)
	if e.Advance(6, moments, comments) {
		t.Error("paused engine must not emit scroll directives")
	}

	e2 := newEngine(stoppedClock())
	e2.nearBottom = false
	if e2.Advance(6, moments, comments) {
		t.Error("scrolled-away feed must not emit scroll directives")
	}
}

func TestUpcomingMoments(t *testing.T) {
	moments := []moment.Moment{
		{ID: "a", TimestampSeconds: 10},
		{ID: "b", TimestampSeconds: 20},
		{ID: "c", TimestampSeconds: 30},
		{ID: "d", TimestampSeconds: 40},
	}

	got := UpcomingMoments(moments, 15, 2)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("UpcomingMoments = %+v", got)
	}
}

func TestNowMomentsWindow(t *testing.T) {
	moments := []moment.Moment{
		{ID: "in-before", TimestampSeconds: 8},
		{ID: "in-after", TimestampSeconds: 13},
		{ID: "out", TimestampSeconds: 15},
	}

	got := NowMoments(moments, 10)
	if len(got) != 2 || got[0].ID != "in-before" || got[1].ID != "in-after" {
		t.Errorf("NowMoments = %+v", got)
	}
}
