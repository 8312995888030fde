// Package reveal implements the live-follow viewing engine: which moment
// is active at the playhead, which comments a viewer has seen, and when
// the feed should scroll itself.
package reveal

import (
	"sort"
	"time"

	"github.com/remolabs/remo/internal/comment"
	"github.com/remolabs/remo/internal/moment"
)

type FollowState string

const (
	// Live tracks the playhead automatically.
	Live FollowState = "live"
	// PausedManual means the viewer scrolled away or pinned a moment.
	// Only an explicit follow-live action returns to Live.
	PausedManual FollowState = "paused"
)

// scrollDebounce collapses rapid active-moment changes into one scroll
// directive.
const scrollDebounce = 250 * time.Millisecond

// nowWindowSeconds is the highlight window around the playhead for the
// "now" moment grouping.
const nowWindowSeconds = 3

// Engine is per-video-selection state. It is not safe for concurrent use;
// the session serializes all calls.
type Engine struct {
	state            FollowState
	watermark        int
	revealed         map[string]struct{}
	selectedMomentID string
	showAll          bool
	nearBottom       bool
	jumpToLatest     bool
	lastActiveID     string
	lastDirectiveAt  time.Time
	now              func() time.Time
}

func NewEngine() *Engine {
	return newEngine(time.Now)
}

func newEngine(now func() time.Time) *Engine {
	return &Engine{
		state:      Live,
		watermark:  -1,
		revealed:   make(map[string]struct{}),
		nearBottom: true,
		now:        now,
	}
}

func (e *Engine) State() FollowState { return e.state }

func (e *Engine) FollowingLive() bool { return e.state == Live }

func (e *Engine) Watermark() int { return e.watermark }

func (e *Engine) SelectedMomentID() string { return e.selectedMomentID }

func (e *Engine) ShowAll() bool { return e.showAll }

func (e *Engine) SetShowAll(enabled bool) { e.showAll = enabled }

// JumpToLatest reports whether the "jump to latest" affordance is raised.
func (e *Engine) JumpToLatest() bool { return e.jumpToLatest }

// Advance feeds a playback time observation to the engine and reports
// whether the feed should scroll to the active moment. A time ahead of
// the watermark reveals every comment at or before it; a time behind the
// watermark is a backward jump and never un-reveals anything, so a stale
// tick arriving after a seek cannot corrupt the reveal set.
func (e *Engine) Advance(currentTime int, moments []moment.Moment, comments []comment.Comment) bool {
	if currentTime > e.watermark {
		for _, c := range comments {
			if c.TimestampSeconds <= currentTime {
				e.revealed[c.ID] = struct{}{}
			}
		}
	}
	e.watermark = currentTime

	active := ActiveMoment(moments, currentTime)
	activeID := ""
	if active != nil {
		activeID = active.ID
	}
	changed := activeID != "" && activeID != e.lastActiveID
	e.lastActiveID = activeID

	if !changed || e.state != Live || !e.nearBottom {
		return false
	}
	now := e.now()
	if now.Sub(e.lastDirectiveAt) < scrollDebounce {
		return false
	}
	e.lastDirectiveAt = now
	return true
}

// SelectMoment pins a moment explicitly, leaving live-follow.
func (e *Engine) SelectMoment(momentID string) {
	e.selectedMomentID = momentID
	e.state = PausedManual
}

// FollowLive returns to automatic tracking and clears any pinned moment.
func (e *Engine) FollowLive() {
	e.state = Live
	e.selectedMomentID = ""
	e.jumpToLatest = false
}

// ReportScroll records whether the feed viewport is in the near-bottom
// region. Leaving it forces live-follow off and raises the jump-to-latest
// affordance; returning clears the affordance without changing state.
func (e *Engine) ReportScroll(nearBottom bool) {
	e.nearBottom = nearBottom
	if nearBottom {
		e.jumpToLatest = false
		return
	}
	if e.state == Live {
		e.state = PausedManual
	}
	e.jumpToLatest = true
}

// ActiveMoment returns the moment with the greatest timestamp at or
// before currentTime, nil before the first moment. Among equal
// timestamps the last in list order wins.
func ActiveMoment(moments []moment.Moment, currentTime int) *moment.Moment {
	var active *moment.Moment
	for i := range moments {
		m := &moments[i]
		if m.TimestampSeconds > currentTime {
			continue
		}
		if active == nil || m.TimestampSeconds >= active.TimestampSeconds {
			active = m
		}
	}
	return active
}

// DisplayedMoment is the active moment while following live, the pinned
// moment otherwise.
func (e *Engine) DisplayedMoment(moments []moment.Moment, currentTime int) *moment.Moment {
	if e.state == Live {
		return ActiveMoment(moments, currentTime)
	}
	for i := range moments {
		if moments[i].ID == e.selectedMomentID {
			return &moments[i]
		}
	}
	return nil
}

// Visible reports whether a comment may be shown at currentTime. With
// show-all on, everything is visible; otherwise a comment shows once the
// playhead reaches it or once it has ever been revealed.
func (e *Engine) Visible(c comment.Comment, currentTime int) bool {
	if e.showAll {
		return true
	}
	if c.TimestampSeconds <= currentTime {
		return true
	}
	_, ok := e.revealed[c.ID]
	return ok
}

// Upcoming flags a not-yet-reached comment in show-all mode.
func (e *Engine) Upcoming(c comment.Comment, currentTime int) bool {
	return e.showAll && c.TimestampSeconds > currentTime
}

func (e *Engine) Revealed(commentID string) bool {
	_, ok := e.revealed[commentID]
	return ok
}

// RevealedIDs returns the reveal set sorted for stable output.
func (e *Engine) RevealedIDs() []string {
	out := make([]string, 0, len(e.revealed))
	for id := range e.revealed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UpcomingMoments returns up to n moments strictly after currentTime, in
// timeline order.
func UpcomingMoments(moments []moment.Moment, currentTime, n int) []moment.Moment {
	var out []moment.Moment
	for _, m := range moments {
		if m.TimestampSeconds > currentTime {
			out = append(out, m)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// NowMoments returns the moments within the highlight window around the
// playhead.
func NowMoments(moments []moment.Moment, currentTime int) []moment.Moment {
	var out []moment.Moment
	for _, m := range moments {
		d := m.TimestampSeconds - currentTime
		if d < 0 {
			d = -d
		}
		if d <= nowWindowSeconds {
			out = append(out, m)
		}
	}
	return out
}
