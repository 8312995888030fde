package session

import (
	"time"

	"github.com/remolabs/remo/internal/comment"
	"github.com/remolabs/remo/internal/identity"
	"github.com/remolabs/remo/internal/reveal"
	"github.com/remolabs/remo/internal/timecode"
)

// Snapshot is the state document the UI layer renders from.
type Snapshot struct {
	VideoID            string                   `json:"videoId"`
	VideoTitle         string                   `json:"videoTitle"`
	SourceType         string                   `json:"sourceType"`
	CurrentTime        int                      `json:"currentTimeSeconds"`
	FollowLive         bool                     `json:"followLive"`
	SelectedMomentID   string                   `json:"selectedMomentId,omitempty"`
	DisplayedMomentID  string                   `json:"displayedMomentId,omitempty"`
	ShowAllComments    bool                     `json:"showAllComments"`
	JumpToLatest       bool                     `json:"jumpToLatest"`
	Fetching           bool                     `json:"fetching"`
	FetchError         string                   `json:"fetchError,omitempty"`
	Moments            []MomentView             `json:"moments"`
	UpcomingMoments    []MomentView             `json:"upcomingMoments"`
	CommentsByMomentID map[string][]CommentView `json:"commentsByMomentId"`
	RevealedCommentIDs []string                 `json:"revealedCommentIds"`
	TotalComments      int                      `json:"totalComments"`
	VisibleComments    int                      `json:"visibleComments"`
}

type MomentView struct {
	ID               string `json:"id"`
	TimestampSeconds int    `json:"timestampSeconds"`
	TimestampLabel   string `json:"timestampLabel"`
	Text             string `json:"text"`
	Now              bool   `json:"now"`
}

type CommentView struct {
	ID               string `json:"id"`
	MomentID         string `json:"momentId"`
	Text             string `json:"text"`
	Author           string `json:"author"`
	CreatedAt        string `json:"createdAt,omitempty"`
	RelativeTime     string `json:"relativeTime,omitempty"`
	TimestampSeconds int    `json:"timestampSeconds"`
	TimestampLabel   string `json:"timestampLabel"`
	Origin           string `json:"origin"`
	Upcoming         bool   `json:"upcoming,omitempty"`
	CanDelete        bool   `json:"canDelete,omitempty"`
}

const upcomingMomentCount = 3

// Snapshot renders the current session for the given viewer. With
// show-all off, not-yet-revealed comments are withheld entirely; with it
// on, everything shows and future comments carry the upcoming flag.
func (m *Manager) Snapshot(viewer identity.Session) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.video == nil {
		return Snapshot{
			Moments:            []MomentView{},
			UpcomingMoments:    []MomentView{},
			CommentsByMomentID: map[string][]CommentView{},
			RevealedCommentIDs: []string{},
			FollowLive:         true,
		}
	}

	now := m.now()
	moments := m.moments.List()
	grouped := m.agg.Merge(m.seeded, m.stored, m.server)

	snap := Snapshot{
		VideoID:            m.video.ID,
		VideoTitle:         m.video.Title,
		SourceType:         string(m.video.SourceType),
		CurrentTime:        m.current,
		FollowLive:         m.engine.FollowingLive(),
		SelectedMomentID:   m.engine.SelectedMomentID(),
		ShowAllComments:    m.engine.ShowAll(),
		JumpToLatest:       m.engine.JumpToLatest(),
		Fetching:           m.fetching,
		Moments:            make([]MomentView, 0, len(moments)),
		UpcomingMoments:    []MomentView{},
		CommentsByMomentID: make(map[string][]CommentView),
		RevealedCommentIDs: m.engine.RevealedIDs(),
	}
	if m.fetchErr != nil {
		snap.FetchError = m.fetchErr.Error()
	}
	if displayed := m.engine.DisplayedMoment(moments, m.current); displayed != nil {
		snap.DisplayedMomentID = displayed.ID
	}

	nowIDs := make(map[string]bool)
	for _, mm := range reveal.NowMoments(moments, m.current) {
		nowIDs[mm.ID] = true
	}
	for _, mm := range moments {
		snap.Moments = append(snap.Moments, MomentView{
			ID:               mm.ID,
			TimestampSeconds: mm.TimestampSeconds,
			TimestampLabel:   mm.TimestampLabel,
			Text:             mm.Text,
			Now:              nowIDs[mm.ID],
		})
	}
	for _, mm := range reveal.UpcomingMoments(moments, m.current, upcomingMomentCount) {
		snap.UpcomingMoments = append(snap.UpcomingMoments, MomentView{
			ID:               mm.ID,
			TimestampSeconds: mm.TimestampSeconds,
			TimestampLabel:   mm.TimestampLabel,
			Text:             mm.Text,
		})
	}

	for momentID, bucket := range grouped {
		views := make([]CommentView, 0, len(bucket))
		for _, c := range bucket {
			snap.TotalComments++
			if !m.engine.Visible(c, m.current) {
				continue
			}
			snap.VisibleComments++
			views = append(views, m.commentViewLocked(c, viewer, now))
		}
		if len(views) > 0 {
			snap.CommentsByMomentID[momentID] = views
		}
	}

	return snap
}

func (m *Manager) commentViewLocked(c comment.Comment, viewer identity.Session, now time.Time) CommentView {
	view := CommentView{
		ID:               c.ID,
		MomentID:         c.MomentID,
		Text:             c.Text,
		Author:           c.AuthorDisplayName,
		TimestampSeconds: c.TimestampSeconds,
		TimestampLabel:   timecode.Format(c.TimestampSeconds),
		Origin:           string(c.Origin),
		Upcoming:         m.engine.Upcoming(c, m.current),
	}
	if !c.CreatedAt.IsZero() {
		view.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
		view.RelativeTime = timecode.FormatRelative(c.CreatedAt, now)
	}
	if c.Origin == comment.OriginServer && c.AuthorID != "" && c.AuthorID == viewer.AuthorID() {
		view.CanDelete = true
	}
	return view
}
