// Package session owns the per-video viewing session: the moment store,
// the comment buckets from every origin, the reveal engine, and the
// mutation coordinator for adding and deleting comments.
//
// All state is guarded by one mutex, which serializes mutations the way
// the product's single event loop would; stale async results are fenced
// by a per-selection generation counter plus context cancellation.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/apperr"
	"github.com/remolabs/remo/internal/catalog"
	"github.com/remolabs/remo/internal/clock"
	"github.com/remolabs/remo/internal/comment"
	"github.com/remolabs/remo/internal/identity"
	"github.com/remolabs/remo/internal/moment"
	"github.com/remolabs/remo/internal/reveal"
	"github.com/remolabs/remo/internal/store"
	"github.com/remolabs/remo/internal/timecode"
	"github.com/remolabs/remo/internal/validate"
)

// Backend is the slice of the API client the coordinator consumes.
type Backend interface {
	FetchMoments(ctx context.Context) ([]api.MomentRecord, error)
	FetchComments(ctx context.Context, videoID string) ([]api.CommentRecord, error)
	CreateComment(ctx context.Context, videoID string, req api.CreateCommentRequest) (api.CommentRecord, error)
	DeleteComment(ctx context.Context, commentID, actingUserID string) error
}

type Manager struct {
	mu      sync.Mutex
	backend Backend
	store   *store.Store
	catalog *catalog.Catalog
	now     func() time.Time
	newID   func() string

	// demo holds immutable seeded comments keyed by catalog video id.
	demo map[string][]comment.Comment

	video       *catalog.Video
	generation  uint64
	cancelFetch context.CancelFunc
	fetching    bool
	fetchErr    error

	clock   clock.Clock
	moments *moment.Store
	agg     *comment.Aggregator
	engine  *reveal.Engine
	seeded  []comment.Comment
	stored  []comment.Comment
	server  []comment.Comment
	current int
}

func NewManager(backend Backend, st *store.Store, cat *catalog.Catalog) *Manager {
	return &Manager{
		backend: backend,
		store:   st,
		catalog: cat,
		now:     time.Now,
		newID:   uuid.NewString,
		demo:    make(map[string][]comment.Comment),
	}
}

// SetDemoComments installs the static seeded comment set for a video.
// Seeded comments are never persisted and never mutated.
func (m *Manager) SetDemoComments(videoID string, comments []comment.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demo[videoID] = comments
}

// SelectVideo switches the session to a video. All view state (playback
// watermark, follow mode, selection, reveal set) resets atomically, and
// any in-flight fetch for the previous video is cancelled so its result
// can never land on the new selection.
func (m *Manager) SelectVideo(ctx context.Context, videoID string) error {
	v, err := m.catalog.Find(ctx, videoID)
	if err != nil {
		return err
	}

	storedRecs, err := m.store.CommentsForVideo(v.ID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
	m.video = &v
	m.moments = moment.NewStore(v.ID)
	m.agg = comment.NewAggregator(m.moments)
	m.engine = reveal.NewEngine()
	m.seeded = m.demo[v.ID]
	m.stored = comment.FromStoredRecords(storedRecs)
	m.clock = clock.NewPlayhead(float64(v.DurationSeconds))
	m.startFetchLocked()
	return nil
}

// AttachClock replaces the headless playhead with a caller-owned clock,
// typically one backed by a real player.
func (m *Manager) AttachClock(c clock.Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = c
}

// ClearSelection returns to the catalog, discarding all view state.
// Stale results for the deselected video are discarded unconditionally.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// resetLocked bumps the generation fence and zeroes view state. Callers
// hold the lock.
func (m *Manager) resetLocked() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
	m.generation++
	m.video = nil
	m.clock = nil
	m.moments = nil
	m.agg = nil
	m.engine = nil
	m.seeded = nil
	m.stored = nil
	m.server = nil
	m.current = 0
	m.fetching = false
	m.fetchErr = nil
}

// RefreshComments re-triggers the comment fetch for the current video,
// cancelling any fetch still in flight.
func (m *Manager) RefreshComments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startFetchLocked()
}

// startFetchLocked launches the guarded fetch for api-sourced videos.
// At most one fetch per video may commit; older ones are cancelled, and
// cancellation is cooperative: the result is discarded at commit time,
// the underlying I/O is merely abandoned.
func (m *Manager) startFetchLocked() {
	if m.video == nil || m.video.SourceType != catalog.SourceAPI {
		return
	}
	if m.cancelFetch != nil {
		m.cancelFetch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel
	gen := m.generation
	serverID := catalog.ServerID(m.video.ID)
	m.fetching = true

	go func() {
		momRecs, err := m.backend.FetchMoments(ctx)
		if err != nil {
			// Moments are seed data; a failed read only means none show.
			slog.Warn("session: moment fetch failed", "video_id", serverID, "error", err)
			momRecs = nil
		}
		recs, err := m.backend.FetchComments(ctx, serverID)
		m.commitFetch(ctx, gen, momRecs, recs, err)
	}()
}

// commitFetch applies a fetch result unless it is stale. Staleness is
// checked against both the cancellation token and the generation fence,
// so an arbitrarily delayed response cannot overwrite newer state.
func (m *Manager) commitFetch(ctx context.Context, gen uint64, momRecs []api.MomentRecord, recs []api.CommentRecord, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil || gen != m.generation {
		return
	}

	m.fetching = false
	if err != nil {
		// Degrade: keep whatever is already displayed and raise the flag.
		m.fetchErr = err
		return
	}

	m.fetchErr = nil
	for _, mr := range momRecs {
		m.moments.Add(mr.ID, timecode.Parse(mr.Timestamp), mr.Text)
	}
	// Wholesale replacement: reconciliation, not accumulation.
	m.server = comment.FromServerRecords(recs)
}

// AdvanceTo feeds a playback time observation and reports whether the
// feed should scroll to the newly active moment.
func (m *Manager) AdvanceTo(seconds int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.video == nil {
		return false
	}
	m.current = seconds
	flat := comment.Flatten(m.agg.Merge(m.seeded, m.stored, m.server))
	return m.engine.Advance(seconds, m.moments.List(), flat)
}

// Tick advances the session from the attached clock's position.
func (m *Manager) Tick() bool {
	m.mu.Lock()
	c := m.clock
	m.mu.Unlock()
	if c == nil {
		return false
	}
	return m.AdvanceTo(int(c.Position()))
}

// SelectTimestamp pins the moment at the clicked timecode, creating it if
// needed, and returns the seconds the player should seek to.
func (m *Manager) SelectTimestamp(label string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.video == nil {
		return 0, apperr.Validation("no video selected")
	}
	seconds := timecode.Parse(label)
	mom := m.moments.GetOrCreate(seconds)
	m.engine.SelectMoment(mom.ID)
	if m.clock != nil {
		m.clock.Seek(float64(seconds))
	}
	return seconds, nil
}

// FollowLive resumes automatic tracking, clearing any pinned moment.
func (m *Manager) FollowLive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engine != nil {
		m.engine.FollowLive()
	}
}

// ReportScroll forwards the feed's near-bottom observation.
func (m *Manager) ReportScroll(nearBottom bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engine != nil {
		m.engine.ReportScroll(nearBottom)
	}
}

func (m *Manager) SetShowAll(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engine != nil {
		m.engine.SetShowAll(enabled)
	}
}

// AddComment creates a comment at the current playback position. For
// api-sourced videos the server's response is applied optimistically and
// a re-fetch reconciles; for other sources the comment is applied locally
// and persisted. On failure no state changes.
func (m *Manager) AddComment(ctx context.Context, text string, viewer identity.Session) (comment.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.video == nil {
		return comment.Comment{}, apperr.Validation("no video selected")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return comment.Comment{}, apperr.Validation("comment body is required")
	}
	if msg := validate.CommentBody(text); msg != "" {
		return comment.Comment{}, apperr.Validation(msg)
	}
	author := strings.TrimSpace(viewer.AuthorName())
	if author == "" {
		return comment.Comment{}, apperr.Validation("display name is required")
	}
	if msg := validate.DisplayName(author); msg != "" {
		return comment.Comment{}, apperr.Validation(msg)
	}

	mom := m.moments.GetOrCreate(m.current)

	if m.video.SourceType == catalog.SourceAPI {
		return m.addServerCommentLocked(ctx, mom, text, author, viewer)
	}
	return m.addLocalCommentLocked(mom, text, author, viewer)
}

func (m *Manager) addServerCommentLocked(ctx context.Context, mom moment.Moment, text, author string, viewer identity.Session) (comment.Comment, error) {
	req := api.CreateCommentRequest{
		AuthorName:       author,
		TimestampSeconds: m.current,
		Body:             text,
	}
	if id := viewer.AuthorID(); id != "" {
		req.AuthorID = &id
	}

	rec, err := m.backend.CreateComment(ctx, catalog.ServerID(m.video.ID), req)
	if err != nil {
		return comment.Comment{}, err
	}

	c := comment.FromServerRecord(rec)
	c.MomentID = mom.ID
	if !m.hasServerCommentLocked(c.ID) {
		m.server = append(m.server, c)
	}
	// Reconcile against the authority; the optimistic entry loses to the
	// re-fetched set by id.
	m.startFetchLocked()
	return c, nil
}

func (m *Manager) addLocalCommentLocked(mom moment.Moment, text, author string, viewer identity.Session) (comment.Comment, error) {
	now := m.now().UTC()
	c := comment.Comment{
		ID:                "local-" + m.newID(),
		MomentID:          mom.ID,
		Text:              text,
		AuthorDisplayName: author,
		AuthorID:          viewer.AuthorID(),
		CreatedAt:         now,
		TimestampSeconds:  m.current,
		Origin:            comment.OriginLocal,
	}
	m.stored = append(m.stored, c)

	err := m.store.AppendComment(m.video.ID, store.StoredComment{
		ID:               c.ID,
		TimestampSeconds: c.TimestampSeconds,
		TimestampLabel:   mom.TimestampLabel,
		Text:             c.Text,
		DisplayName:      c.AuthorDisplayName,
		AuthorID:         c.AuthorID,
		CreatedAtISO:     now.Format(time.RFC3339),
	})
	if err != nil {
		return comment.Comment{}, err
	}
	return c, nil
}

func (m *Manager) hasServerCommentLocked(id string) bool {
	for _, c := range m.server {
		if c.ID == id {
			return true
		}
	}
	return false
}

// DeleteComment removes a server-backed comment owned by the viewer.
// It fails closed: guests and non-owners are rejected before any network
// call. The caller is responsible for user confirmation.
func (m *Manager) DeleteComment(ctx context.Context, commentID string, viewer identity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.video == nil {
		return apperr.Validation("no video selected")
	}
	if m.video.SourceType != catalog.SourceAPI {
		return apperr.NotAuthorized("comments on this video cannot be deleted")
	}
	acting := viewer.AuthorID()
	if acting == "" {
		return apperr.NotAuthorized("sign in to delete comments")
	}

	var target *comment.Comment
	for i := range m.server {
		if m.server[i].ID == commentID {
			target = &m.server[i]
			break
		}
	}
	if target == nil {
		return apperr.ErrNotFound
	}
	if target.AuthorID != acting {
		return apperr.NotAuthorized("you can only delete your own comments")
	}

	if err := m.backend.DeleteComment(ctx, commentID, acting); err != nil {
		return err
	}

	filtered := m.server[:0]
	for _, c := range m.server {
		if c.ID != commentID {
			filtered = append(filtered, c)
		}
	}
	m.server = filtered
	m.startFetchLocked()
	return nil
}
