// Package moment holds the per-video collection of timeline moments and
// synthesizes moments for timestamps that do not have one yet.
package moment

import (
	"sort"
	"strings"

	"github.com/remolabs/remo/internal/timecode"
)

type Moment struct {
	ID               string
	VideoID          string
	TimestampSeconds int
	TimestampLabel   string
	Text             string
}

// Store is the per-video moment collection. It is not safe for concurrent
// use; the session serializes access.
type Store struct {
	videoID string
	ordered []Moment
	byLabel map[string]int
}

func NewStore(videoID string) *Store {
	return &Store{
		videoID: videoID,
		byLabel: make(map[string]int),
	}
}

// SyntheticID derives the deterministic id used for client-synthesized
// moments, so repeated references to the same timestamp converge on one
// moment before a refresh.
func SyntheticID(videoID, label string) string {
	return "moment-" + videoID + "-" + strings.ReplaceAll(label, ":", "-")
}

// Add inserts a server-provided moment. The label is re-derived from the
// seconds value so it can never disagree with the codec. Existing moments
// with the same label keep their first-seen identity.
func (s *Store) Add(id string, seconds int, text string) Moment {
	label := timecode.Format(seconds)
	if idx, ok := s.byLabel[label]; ok {
		return s.ordered[idx]
	}

	m := Moment{
		ID:               id,
		VideoID:          s.videoID,
		TimestampSeconds: seconds,
		TimestampLabel:   label,
		Text:             text,
	}
	s.byLabel[label] = len(s.ordered)
	s.ordered = append(s.ordered, m)
	return m
}

// FindByLabel returns the moment whose canonical label matches exactly.
func (s *Store) FindByLabel(label string) (Moment, bool) {
	idx, ok := s.byLabel[label]
	if !ok {
		return Moment{}, false
	}
	return s.ordered[idx], true
}

// GetOrCreate returns the moment at the given timestamp, synthesizing one
// if none exists. Creation is idempotent: the synthesized id depends only
// on the video and the canonical label.
func (s *Store) GetOrCreate(seconds int) Moment {
	label := timecode.Format(seconds)
	if m, ok := s.FindByLabel(label); ok {
		return m
	}
	return s.Add(SyntheticID(s.videoID, label), seconds, "Moment at "+label)
}

// List returns the moments ascending by timestamp; ties keep insertion
// order.
func (s *Store) List() []Moment {
	out := make([]Moment, len(s.ordered))
	copy(out, s.ordered)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampSeconds < out[j].TimestampSeconds
	})
	return out
}

func (s *Store) Len() int { return len(s.ordered) }
