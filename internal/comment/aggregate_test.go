package comment

import (
	"testing"
	"time"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/moment"
	"github.com/remolabs/remo/internal/store"
)

func at(sec int) time.Time {
	return time.Date(2025, 6, 15, 12, 0, sec, 0, time.UTC)
}

func TestMergeDeduplicatesFirstSeenWins(t *testing.T) {
	agg := NewAggregator(moment.NewStore("v1"))

	optimistic := []Comment{{ID: "c1", Text: "optimistic", TimestampSeconds: 10, CreatedAt: at(0), Origin: OriginLocal}}
	stale := []Comment{{ID: "c1", Text: "stale fetch", TimestampSeconds: 10, CreatedAt: at(0), Origin: OriginServer}}

	grouped := agg.Merge(optimistic, stale)

	var total int
	for _, bucket := range grouped {
		for _, c := range bucket {
			total++
			if c.Text != "optimistic" {
				t.Errorf("first-seen entry was clobbered: %q", c.Text)
			}
		}
	}
	if total != 1 {
		t.Errorf("expected exactly one c1 entry, got %d", total)
	}
}

func TestMergeSynthesizesMomentsForUnmatchedTimestamps(t *testing.T) {
	moments := moment.NewStore("v1")
	agg := NewAggregator(moments)

	grouped := agg.Merge([]Comment{{ID: "c1", Text: "hi", TimestampSeconds: 75, CreatedAt: at(0)}})

	bucket, ok := grouped["moment-v1-01-15"]
	if !ok {
		t.Fatalf("expected synthesized moment bucket, got %v", grouped)
	}
	if bucket[0].MomentID != "moment-v1-01-15" {
		t.Errorf("comment momentID = %q", bucket[0].MomentID)
	}
	if moments.Len() != 1 {
		t.Errorf("expected one synthesized moment, got %d", moments.Len())
	}
}

func TestMergeGroupsByExistingMoment(t *testing.T) {
	moments := moment.NewStore("v1")
	m := moments.Add("server-m1", 30, "Kickoff")
	agg := NewAggregator(moments)

	grouped := agg.Merge([]Comment{{ID: "c1", TimestampSeconds: 30, CreatedAt: at(0)}})

	if _, ok := grouped[m.ID]; !ok {
		t.Errorf("expected grouping under existing moment %q, got %v", m.ID, grouped)
	}
	if moments.Len() != 1 {
		t.Errorf("no new moment should be synthesized, have %d", moments.Len())
	}
}

func TestBucketsSortedBySecondsThenCreatedAt(t *testing.T) {
	agg := NewAggregator(moment.NewStore("v1"))

	grouped := agg.Merge([]Comment{
		{ID: "b", TimestampSeconds: 10, CreatedAt: at(30)},
		{ID: "a", TimestampSeconds: 10, CreatedAt: at(5)},
	})

	bucket := grouped["moment-v1-00-10"]
	if len(bucket) != 2 || bucket[0].ID != "a" || bucket[1].ID != "b" {
		t.Errorf("unexpected bucket order: %+v", bucket)
	}
}

func TestFlattenOrdersAcrossBuckets(t *testing.T) {
	agg := NewAggregator(moment.NewStore("v1"))
	grouped := agg.Merge([]Comment{
		{ID: "late", TimestampSeconds: 90, CreatedAt: at(0)},
		{ID: "early", TimestampSeconds: 5, CreatedAt: at(0)},
		{ID: "mid", TimestampSeconds: 40, CreatedAt: at(0)},
	})

	flat := Flatten(grouped)
	if len(flat) != 3 || flat[0].ID != "early" || flat[1].ID != "mid" || flat[2].ID != "late" {
		t.Errorf("unexpected flatten order: %+v", flat)
	}
}

func TestFromServerRecordNormalization(t *testing.T) {
	owner := "u1"
	c := FromServerRecord(api.CommentRecord{
		ID:               "c1",
		Body:             "Nice!",
		AuthorName:       "Sam",
		AuthorID:         &owner,
		TimestampSeconds: 75.9,
		CreatedAt:        "2025-06-15T12:00:00",
	})

	if c.TimestampSeconds != 75 {
		t.Errorf("fractional seconds must truncate, got %d", c.TimestampSeconds)
	}
	if c.Text != "Nice!" || c.AuthorDisplayName != "Sam" || c.AuthorID != "u1" {
		t.Errorf("unexpected normalization: %+v", c)
	}
	if c.Origin != OriginServer {
		t.Errorf("origin = %q", c.Origin)
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected created_at without offset to parse")
	}
}

func TestFromServerRecordGuestHasEmptyAuthorID(t *testing.T) {
	c := FromServerRecord(api.CommentRecord{ID: "c1", AuthorID: nil})
	if c.AuthorID != "" {
		t.Errorf("guest author id = %q, want empty", c.AuthorID)
	}
}

func TestFromStoredRecordNormalization(t *testing.T) {
	c := FromStoredRecord(store.StoredComment{
		ID:               "local-c1",
		TimestampSeconds: 75,
		TimestampLabel:   "01:15",
		Text:             "Nice!",
		DisplayName:      "Sam",
		CreatedAtISO:     "2025-06-15T12:00:00Z",
	})

	if c.Origin != OriginLocal {
		t.Errorf("origin = %q", c.Origin)
	}
	if c.AuthorDisplayName != "Sam" || c.Text != "Nice!" || c.TimestampSeconds != 75 {
		t.Errorf("unexpected normalization: %+v", c)
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected RFC3339 created_at to parse")
	}
}
