package comment

import (
	"time"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/store"
)

// The backend serializes created_at without an offset; local records carry
// RFC 3339. Both shapes normalize here so the core never sees either.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseCreatedAt(raw string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FromServerRecord normalizes a backend comment. The backend stores
// fractional seconds; the core's visibility key is whole seconds, so the
// value truncates toward zero.
func FromServerRecord(rec api.CommentRecord) Comment {
	var authorID string
	if rec.AuthorID != nil {
		authorID = *rec.AuthorID
	}
	return Comment{
		ID:                rec.ID,
		Text:              rec.Body,
		AuthorDisplayName: rec.AuthorName,
		AuthorID:          authorID,
		CreatedAt:         parseCreatedAt(rec.CreatedAt),
		TimestampSeconds:  int(rec.TimestampSeconds),
		Origin:            OriginServer,
	}
}

func FromServerRecords(recs []api.CommentRecord) []Comment {
	out := make([]Comment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromServerRecord(rec))
	}
	return out
}

// FromStoredRecord normalizes a locally persisted comment.
func FromStoredRecord(rec store.StoredComment) Comment {
	return Comment{
		ID:                rec.ID,
		Text:              rec.Text,
		AuthorDisplayName: rec.DisplayName,
		AuthorID:          rec.AuthorID,
		CreatedAt:         parseCreatedAt(rec.CreatedAtISO),
		TimestampSeconds:  rec.TimestampSeconds,
		Origin:            OriginLocal,
	}
}

func FromStoredRecords(recs []store.StoredComment) []Comment {
	out := make([]Comment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromStoredRecord(rec))
	}
	return out
}
