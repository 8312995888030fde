package comment

import (
	"sort"

	"github.com/remolabs/remo/internal/moment"
)

// Aggregator groups comments from multiple sources into per-moment
// buckets, deduplicated by comment id. It synthesizes moments for
// timestamps that have none, so grouping is total.
type Aggregator struct {
	moments *moment.Store
}

func NewAggregator(moments *moment.Store) *Aggregator {
	return &Aggregator{moments: moments}
}

// Merge applies the sources in order and returns momentID -> comments.
// A comment id already seen is skipped, so an optimistic local entry is
// never clobbered by a stale fetch of the same id. Buckets are sorted by
// (timestampSeconds, createdAt), stable.
func (a *Aggregator) Merge(sources ...[]Comment) map[string][]Comment {
	grouped := make(map[string][]Comment)
	seen := make(map[string]bool)

	for _, source := range sources {
		for _, c := range source {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true

			if c.MomentID == "" {
				c.MomentID = a.moments.GetOrCreate(c.TimestampSeconds).ID
			}
			grouped[c.MomentID] = append(grouped[c.MomentID], c)
		}
	}

	for id := range grouped {
		bucket := grouped[id]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].TimestampSeconds != bucket[j].TimestampSeconds {
				return bucket[i].TimestampSeconds < bucket[j].TimestampSeconds
			}
			return bucket[i].CreatedAt.Before(bucket[j].CreatedAt)
		})
	}

	return grouped
}

// Flatten returns every comment in the grouping as one slice ordered by
// (timestampSeconds, createdAt). The reveal engine consumes this form.
func Flatten(grouped map[string][]Comment) []Comment {
	var out []Comment
	for _, bucket := range grouped {
		out = append(out, bucket...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimestampSeconds != out[j].TimestampSeconds {
			return out[i].TimestampSeconds < out[j].TimestampSeconds
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
