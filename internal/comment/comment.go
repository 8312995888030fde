// Package comment defines the canonical comment shape and the aggregator
// that merges comments from every origin into per-moment buckets.
package comment

import "time"

// Origin identifies where a comment came from. Id namespaces are disjoint
// by construction: server ids are backend UUIDs, local ids carry a
// "local-" prefix and seeded ids a "seed-" prefix.
type Origin string

const (
	OriginServer Origin = "server"
	OriginLocal  Origin = "local"
	OriginSeeded Origin = "seeded"
)

// Comment is the one canonical shape every origin normalizes into.
// TimestampSeconds is the authoritative ordering and visibility key; it is
// carried explicitly even though the owning moment encodes the same
// timestamp, because the moment can be synthetic.
type Comment struct {
	ID                string
	MomentID          string
	Text              string
	AuthorDisplayName string
	// AuthorID is empty for guests, who are ineligible to delete.
	AuthorID         string
	CreatedAt        time.Time
	TimestampSeconds int
	Origin           Origin
}
