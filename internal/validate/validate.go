package validate

import "fmt"

// Text field length limits, the single source of truth for the core and
// the UI layer.
const (
	MaxCommentBodyLength = 5000
	MaxDisplayNameLength = 200
	MaxTitleLength       = 500
	MaxMediaURLLength    = 2000
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func CommentBody(s string) string { return checkLen(s, MaxCommentBodyLength, "comment") }
func DisplayName(s string) string { return checkLen(s, MaxDisplayNameLength, "display name") }
func Title(s string) string       { return checkLen(s, MaxTitleLength, "title") }
func MediaURL(s string) string    { return checkLen(s, MaxMediaURLLength, "media URL") }

// FieldLimits returns a map of field names to max lengths for the
// /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"commentBody": MaxCommentBodyLength,
		"displayName": MaxDisplayNameLength,
		"title":       MaxTitleLength,
		"mediaUrl":    MaxMediaURLLength,
	}
}
