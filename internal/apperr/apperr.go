// Package apperr defines the error taxonomy shared by the sync core and
// its adapters. Callers classify failures with errors.Is; the sentinels
// stay wrapped so the original cause is preserved.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkUnavailable covers transport failures and unexpected
	// upstream responses. Retrying the triggering action is always safe.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrNotAuthorized is returned when an action requires an identity the
	// caller does not have, e.g. deleting someone else's comment.
	ErrNotAuthorized = errors.New("not authorized")

	ErrNotFound = errors.New("not found")

	// ErrValidation rejects input before any I/O happens.
	ErrValidation = errors.New("invalid input")

	ErrRateLimited = errors.New("rate limited")
)

func Validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

func NotAuthorized(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrNotAuthorized)
}

func Network(err error) error {
	return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
}
