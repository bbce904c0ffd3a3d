package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientEntries signals that fewer than the minimum number of
	// accessible entries remained for a hierarchical summary.
	ErrInsufficientEntries = errors.New("not enough accessible entries")
)
