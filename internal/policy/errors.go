package policy

import "errors"

var (
	// ErrUnauthorized means no authenticated principal was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the principal is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned both for genuinely absent records and for
	// records hidden from the principal, so existence is not leaked.
	ErrNotFound = errors.New("not found")
)
