package repositories

import "errors"

var (
	// ErrNotFound is returned when no row matches, including rows owned by
	// another user.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("repository: duplicate")
)
