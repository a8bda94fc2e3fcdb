package service

import (
	"errors"
)

// Sentinel kinds for service errors.
var (
	// ErrInvalidQuery marks a standing query rejected before touching the store.
	ErrInvalidQuery = errors.New("invalid standing query")

	// ErrNotStarted marks calls on a service that was never started.
	ErrNotStarted = errors.New("service not started")
)
