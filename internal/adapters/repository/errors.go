package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrEmptyPath = errors.New("database path must not be empty")
	ErrNotFound  = errors.New("not found")
)
