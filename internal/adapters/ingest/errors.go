package ingest

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrBadFeed   = errors.New("invalid result feed")
	ErrBadNumber = errors.New("invalid number in feed")
	ErrBadTime   = errors.New("invalid time in feed")
)
