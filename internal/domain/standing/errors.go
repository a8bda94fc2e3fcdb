package standing

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrNegativeEventsCount = errors.New("events count must not be negative")
)
