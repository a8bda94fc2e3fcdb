// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite results database.
	DBPath string `koanf:"db_path"`

	// DefaultEventsCount is the best-of-N applied when a ranking query does
	// not say how many events count.
	DefaultEventsCount int `koanf:"default_events_count"`

	// MaxEventsCount caps GET /ranking?events.
	MaxEventsCount int `koanf:"max_events_count"`

	// QueueSize bounds the in-memory feed queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the feed deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Cups lists the cups accepted by ranking queries.
	Cups []string `koanf:"cups"`

	// Clubs lists canonical club names used to normalize feed spellings.
	Clubs []string `koanf:"clubs"`

	// OverridesPath locates the optional age class overrides YAML file.
	OverridesPath string `koanf:"overrides_path"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DBPath:             "ovcup.db",
		DefaultEventsCount: 4,
		MaxEventsCount:     20,
		QueueSize:          1024,
		WorkerCount:        2,
		DedupeSize:         1024,
		Cups:               []string{"city-cup", "forest-cup", "kampioen"},
		Clubs: []string{
			"Antwerp Orienteers",
			"Borasca",
			"hamok",
			"K.O.L.",
			"Omega",
			"Trol",
		},
	}
}
