package seedfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	"github.com/jhoekx/ovcup/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	feedFilePermission  = 0600
)

// processingWait gives the worker pool time to drain the queue before the
// standings are verified.
const processingWait = 2 * time.Second

// Run executes the complete feed seeding flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting feed seeding",
		logger.String("baseURL", config.BaseURL),
		logger.String("cup", config.Cup),
		logger.Int("season", config.Season),
		logger.Int("events", config.NumEvents),
		logger.Int("runnersPerClass", config.RunnersPerClass),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	feeds, err := generateFeeds(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("feed generation failed: %w", err)
	}

	if err := submitFeeds(ctx, config, feeds, stats); err != nil {
		return fmt.Errorf("feed submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for feeds to be processed")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(processingWait):
	}

	if err := verifyStandings(ctx, config, stats); err != nil {
		return fmt.Errorf("standing verification failed: %w", err)
	}

	if config.OutputDir != "" {
		if err := saveFeedsToDir(ctx, config, feeds); err != nil {
			logger.Get().Warn(ctx, "failed to save feeds", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(config.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveFeedsToDir writes every generated feed to its own JSON file so a run
// can be replayed later through cmd/load.
func saveFeedsToDir(ctx context.Context, config *Config, feeds []ingest.Feed) error {
	if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, feed := range feeds {
		data, err := json.MarshalIndent(feed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal feed %d: %w", i, err)
		}

		filename := filepath.Join(config.OutputDir, fmt.Sprintf("feed_%03d.json", i+1))
		if err := os.WriteFile(filename, data, feedFilePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}

	logger.Get().Info(ctx, "feeds saved",
		logger.String("dir", config.OutputDir),
		logger.Int("count", len(feeds)),
	)
	return nil
}

// displayFinalStats prints the final seeding statistics.
func displayFinalStats(stats *Stats) {
	var successRate float64
	if stats.FeedsSubmitted > 0 {
		successRate = float64(stats.FeedsSuccessful) / float64(stats.FeedsSubmitted) * 100
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("feedsGenerated", stats.FeedsGenerated),
		logger.Int("feedsSubmitted", stats.FeedsSubmitted),
		logger.Int("feedsSuccessful", stats.FeedsSuccessful),
		logger.Int("feedsDuplicate", stats.FeedsDuplicate),
		logger.Int("feedsFailed", stats.FeedsFailed),
		logger.Int("standingsVerified", stats.StandingsVerified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
	)
}
