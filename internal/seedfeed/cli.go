package seedfeed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jhoekx/ovcup/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed results tool.
func ShowHelp() {
	os.Stdout.WriteString(`Ovcup Seed Results Tool
=======================

Generates a synthetic season of orienteering result feeds, submits them to a
running standings service and verifies the resulting class standings.

Usage:
  go run cmd/seed-results/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -cup string
        Cup to submit feeds for (default "forest-cup")
  -season int
        Season year to submit feeds for (default: current year)
  -events int
        Number of events to generate and submit (default 12)
  -runners int
        Number of runners per age class (default 15)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Directory for generated feed files (default: none, feeds are not saved)
  -log string
        Log file for seeding output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-results/main.go

  # Seed a bigger season into a custom service
  go run cmd/seed-results/main.go -events 20 -runners 40 -url http://localhost:8080

  # Keep the generated feeds for later replay with cmd/load
  go run cmd/seed-results/main.go -output ./feeds
`)
}
