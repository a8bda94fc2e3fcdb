package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoekx/ovcup/internal/seedfeed"
)

// Default configuration constants.
const (
	defaultNumEvents       = 12
	defaultRunnersPerClass = 15
	defaultWorkers         = 4
	defaultTimeout         = 30 * time.Second
	defaultSeedTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		cup       = flag.String("cup", "forest-cup", "Cup to submit feeds for")
		season    = flag.Int("season", time.Now().Year(), "Season year to submit feeds for")
		numEvents = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		runners   = flag.Int("runners", defaultRunnersPerClass, "Number of runners per age class")
		workers   = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputDir = flag.String("output", "", "Directory for generated feed files (default: feeds are not saved)")
		logFile   = flag.String("log", "", "Log file for seeding output (default: seed_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedfeed.ShowHelp()
		return
	}

	if err := seedfeed.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	config := &seedfeed.Config{
		BaseURL:         *baseURL,
		Cup:             *cup,
		Season:          *season,
		NumEvents:       *numEvents,
		RunnersPerClass: *runners,
		Workers:         *workers,
		Timeout:         *timeout,
		OutputDir:       *outputDir,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	if err := seedfeed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
