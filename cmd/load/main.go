// Command load ingests result feed files straight into the standings
// database, bypassing the HTTP API. Useful for importing a season from
// archived feeds.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	"github.com/jhoekx/ovcup/internal/config"
	"github.com/jhoekx/ovcup/pkg/logger"
)

func main() {
	var (
		cup       = flag.String("cup", "", "Cup the feeds belong to")
		season    = flag.Int("season", 0, "Season year the feeds belong to")
		dbPath    = flag.String("db", "", "SQLite database file (default: configured db_path)")
		overrides = flag.String("overrides", "", "Age class overrides file (default: configured overrides_path)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().Named("load")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = cfg.DBPath
	}
	if *overrides == "" {
		*overrides = cfg.OverridesPath
	}

	if *cup == "" || *season <= 0 || flag.NArg() == 0 {
		os.Stderr.WriteString("usage: load -cup <cup> -season <year> [-db file] [-overrides file] feed.json...\n")
		os.Exit(2)
	}

	store, err := repository.Open(ctx, *dbPath)
	if err != nil {
		log.Error(ctx, "failed to open database", logger.String("db", *dbPath), logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	classOverrides, err := ingest.LoadOverrides(*overrides)
	if err != nil {
		log.Error(ctx, "failed to load overrides", logger.String("path", *overrides), logger.Error(err))
		os.Exit(1)
	}

	ingestor := ingest.New(store,
		ingest.WithClubs(cfg.Clubs),
		ingest.WithOverrides(classOverrides),
		ingest.WithLogger(log),
	)

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error(ctx, "failed to read feed file", logger.String("file", path), logger.Error(err))
			os.Exit(1)
		}

		feed, err := ingest.ParseFeed(data)
		if err != nil {
			log.Error(ctx, "failed to parse feed", logger.String("file", path), logger.Error(err))
			os.Exit(1)
		}

		summary, err := ingestor.Ingest(ctx, *cup, *season, feed)
		if err != nil {
			log.Error(ctx, "failed to ingest feed", logger.String("file", path), logger.Error(err))
			os.Exit(1)
		}

		log.Info(ctx, "feed loaded",
			logger.String("file", path),
			logger.String("event", feed.Name),
			logger.Int64("eventId", summary.EventID),
			logger.Int("stored", summary.Stored),
			logger.Int("skipped", summary.Skipped),
		)
	}
}
