package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/jhoekx/ovcup/internal/adapters/repository/migrations"
	"github.com/jhoekx/ovcup/internal/domain/model"
	"github.com/jhoekx/ovcup/internal/domain/scoring"
	"github.com/jhoekx/ovcup/pkg/metrics"
)

// dateLayout stores event dates as sortable text.
const dateLayout = time.RFC3339

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB

	busyTimeout  time.Duration
	maxOpenConns int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens the database at path, applying pragmas and embedded migrations.
// Use "file::memory:?cache=shared" style paths for tests.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	s := &SQLiteStore{
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += fmt.Sprintf("_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)",
		s.busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReplaceEvent upserts the event row and clears its previous results, so a
// feed can be re-ingested without duplicating rows.
func (s *SQLiteStore) ReplaceEvent(ctx context.Context, ev model.Event) (int64, error) {
	defer trackQuery("replace_event")()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event (cup, season, name, location, date) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cup, season, name, date) DO UPDATE SET location = excluded.location`,
		ev.Cup, ev.Season, ev.Name, ev.Location, ev.Date.UTC().Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert event: %w", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM event WHERE cup = ? AND season = ? AND name = ? AND date = ?`,
		ev.Cup, ev.Season, ev.Name, ev.Date.UTC().Format(dateLayout),
	)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("find event id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM result WHERE event_id = ?`, id); err != nil {
		return 0, fmt.Errorf("clear event results: %w", err)
	}
	return id, nil
}

// UpsertRunner inserts a runner or refreshes the stored club.
func (s *SQLiteStore) UpsertRunner(ctx context.Context, name, club string) (int64, error) {
	defer trackQuery("upsert_runner")()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runner (name, club) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET club = excluded.club`,
		name, club,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert runner: %w", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM runner WHERE name = ?`, name)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("find runner id: %w", err)
	}
	return id, nil
}

// InsertResult stores one result row.
func (s *SQLiteStore) InsertResult(ctx context.Context, r Result) error {
	defer trackQuery("insert_result")()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO result (event_id, runner_id, category_name, age_class, position, seconds)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.EventID, r.RunnerID, r.CategoryName, r.AgeClass, r.Position, r.Seconds,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListEvents returns the events of a cup season ordered by date.
func (s *SQLiteStore) ListEvents(ctx context.Context, cup string, season int) ([]model.Event, error) {
	defer trackQuery("list_events")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cup, season, name, location, date
		FROM event WHERE cup = ? AND season = ? ORDER BY date ASC`,
		cup, season,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var date string
		if err := rows.Scan(&ev.ID, &ev.Cup, &ev.Season, &ev.Name, &ev.Location, &date); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse event date %q: %w", date, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListPerformances returns every performance of the cup season, ordered by
// runner name then event date. The caller decides which performances count;
// the query only scopes the cup season.
func (s *SQLiteStore) ListPerformances(ctx context.Context, cup string, season int) ([]scoring.Performance, error) {
	defer trackQuery("list_performances")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT runner.name, runner.club, event.id,
		       result.age_class, result.category_name, result.position, result.seconds
		FROM result
		JOIN runner ON result.runner_id = runner.id
		JOIN event ON result.event_id = event.id
		WHERE event.cup = ? AND event.season = ?
		ORDER BY runner.name ASC, event.date ASC`,
		cup, season,
	)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	defer rows.Close()

	var perfs []scoring.Performance
	for rows.Next() {
		var p scoring.Performance
		if err := rows.Scan(&p.Name, &p.Club, &p.EventID,
			&p.AgeClass, &p.CategoryName, &p.Position, &p.Seconds); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		perfs = append(perfs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	return perfs, nil
}

// ListAgeClasses returns the distinct age classes of a cup season, sorted.
func (s *SQLiteStore) ListAgeClasses(ctx context.Context, cup string, season int) ([]string, error) {
	defer trackQuery("list_age_classes")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT result.age_class
		FROM result JOIN event ON result.event_id = event.id
		WHERE event.cup = ? AND event.season = ?
		ORDER BY result.age_class ASC`,
		cup, season,
	)
	if err != nil {
		return nil, fmt.Errorf("list age classes: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("scan age class: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list age classes: %w", err)
	}
	return classes, nil
}

// Counts reports store totals for the stats endpoint.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	defer trackQuery("counts")()

	var c Counts
	row := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM event),
		       (SELECT COUNT(*) FROM runner),
		       (SELECT COUNT(*) FROM result)`)
	if err := row.Scan(&c.Events, &c.Runners, &c.Results); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counts{}, nil
		}
		return Counts{}, fmt.Errorf("count store rows: %w", err)
	}
	return c, nil
}

// trackQuery records the latency of one store query.
func trackQuery(query string) func() {
	start := time.Now()
	return func() {
		metrics.RecordStoreQueryLatency(query, float64(time.Since(start).Milliseconds()))
	}
}
