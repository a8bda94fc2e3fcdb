package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	"github.com/jhoekx/ovcup/internal/domain/model"
	"github.com/jhoekx/ovcup/pkg/logger"
	"github.com/jhoekx/ovcup/pkg/metrics"
)

// statusOK marks a finisher line that counts. Everything else (DNS, DNF,
// MP, DSQ) is skipped silently.
const statusOK = "OK"

// Job is one feed submission waiting for asynchronous ingestion.
type Job struct {
	Cup    string
	Season int
	Feed   Feed
}

// Option applies a configuration option to the Ingestor.
type Option func(*Ingestor)

// WithClubs sets the club list used to normalize club spellings. A result
// club matching one of these by case-insensitive prefix is replaced by the
// canonical name.
func WithClubs(clubs []string) Option {
	return func(i *Ingestor) {
		i.clubs = clubs
	}
}

// WithOverrides sets the age class overrides applied during ingestion.
func WithOverrides(overrides []AgeClassOverride) Option {
	return func(i *Ingestor) {
		i.overrides = overrides
	}
}

// WithLogger sets a custom logger for the ingestor.
func WithLogger(log logger.Logger) Option {
	return func(i *Ingestor) {
		if log != nil {
			i.logger = log
		}
	}
}

// Summary reports what one feed ingestion stored and skipped.
type Summary struct {
	EventID int64 `json:"eventId"`
	Stored  int   `json:"stored"`
	Skipped int   `json:"skipped"`
}

// Ingestor validates feeds and writes their results through the store.
type Ingestor struct {
	store     repository.Store
	clubs     []string
	overrides []AgeClassOverride
	validate  *validator.Validate
	logger    logger.Logger
}

// New creates an ingestor writing to store.
func New(store repository.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest stores one feed for the given cup season. Re-ingesting the same
// feed replaces the event's results instead of duplicating them.
func (i *Ingestor) Ingest(ctx context.Context, cup string, season int, feed Feed) (Summary, error) {
	if err := i.validate.Struct(feed); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrBadFeed, err)
	}

	eventID, err := i.store.ReplaceEvent(ctx, model.Event{
		Cup:      cup,
		Season:   season,
		Name:     feed.Name,
		Location: feed.Location,
		Date:     feed.Date,
	})
	if err != nil {
		metrics.RecordIngestError()
		return Summary{}, fmt.Errorf("store event: %w", err)
	}

	summary := Summary{EventID: eventID}

	// Map iteration order is random; sort course names so re-ingesting a
	// feed touches the store in the same order every time.
	courses := make([]string, 0, len(feed.Categories))
	for name := range feed.Categories {
		courses = append(courses, name)
	}
	sort.Strings(courses)

	for _, course := range courses {
		category := feed.Categories[course]
		for _, result := range category.Results {
			if result.Status != statusOK || result.Position == 0 || result.Time == 0 {
				summary.Skipped++
				continue
			}
			ageClass := overrideAgeClass(i.overrides, cup, season, result.Name, result.AgeClass)
			if ageClass == "" {
				i.logger.Warn(ctx, "skipping result without age class",
					logger.String("name", result.Name),
					logger.String("course", category.Name),
				)
				summary.Skipped++
				continue
			}

			runnerID, err := i.store.UpsertRunner(ctx, result.Name, i.normalizeClub(result.Club))
			if err != nil {
				metrics.RecordIngestError()
				return summary, fmt.Errorf("store runner %q: %w", result.Name, err)
			}
			if err := i.store.InsertResult(ctx, repository.Result{
				EventID:      eventID,
				RunnerID:     runnerID,
				CategoryName: category.Name,
				AgeClass:     ageClass,
				Position:     int(result.Position),
				Seconds:      result.Time.Seconds(),
			}); err != nil {
				metrics.RecordIngestError()
				return summary, fmt.Errorf("store result for %q: %w", result.Name, err)
			}
			summary.Stored++
		}
	}

	metrics.RecordFeedIngested()
	i.logger.Info(ctx, "feed ingested",
		logger.String("event", feed.Name),
		logger.Int("stored", summary.Stored),
		logger.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// normalizeClub maps club spellings onto the configured canonical names.
func (i *Ingestor) normalizeClub(club string) string {
	for _, canonical := range i.clubs {
		if strings.HasPrefix(strings.ToLower(club), strings.ToLower(canonical)) {
			return canonical
		}
	}
	return club
}
