// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	feedqueue "github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	workerpool "github.com/jhoekx/ovcup/internal/adapters/mq/worker"
	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	"github.com/jhoekx/ovcup/internal/domain/dedupe"
	"github.com/jhoekx/ovcup/internal/domain/model"
	"github.com/jhoekx/ovcup/internal/domain/scoring"
	"github.com/jhoekx/ovcup/internal/domain/standing"
	"github.com/jhoekx/ovcup/pkg/logger"
	"github.com/jhoekx/ovcup/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize  = 1024
	defaultDedupeSize = 1024
)

// Query identifies one requested cup standing.
type Query struct {
	Cup         string
	Season      int
	AgeClass    string
	EventsCount int
}

// Service wires the store, the ingestion pipeline and the standing engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	feedQueue  feedqueue.Queue
	ingestor   *ingest.Ingestor
	workerPool *workerpool.Pool
	scorer     *scoring.RelativeScorer

	// Configuration
	dbPath        string
	queueSize     int
	workerCount   int
	dedupeSize    int
	cups          []string
	clubs         []string
	overridesPath string

	// State
	started   bool
	ownsStore bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects an already opened store. The service will not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath sets the SQLite database file opened on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithQueueSize sets the capacity of the feed queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the feed deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCups sets the cups accepted by standing queries. An empty list accepts
// any cup.
func WithCups(cups []string) Option {
	return func(s *Service) {
		s.cups = cups
	}
}

// WithClubs sets the canonical club names used to normalize feeds.
func WithClubs(clubs []string) Option {
	return func(s *Service) {
		s.clubs = clubs
	}
}

// WithOverridesPath sets the age class overrides file loaded on Start.
func WithOverridesPath(path string) Option {
	return func(s *Service) {
		s.overridesPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and starts the ingestion pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting standings service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	overrides, err := ingest.LoadOverrides(s.overridesPath)
	if err != nil {
		return fmt.Errorf("load age class overrides: %w", err)
	}

	s.scorer = scoring.NewRelativeScorer()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.ingestor = ingest.New(s.store,
		ingest.WithClubs(s.clubs),
		ingest.WithOverrides(overrides),
	)
	s.feedQueue = feedqueue.NewInMemoryQueue(
		feedqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.feedQueue, s.ingestor)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("overrides", len(overrides)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping standings service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if s.feedQueue != nil {
		_ = s.feedQueue.Close()
	}
	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "standings service stopped")
}

// SeenAndRecord atomically checks if a feed key was seen and records it if
// not. Returns true if the feed was already submitted. On a service that was
// never started nothing is recorded.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	if s.deduper == nil {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordFeedDuplicate()
	}
	return seen
}

// Unrecord removes a feed key from the seen set, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, key string) {
	if s.deduper == nil {
		return
	}
	s.deduper.Unrecord(ctx, key)
}

// Size returns the number of feed keys currently recorded.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a feed for asynchronous ingestion. Returns false when the
// queue is full or closed, or the service was never started; the caller
// should surface backpressure.
func (s *Service) Enqueue(ctx context.Context, j feedqueue.Job) bool {
	if s.feedQueue == nil {
		return false
	}
	ok := s.feedQueue.Enqueue(ctx, j)
	if ok {
		metrics.UpdateQueueSize(s.feedQueue.Len(ctx))
	}
	return ok
}

// Standing computes the ranked standing for one cup, season and age class.
func (s *Service) Standing(ctx context.Context, q Query) (model.Standing, error) {
	if err := s.validateQuery(q); err != nil {
		return nil, err
	}
	if s.store == nil || s.scorer == nil {
		return nil, ErrNotStarted
	}

	start := time.Now()
	defer func() {
		metrics.RecordStandingLatency(float64(time.Since(start).Milliseconds()))
	}()

	events, err := s.store.ListEvents(ctx, q.Cup, q.Season)
	if err != nil {
		metrics.RecordStandingError()
		return nil, fmt.Errorf("load events: %w", err)
	}

	perfs, err := s.store.ListPerformances(ctx, q.Cup, q.Season)
	if err != nil {
		metrics.RecordStandingError()
		return nil, fmt.Errorf("load performances: %w", err)
	}

	entries := assembleEntries(s.scorer.Score(perfs), events, q.AgeClass)

	result, err := standing.Build(standing.Input{
		EventsCount: q.EventsCount,
		Entries:     entries,
	})
	if err != nil {
		metrics.RecordStandingError()
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return result, nil
}

// validateQuery rejects malformed queries before touching the store.
func (s *Service) validateQuery(q Query) error {
	if q.Cup == "" {
		return fmt.Errorf("%w: missing cup", ErrInvalidQuery)
	}
	if len(s.cups) > 0 && !contains(s.cups, q.Cup) {
		return fmt.Errorf("%w: unknown cup %q", ErrInvalidQuery, q.Cup)
	}
	if q.Season <= 0 {
		return fmt.Errorf("%w: season %d", ErrInvalidQuery, q.Season)
	}
	if q.AgeClass == "" {
		return fmt.Errorf("%w: missing age class", ErrInvalidQuery)
	}
	if q.EventsCount < 0 {
		return fmt.Errorf("%w: events count %d", ErrInvalidQuery, q.EventsCount)
	}
	return nil
}

// assembleEntries turns scored performances into per-athlete rows aligned on
// the season event order. A runner belongs to the age class of their most
// recent performance; runners whose latest class differs are left out. When
// a runner ran the same event more than once only the best score counts, and
// the club shown is the one from their latest performance.
func assembleEntries(perfs []scoring.Performance, events []model.Event, ageClass string) []model.RawEntry {
	var entries []model.RawEntry

	// Performances arrive ordered by runner name, then event date.
	for start := 0; start < len(perfs); {
		end := start
		for end < len(perfs) && perfs[end].Name == perfs[start].Name {
			end++
		}
		runner := perfs[start:end]
		latest := runner[len(runner)-1]
		if latest.AgeClass == ageClass {
			entries = append(entries, model.RawEntry{
				Name:    latest.Name,
				Club:    latest.Club,
				Results: alignResults(runner, events),
			})
		}
		start = end
	}

	return entries
}

// alignResults maps one runner's performances onto the shared event order.
// Events the runner skipped become zero results.
func alignResults(runner []scoring.Performance, events []model.Event) []model.EventResult {
	best := make(map[int64]scoring.Performance, len(runner))
	for _, p := range runner {
		if current, ok := best[p.EventID]; !ok || p.Score > current.Score {
			best[p.EventID] = p
		}
	}

	results := make([]model.EventResult, len(events))
	for i, ev := range events {
		results[i] = model.EventResult{EventID: ev.ID}
		if p, ok := best[ev.ID]; ok {
			results[i].Score = p.Score
			results[i].Place = p.Position
		}
	}
	return results
}

// AgeClasses returns the age classes present in a cup season.
func (s *Service) AgeClasses(ctx context.Context, cup string, season int) ([]string, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.ListAgeClasses(ctx, cup, season)
}

// Events returns the events of a cup season ordered by date.
func (s *Service) Events(ctx context.Context, cup string, season int) ([]model.Event, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.ListEvents(ctx, cup, season)
}

// Cups returns the cups accepted by standing queries.
func (s *Service) Cups() []string {
	return s.cups
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}

	if !s.started {
		return stats
	}

	queueLen := s.feedQueue.Len(ctx)
	stats["workerCount"] = s.workerPool.Size()
	stats["queueLength"] = queueLen
	stats["dedupeEntries"] = s.deduper.Size()

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateWorkerCount(s.workerPool.Size())

	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to count store rows", logger.Error(err))
		return stats
	}
	stats["events"] = counts.Events
	stats["runners"] = counts.Runners
	stats["results"] = counts.Results
	metrics.UpdateStoredCounts(counts.Events, counts.Runners, counts.Results)

	return stats
}

// contains reports whether list holds value.
func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
