package predict

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/cadence/internal/cluster"
	"github.com/julianstephens/cadence/internal/constants"
	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// EventSource supplies a category's events recorded in [since, until].
type EventSource interface {
	QueryEvents(ctx context.Context, categoryID string, since, until time.Time) ([]models.Event, error)
}

// State distinguishes "nothing to predict yet" from a ready prediction.
type State int

const (
	// StateUnavailable means no value was ever computed for the category.
	StateUnavailable State = iota
	// StateInsufficientData means the window was read but yields no prediction.
	StateInsufficientData
	// StateReady means Prediction holds the next expected occurrence.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInsufficientData:
		return "insufficient_data"
	case StateReady:
		return "ready"
	default:
		return "unavailable"
	}
}

// Result is what readers of the prediction surface receive.
type Result struct {
	CategoryID string
	State      State
	Prediction models.Prediction
	Clusters   []models.Cluster
	ComputedAt time.Time
	// Stale is set when a recompute failed and the result is the last good value.
	Stale bool
}

// Config carries the knobs a Service recomputes with.
type Config struct {
	Retention   time.Duration
	Location    *time.Location
	Clustering  cluster.Config
	Parallelism int
}

// ConfigFromSettings derives a Config from persisted settings.
func ConfigFromSettings(settings models.Settings) (Config, error) {
	models.ApplyDefaultSettings(&settings)
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Retention:   settings.Retention(),
		Location:    loc,
		Clustering:  cluster.ConfigFromSettings(settings),
		Parallelism: constants.SweepParallelism,
	}, nil
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache injects a shared cache.
func WithCache(c *Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithStrategy replaces the clustering strategy.
func WithStrategy(strategy cluster.Strategy) Option {
	return func(s *Service) {
		s.strategyOpts = append(s.strategyOpts, cluster.WithStrategy(strategy))
	}
}

// Service is the prediction surface: it reads event windows, extracts
// clusters, predicts, and caches the outcome per category.
type Service struct {
	source       EventSource
	cfg          Config
	extractor    *cluster.Extractor
	cache        *Cache
	now          func() time.Time
	flights      singleflight.Group
	strategyOpts []cluster.Option
}

// NewService creates a Service over source.
func NewService(source EventSource, cfg Config, opts ...Option) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	s := &Service{
		source: source,
		cfg:    cfg,
		cache:  NewCache(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = cluster.NewExtractor(cfg.Clustering, cfg.Location, s.strategyOpts...)
	return s
}

// Location returns the timezone predictions are computed in.
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Retention returns how far back event windows reach.
func (s *Service) Retention() time.Duration {
	return s.cfg.Retention
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Invalidate marks a category's cached prediction stale. The event-recording
// path calls it after a successful insert.
func (s *Service) Invalidate(categoryID string) {
	s.cache.Invalidate(categoryID)
	logger.Debug("Prediction invalidated", "category", categoryID)
}

// Remove drops a category's cached prediction. Used when a category is deleted.
func (s *Service) Remove(categoryID string) {
	s.cache.Remove(categoryID)
	logger.Debug("Prediction removed", "category", categoryID)
}

// GetPrediction returns the category's current prediction, recomputing when
// the cached value is missing or stale. On failure the error is returned
// together with the last good value, marked Stale, when one exists.
func (s *Service) GetPrediction(ctx context.Context, categoryID string) (Result, error) {
	for attempt := 0; ; attempt++ {
		observed := s.cache.generation(categoryID)
		if snap, fresh := s.cache.Get(categoryID); fresh {
			return resultFrom(categoryID, snap, false), nil
		}

		var snap *Snapshot
		var err error
		if attempt < constants.RecomputeAttempts-1 {
			var v any
			v, err, _ = s.flights.Do(categoryID, func() (any, error) {
				return s.recompute(ctx, categoryID)
			})
			if err == nil {
				snap = v.(*Snapshot)
			}
		} else {
			// a private computation always starts after the observed invalidation
			snap, err = s.recompute(ctx, categoryID)
		}

		if err != nil {
			logger.Warn("Prediction recompute failed", "category", categoryID, "error", err)
			if prev, _ := s.cache.Get(categoryID); prev != nil {
				return resultFrom(categoryID, prev, true), err
			}
			return Result{CategoryID: categoryID}, err
		}
		if snap.Generation >= observed {
			return resultFrom(categoryID, snap, false), nil
		}
		logger.Debug("Shared recompute predates invalidation, retrying", "category", categoryID, "attempt", attempt+1)
	}
}

// Clusters returns the category's current clusters.
func (s *Service) Clusters(ctx context.Context, categoryID string) ([]models.Cluster, error) {
	res, err := s.GetPrediction(ctx, categoryID)
	return res.Clusters, err
}

// Peek returns the cached result without recomputing.
func (s *Service) Peek(categoryID string) (Result, bool) {
	snap, fresh := s.cache.Get(categoryID)
	if snap == nil {
		return Result{CategoryID: categoryID}, false
	}
	return resultFrom(categoryID, snap, !fresh), true
}

func (s *Service) recompute(ctx context.Context, categoryID string) (*Snapshot, error) {
	// the generation is read before the window so a concurrent invalidation
	// always leaves this result marked stale
	gen := s.cache.generation(categoryID)
	now := s.now()
	since := now.Add(-s.cfg.Retention)

	events, err := s.source.QueryEvents(ctx, categoryID, since, now)
	if err != nil {
		return nil, classifySourceError(categoryID, err)
	}
	if err := checkWindow(categoryID, events, since, now); err != nil {
		return nil, err
	}

	clusters := s.extractor.Extract(events)
	pred, ok := Predict(clusters, now, s.cfg.Location)
	if ok {
		pred.CategoryID = categoryID
	}

	snap := &Snapshot{
		Generation: gen,
		Clusters:   clusters,
		Prediction: pred,
		Available:  ok,
		ComputedAt: now,
	}
	if !s.cache.store(categoryID, snap) {
		logger.Debug("Discarded superseded prediction", "category", categoryID, "generation", gen)
	}
	logger.Debug("Prediction recomputed", "category", categoryID, "events", len(events), "clusters", len(clusters), "available", ok)
	return snap, nil
}

func classifySourceError(categoryID string, err error) error {
	switch {
	case errors.Is(err, cerrors.ErrInconsistentInput):
		return err
	case errors.Is(err, cerrors.ErrCategoryNotFound):
		return fmt.Errorf("%w: category %s has no event source: %w", cerrors.ErrInconsistentInput, categoryID, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: querying events for %s: %w", cerrors.ErrSourceUnavailable, categoryID, err)
	}
}

// checkWindow rejects windows that break the [since, now] contract or mix categories.
func checkWindow(categoryID string, events []models.Event, since, now time.Time) error {
	for _, ev := range events {
		if ev.CategoryID != categoryID {
			return fmt.Errorf("%w: event %s belongs to category %s, not %s", cerrors.ErrInconsistentInput, ev.ID, ev.CategoryID, categoryID)
		}
		if ev.OccurredAt.Before(since) || ev.OccurredAt.After(now) {
			return fmt.Errorf("%w: event %s at %s is outside [%s, %s]", cerrors.ErrInconsistentInput,
				ev.ID, ev.OccurredAt.Format(time.RFC3339), since.Format(time.RFC3339), now.Format(time.RFC3339))
		}
	}
	return nil
}

func resultFrom(categoryID string, snap *Snapshot, stale bool) Result {
	res := Result{
		CategoryID: categoryID,
		State:      StateInsufficientData,
		Clusters:   snap.Clusters,
		ComputedAt: snap.ComputedAt,
		Stale:      stale,
	}
	if snap.Available {
		res.State = StateReady
		res.Prediction = snap.Prediction
	}
	return res
}

// SweepReport summarises one sweep.
type SweepReport struct {
	Ready        int
	Insufficient int
	Failed       int
	Removed      int
}

// RunSweep recomputes every listed category, bounded by the configured
// parallelism, and drops cached entries for categories not listed. Failures
// for individual categories do not stop the sweep; they are joined into the
// returned error.
func (s *Service) RunSweep(ctx context.Context, categoryIDs []string) (SweepReport, error) {
	var report SweepReport

	keep := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		keep[id] = struct{}{}
	}
	for _, id := range s.cache.Keys() {
		if _, ok := keep[id]; !ok {
			s.cache.Remove(id)
			report.Removed++
		}
	}

	ids := make([]string, 0, len(keep))
	for id := range keep {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s.cache.Invalidate(id)
			res, err := s.GetPrediction(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				errs = append(errs, fmt.Errorf("category %s: %w", id, err))
			case res.State == StateReady:
				report.Ready++
			default:
				report.Insufficient++
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	logger.Info("Prediction sweep finished",
		"categories", len(ids), "ready", report.Ready, "insufficient", report.Insufficient,
		"failed", report.Failed, "removed", report.Removed)
	return report, errors.Join(errs...)
}
