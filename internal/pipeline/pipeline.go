// Package pipeline sequences the extract, transform and load stages.
// Stages communicate only through on-disk artifacts, so each is
// idempotent and independently re-invocable given the same upstream
// artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/retail-etl/config"
	"github.com/ikkim/retail-etl/internal/app/repository"
	"github.com/ikkim/retail-etl/internal/app/service"
	"github.com/ikkim/retail-etl/internal/artifact"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/internal/fetch"
	"github.com/ikkim/retail-etl/pkg/logger"
)

const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Fetcher retrieves the raw cart and user collections.
type Fetcher interface {
	GetCarts(ctx context.Context) (*fetch.CartsPayload, error)
	GetUsers(ctx context.Context) (*fetch.UsersPayload, error)
}

// Uploader publishes exported analytics files to remote storage.
type Uploader interface {
	UploadFiles(ctx context.Context, paths []string) error
}

type Pipeline struct {
	fetcher    Fetcher
	store      *artifact.Store
	normalizer service.NormalizeService
	aggregator service.AggregateService
	sales      repository.SalesRepository
	analytics  repository.AnalyticsRepository
	uploader   Uploader
	metrics    *Metrics
	cfg        config.PipelineConfig
	now        func() time.Time
}

type Option func(*Pipeline)

// WithUploader attaches an optional analytics uploader.
func WithUploader(u Uploader) Option {
	return func(p *Pipeline) { p.uploader = u }
}

// WithClock overrides the reference clock used for synthetic order
// dates. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(
	fetcher Fetcher,
	store *artifact.Store,
	sales repository.SalesRepository,
	analytics repository.AnalyticsRepository,
	metrics *Metrics,
	cfg config.PipelineConfig,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		store:      store,
		normalizer: service.NewNormalizeService(),
		aggregator: service.NewAggregateService(),
		sales:      sales,
		analytics:  analytics,
		metrics:    metrics,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full extract, transform, load chain. A stage only
// starts after its predecessor succeeded.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	log := logger.Get().WithContext(map[string]interface{}{"run_id": runID})
	log.Info("Starting pipeline run")

	p.metrics.RunsTotal.Inc()

	for _, stage := range []string{StageExtract, StageTransform, StageLoad} {
		if err := p.runStage(ctx, stage); err != nil {
			p.metrics.RunsFailed.Inc()
			log.Error("Pipeline run failed", err, map[string]interface{}{
				"stage": stage,
			})
			return fmt.Errorf("stage %s: %w", stage, err)
		}
	}

	log.Info("Pipeline run completed")
	return nil
}

// RunStage executes one named stage with the orchestrator's retry
// policy. Invalid-input failures are not retried; transport and
// persistence failures are.
func (p *Pipeline) RunStage(ctx context.Context, stage string) error {
	return p.runStage(ctx, stage)
}

func (p *Pipeline) runStage(ctx context.Context, stage string) error {
	var fn func(context.Context) error
	switch stage {
	case StageExtract:
		fn = p.extract
	case StageTransform:
		fn = p.transform
	case StageLoad:
		fn = p.load
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}

	attempts := p.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := p.now()
		err = fn(ctx)
		p.metrics.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		if err == nil {
			return nil
		}

		p.metrics.StageFailures.WithLabelValues(stage).Inc()
		if !retryable(err) || attempt == attempts {
			return err
		}

		logger.Warn("Stage failed, retrying", map[string]interface{}{
			"stage":   stage,
			"attempt": attempt,
			"backoff": p.cfg.RetryBackoff.String(),
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.RetryBackoff):
		}
	}
	return err
}

// retryable reports whether a stage failure is worth retrying. Bad
// input data is deterministic and fails the run immediately.
func retryable(err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrMissingInput),
		errors.Is(err, apperrors.ErrTypeCoercion),
		errors.Is(err, apperrors.ErrDateParse):
		return false
	}
	return true
}

// extract fetches both collections, flattens them and persists the
// flat-row artifact.
func (p *Pipeline) extract(ctx context.Context) error {
	carts, err := p.fetcher.GetCarts(ctx)
	if err != nil {
		return err
	}
	users, err := p.fetcher.GetUsers(ctx)
	if err != nil {
		return err
	}

	flattener := service.NewFlattenService(p.now())
	rows, err := flattener.Flatten(carts.Carts, users.Users)
	if err != nil {
		return err
	}

	p.metrics.RowsFlattened.Add(float64(len(rows)))
	return p.store.SaveFlatRows(rows)
}

// transform normalizes the flat-row artifact, persists the normalized
// artifact and exports the analytics tables.
func (p *Pipeline) transform(ctx context.Context) error {
	flat, err := p.store.LoadFlatRows()
	if err != nil {
		return err
	}

	normalized, err := p.normalizer.Normalize(flat)
	if err != nil {
		return err
	}
	p.metrics.RowsDropped.Add(float64(len(flat) - len(normalized)))

	if err := p.store.SaveNormalizedRows(normalized); err != nil {
		return err
	}

	analytics, err := p.aggregator.Aggregate(normalized)
	if err != nil {
		return err
	}
	if err := p.store.ExportAnalytics(analytics); err != nil {
		return err
	}

	if p.uploader != nil {
		if err := p.uploader.UploadFiles(ctx, p.store.AnalyticsFiles()); err != nil {
			return err
		}
	}
	return nil
}

// load upserts the normalized artifact into the relational sink and
// replaces the analytics tables. Analytics are recomputed from the
// artifact so the stage depends on nothing but its upstream input.
func (p *Pipeline) load(ctx context.Context) error {
	normalized, err := p.store.LoadNormalizedRows()
	if err != nil {
		return err
	}

	if err := p.sales.UpsertRows(normalized); err != nil {
		return err
	}
	p.metrics.RowsLoaded.Add(float64(len(normalized)))

	analytics, err := p.aggregator.Aggregate(normalized)
	if err != nil {
		return err
	}
	return p.analytics.ReplaceAll(analytics)
}
