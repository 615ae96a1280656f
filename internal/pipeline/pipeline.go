package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// FieldSource lists the fields to publish snapshots for.
type FieldSource interface {
	List() []domain.Field
}

// SnapshotBuilder assembles every bundle for one field over a date range.
type SnapshotBuilder interface {
	Build(ctx context.Context, field domain.Field, r domain.DateRange) (domain.Snapshot, error)
}

// SnapshotLoader writes a batch of snapshots to the destination.
type SnapshotLoader interface {
	LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error
}

// Options tunes the feed schedule. Zero values fall back to one minute,
// a seven day window and the real clock.
type Options struct {
	Interval   time.Duration
	WindowDays int
	Clock      clockwork.Clock
}

// Feed periodically publishes a snapshot of every catalog field over the
// trailing window ending today.
type Feed struct {
	fields     FieldSource
	builder    SnapshotBuilder
	loader     SnapshotLoader
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	interval   time.Duration
	windowDays int
	ready      atomic.Bool
}

// New creates a Feed with the given stages and observability.
func New(f FieldSource, b SnapshotBuilder, l SnapshotLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Feed {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Feed{
		fields:     f,
		builder:    b,
		loader:     l,
		logger:     logger,
		metrics:    metrics,
		clock:      opts.Clock,
		interval:   opts.Interval,
		windowDays: opts.WindowDays,
	}
}

// CheckReadiness returns nil once the feed has published at least one batch.
func (p *Feed) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("feed has not published any snapshots yet")
	}
	return nil
}

// Run publishes a batch immediately and then once per interval until the
// context is cancelled. A failed load is retried with exponential backoff
// instead of waiting for the next tick.
func (p *Feed) Run(ctx context.Context) error {
	p.logger.Info("feed started", "interval", p.interval, "window_days", p.windowDays)
	p.metrics.FeedRunning.Set(1)
	defer p.metrics.FeedRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if err := p.publishCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("feed stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("publish snapshots failed", "error", err, "retry_in", backoff)
			if !p.sleep(ctx, backoff) {
				p.logger.Info("feed stopping", "reason", ctx.Err())
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			p.logger.Info("feed stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// publishCycle builds a snapshot per field and loads the successes. Build
// failures are logged and skipped; only a load failure is returned.
func (p *Feed) publishCycle(ctx context.Context) error {
	start := p.clock.Now()
	window := domain.TrailingRange(domain.DateOf(start.UTC()), p.windowDays)

	fields := p.fields.List()
	batch := make([]domain.Snapshot, 0, len(fields))
	for _, f := range fields {
		snap, err := p.builder.Build(ctx, f, window)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("snapshot build failed, skipping field",
				"error", err,
				"field_id", f.ID,
				"start_date", window.Start,
				"end_date", window.End,
			)
			p.metrics.SnapshotBuildErrors.Inc()
			continue
		}
		batch = append(batch, snap)
	}

	if len(batch) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		return err
	}

	p.metrics.SnapshotsPublished.Add(float64(len(batch)))
	p.metrics.FeedCycleDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("snapshots published", "count", len(batch), "end_date", window.End)
	return nil
}

func (p *Feed) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}
