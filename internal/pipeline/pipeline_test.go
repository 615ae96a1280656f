package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/field-telemetry-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type staticFields []domain.Field

func (s staticFields) List() []domain.Field { return s }

type mockBuilder struct {
	mu     sync.Mutex
	fail   map[string]error
	ranges []domain.DateRange
}

func (m *mockBuilder) Build(_ context.Context, f domain.Field, r domain.DateRange) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges = append(m.ranges, r)
	if err := m.fail[f.ID]; err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Field: f, Range: r}, nil
}

type mockLoader struct {
	errs    []error // returned in order, then nil
	batches chan []domain.Snapshot
	calls   int
}

func newMockLoader(errs ...error) *mockLoader {
	return &mockLoader{errs: errs, batches: make(chan []domain.Snapshot, 10)}
}

func (m *mockLoader) LoadBatch(_ context.Context, batch []domain.Snapshot) error {
	m.calls++
	if m.calls <= len(m.errs) {
		return m.errs[m.calls-1]
	}
	m.batches <- batch
	return nil
}

var testFields = staticFields{
	{ID: "1", Name: "Farm 1", Location: "DIT Pune"},
	{ID: "2", Name: "Baramati", Location: "Baramati"},
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func startFeed(t *testing.T, f *pipeline.Feed) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- f.Run(ctx) }()
	t.Cleanup(cancelFn)
	return cancelFn, ch
}

func receive(t *testing.T, ch <-chan []domain.Snapshot) []domain.Snapshot {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a batch")
		return nil
	}
}

type blocker interface {
	BlockUntilContext(ctx context.Context, n int) error
}

func blockUntil(t *testing.T, c blocker, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.BlockUntilContext(ctx, n))
}

// --- tests ---

func TestFeed_PublishesImmediatelyAndOnTick(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC))
	builder := &mockBuilder{}
	loader := newMockLoader()
	metrics := newTestMetrics()

	feed := pipeline.New(testFields, builder, loader, slog.Default(), metrics,
		pipeline.Options{Interval: time.Minute, WindowDays: 5, Clock: fakeClock})
	require.Error(t, feed.CheckReadiness(context.Background()))

	cancel, done := startFeed(t, feed)

	first := receive(t, loader.batches)
	require.Len(t, first, 2)
	assert.Equal(t, "1", first[0].Field.ID)
	assert.Equal(t, "2", first[1].Field.ID)

	want := domain.DateRange{Start: domain.NewDate(2025, 8, 10), End: domain.NewDate(2025, 8, 14)}
	if diff := cmp.Diff(want, first[0].Range); diff != "" {
		t.Fatalf("window mismatch (-want +got):\n%s", diff)
	}
	require.Eventually(t, func() bool {
		return feed.CheckReadiness(context.Background()) == nil
	}, 5*time.Second, 10*time.Millisecond)

	blockUntil(t, fakeClock, 1)
	fakeClock.Advance(time.Minute)
	second := receive(t, loader.batches)
	assert.Len(t, second, 2)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.SnapshotsPublished) == 4
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.FeedRunning), 0)
}

func TestFeed_WindowFollowsClockAcrossMidnight(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, 8, 31, 23, 59, 30, 0, time.UTC))
	builder := &mockBuilder{}
	loader := newMockLoader()

	feed := pipeline.New(testFields[:1], builder, loader, slog.Default(), newTestMetrics(),
		pipeline.Options{Interval: time.Minute, WindowDays: 1, Clock: fakeClock})
	startFeed(t, feed)

	first := receive(t, loader.batches)
	assert.Equal(t, "2025-08-31", first[0].Range.End.String())

	blockUntil(t, fakeClock, 1)
	fakeClock.Advance(time.Minute)
	second := receive(t, loader.batches)
	assert.Equal(t, "2025-09-01", second[0].Range.Start.String())
	assert.Equal(t, "2025-09-01", second[0].Range.End.String())
}

func TestFeed_BuildErrorSkipsField(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	builder := &mockBuilder{fail: map[string]error{
		"2": domain.NewConstructionError(domain.BundleWeather, errors.New("bad range")),
	}}
	loader := newMockLoader()
	metrics := newTestMetrics()

	feed := pipeline.New(testFields, builder, loader, slog.Default(), metrics, pipeline.Options{Clock: fakeClock})
	startFeed(t, feed)

	batch := receive(t, loader.batches)
	require.Len(t, batch, 1)
	assert.Equal(t, "1", batch[0].Field.ID)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SnapshotBuildErrors), 0)
}

func TestFeed_AllBuildsFailLoadsNothing(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	boom := errors.New("boom")
	builder := &mockBuilder{fail: map[string]error{"1": boom, "2": boom}}
	loader := newMockLoader()
	metrics := newTestMetrics()

	feed := pipeline.New(testFields, builder, loader, slog.Default(), metrics, pipeline.Options{Clock: fakeClock})
	cancel, done := startFeed(t, feed)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.SnapshotBuildErrors) == 2
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 0, loader.calls)
	assert.Error(t, feed.CheckReadiness(context.Background()))
}

func TestFeed_LoadFailureBacksOffAndRetries(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	builder := &mockBuilder{}
	loader := newMockLoader(errors.New("broker down"), errors.New("broker still down"))

	feed := pipeline.New(testFields, builder, loader, slog.Default(), newTestMetrics(),
		pipeline.Options{Interval: time.Hour, Clock: fakeClock})
	startFeed(t, feed)

	// ticker plus the first backoff timer
	blockUntil(t, fakeClock, 2)
	fakeClock.Advance(200 * time.Millisecond)

	// second backoff doubles
	blockUntil(t, fakeClock, 2)
	fakeClock.Advance(399 * time.Millisecond)
	select {
	case <-loader.batches:
		t.Fatal("retried before the backoff elapsed")
	default:
	}
	fakeClock.Advance(time.Millisecond)

	batch := receive(t, loader.batches)
	assert.Len(t, batch, 2)
	assert.Equal(t, 3, loader.calls)
}

func TestFeed_BackoffCapsAtMax(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	errs := make([]error, 7)
	for i := range errs {
		errs[i] = errors.New("broker down")
	}
	loader := newMockLoader(errs...)

	feed := pipeline.New(testFields, &mockBuilder{}, loader, slog.Default(), newTestMetrics(),
		pipeline.Options{Interval: time.Hour, Clock: fakeClock})
	startFeed(t, feed)

	waits := []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
	}
	for _, d := range waits {
		blockUntil(t, fakeClock, 2)
		fakeClock.Advance(d)
	}

	// doubling 5s would give 10s; the cap holds it at 5s
	blockUntil(t, fakeClock, 2)
	fakeClock.Advance(5*time.Second - time.Millisecond)
	select {
	case <-loader.batches:
		t.Fatal("retried before the capped backoff elapsed")
	default:
	}
	fakeClock.Advance(time.Millisecond)

	batch := receive(t, loader.batches)
	assert.Len(t, batch, 2)
	assert.Equal(t, 8, loader.calls)
}

func TestFeed_CancelDuringBackoff(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	loader := newMockLoader(errors.New("broker down"))

	feed := pipeline.New(testFields, &mockBuilder{}, loader, slog.Default(), newTestMetrics(),
		pipeline.Options{Clock: fakeClock})
	cancel, done := startFeed(t, feed)

	blockUntil(t, fakeClock, 2)
	cancel()
	require.NoError(t, <-done)
}

func TestFeed_ContextCancelledBeforeStart(t *testing.T) {
	loader := newMockLoader()
	feed := pipeline.New(testFields, &mockBuilder{}, loader, slog.Default(), newTestMetrics(),
		pipeline.Options{Clock: clockwork.NewFakeClock()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, feed.Run(ctx))
}

// --- SnapshotAssembler ---

func TestSnapshotAssembler_Build(t *testing.T) {
	now := time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC)
	svc := climate.New(climate.Options{Rand: climate.SeededSource(7)}, slog.Default(), newTestMetrics())
	assembler := pipeline.NewSnapshotAssembler(svc, clockwork.NewFakeClockAt(now))

	field := testFields[0]
	window := domain.TrailingRange(domain.NewDate(2025, 8, 14), 5)

	snap, err := assembler.Build(context.Background(), field, window)
	require.NoError(t, err)

	assert.Equal(t, field, snap.Field)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Len(t, snap.Weather.Temperature, 5)
	assert.Len(t, snap.Vegetation.NDVI, 5)
	assert.Len(t, snap.Water.SoilMoisture, 5)
	assert.Len(t, snap.Rainfall.DailyRainfall, 5)
	assert.Equal(t, "Clay Loam", snap.Soil.SoilType)
	assert.NotEmpty(t, snap.Hazard.Alerts)

	// every bundle draws from its own seeded source
	again, err := assembler.Build(context.Background(), field, window)
	require.NoError(t, err)
	if diff := cmp.Diff(snap.Weather, again.Weather); diff != "" {
		t.Fatalf("seeded weather differs (-first +second):\n%s", diff)
	}
}

func TestSnapshotAssembler_FailedBundleFailsSnapshot(t *testing.T) {
	svc := climate.New(climate.Options{}, slog.Default(), newTestMetrics())
	assembler := pipeline.NewSnapshotAssembler(svc, clockwork.NewFakeClock())

	inverted := domain.DateRange{Start: domain.NewDate(2025, 8, 14), End: domain.NewDate(2025, 8, 10)}
	snap, err := assembler.Build(context.Background(), testFields[0], inverted)

	require.ErrorIs(t, err, domain.ErrConstructionFailure)
	assert.Contains(t, err.Error(), "field 1")
	assert.Empty(t, snap.Field.ID)
}
