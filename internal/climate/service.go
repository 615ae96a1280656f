package climate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultLatency is the simulated round trip of every fetch.
const DefaultLatency = time.Second

// RandFactory returns a fresh random source for one fetch.
type RandFactory func() domain.Rand

// RandomSource seeds every fetch independently.
func RandomSource() RandFactory {
	return func() domain.Rand { return domain.NewRand() }
}

// SeededSource gives every fetch the same seeded sequence, so equal requests
// produce equal bundles.
func SeededSource(seed uint64) RandFactory {
	return func() domain.Rand { return domain.NewSeededRand(seed) }
}

// Options configures a Service. Zero values select the production defaults.
type Options struct {
	Latency time.Duration
	Clock   clockwork.Clock
	Rand    RandFactory
}

// Service builds mock telemetry bundles. Each fetch waits out the simulated
// latency, then builds its bundle from a private random source. Concurrent
// fetches share no mutable state and are neither coalesced nor cancelled.
type Service struct {
	latency time.Duration
	clock   clockwork.Clock
	newRand RandFactory
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Service.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = RandomSource()
	}
	return &Service{
		latency: opts.Latency,
		clock:   opts.Clock,
		newRand: opts.Rand,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness always succeeds: the generators have no dependencies.
func (s *Service) CheckReadiness(_ context.Context) error {
	return nil
}

// NewFetchRequest assembles a request from the caller's selection.
func NewFetchRequest(fieldID, location, startDate, endDate string) domain.FetchRequest {
	return domain.FetchRequest{
		FieldID:   fieldID,
		Location:  location,
		DateRange: domain.DateRangeInput{StartDate: startDate, EndDate: endDate},
	}
}

// FetchWeather returns temperature (25–35 °C), humidity (50–85 %) and
// rainfall (0–25 mm) series for the requested range.
func (s *Service) FetchWeather(ctx context.Context, req domain.FetchRequest) (domain.WeatherBundle, error) {
	return fetch(ctx, s, domain.BundleWeather, req, buildWeather)
}

// FetchVegetation returns NDVI, EVI and GCI series and field-section health.
func (s *Service) FetchVegetation(ctx context.Context, req domain.FetchRequest) (domain.VegetationBundle, error) {
	return fetch(ctx, s, domain.BundleVegetation, req, buildVegetation)
}

// FetchSoil returns a soil test result with nutrient recommendations.
func (s *Service) FetchSoil(ctx context.Context, req domain.FetchRequest) (domain.SoilProfile, error) {
	return fetch(ctx, s, domain.BundleSoil, req, buildSoil)
}

// FetchWater returns soil moisture, irrigation history and advisories.
func (s *Service) FetchWater(ctx context.Context, req domain.FetchRequest) (domain.WaterBundle, error) {
	return fetch(ctx, s, domain.BundleWater, req, buildWater)
}

// FetchRainfall returns daily rainfall and monsoon progress.
func (s *Service) FetchRainfall(ctx context.Context, req domain.FetchRequest) (domain.RainfallBundle, error) {
	return fetch(ctx, s, domain.BundleRainfall, req, buildRainfall)
}

// FetchHazard returns the fire risk index and hazard advisories.
func (s *Service) FetchHazard(ctx context.Context, req domain.FetchRequest) (domain.HazardBundle, error) {
	return fetch(ctx, s, domain.BundleHazard, req, buildHazard)
}

// Fetch dispatches by bundle name and returns the bundle as a JSON-ready value.
func (s *Service) Fetch(ctx context.Context, bundle string, req domain.FetchRequest) (any, error) {
	switch bundle {
	case domain.BundleWeather:
		return s.FetchWeather(ctx, req)
	case domain.BundleVegetation:
		return s.FetchVegetation(ctx, req)
	case domain.BundleSoil:
		return s.FetchSoil(ctx, req)
	case domain.BundleWater:
		return s.FetchWater(ctx, req)
	case domain.BundleRainfall:
		return s.FetchRainfall(ctx, req)
	case domain.BundleHazard:
		return s.FetchHazard(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBundle, bundle)
	}
}

// ErrUnknownBundle is returned by Fetch for a bundle name it does not serve.
var ErrUnknownBundle = errors.New("unknown bundle")

type builder[T any] func(rng domain.Rand, req domain.FetchRequest) (T, error)

// fetch waits out the simulated latency, then runs build. Any failure inside
// build, including a panic, yields the zero bundle and a ConstructionError.
func fetch[T any](ctx context.Context, s *Service, bundle string, req domain.FetchRequest, build builder[T]) (T, error) {
	var zero T
	start := s.clock.Now()
	s.metrics.FetchInFlight.Inc()
	defer s.metrics.FetchInFlight.Dec()

	if err := s.wait(ctx); err != nil {
		s.metrics.FetchRequests.WithLabelValues(bundle, "canceled").Inc()
		return zero, err
	}

	result, err := safeBuild(s.newRand(), req, build)
	if err != nil {
		cerr := domain.NewConstructionError(bundle, err)
		s.logger.Warn("bundle construction failed",
			"bundle", bundle,
			"field_id", req.FieldID,
			"start_date", req.DateRange.StartDate,
			"end_date", req.DateRange.EndDate,
			"error", err,
		)
		s.metrics.FetchRequests.WithLabelValues(bundle, "construction_error").Inc()
		return zero, cerr
	}

	points := pointCount(result)
	s.metrics.FetchRequests.WithLabelValues(bundle, "success").Inc()
	s.metrics.PointsGenerated.WithLabelValues(bundle).Add(float64(points))
	s.metrics.FetchDuration.WithLabelValues(bundle).Observe(s.clock.Since(start).Seconds())
	s.logger.Debug("bundle built",
		"bundle", bundle,
		"field_id", req.FieldID,
		"location", req.Location,
		"points", points,
	)
	return result, nil
}

func safeBuild[T any](rng domain.Rand, req domain.FetchRequest, build builder[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, fmt.Errorf("panic: %v", r)
		}
	}()
	return build(rng, req)
}

// wait blocks for the simulated latency or until ctx is done.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.latency):
		return nil
	}
}
