package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// TelemetryService builds the individual bundles of a snapshot.
type TelemetryService interface {
	FetchWeather(ctx context.Context, req domain.FetchRequest) (domain.WeatherBundle, error)
	FetchVegetation(ctx context.Context, req domain.FetchRequest) (domain.VegetationBundle, error)
	FetchSoil(ctx context.Context, req domain.FetchRequest) (domain.SoilProfile, error)
	FetchWater(ctx context.Context, req domain.FetchRequest) (domain.WaterBundle, error)
	FetchRainfall(ctx context.Context, req domain.FetchRequest) (domain.RainfallBundle, error)
	FetchHazard(ctx context.Context, req domain.FetchRequest) (domain.HazardBundle, error)
}

// SnapshotAssembler implements SnapshotBuilder by fetching all six bundles
// concurrently. Any failed fetch fails the whole snapshot.
type SnapshotAssembler struct {
	svc   TelemetryService
	clock clockwork.Clock
}

// NewSnapshotAssembler creates a SnapshotAssembler stamping snapshots with clock.
func NewSnapshotAssembler(svc TelemetryService, clock clockwork.Clock) *SnapshotAssembler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SnapshotAssembler{svc: svc, clock: clock}
}

func (a *SnapshotAssembler) Build(ctx context.Context, field domain.Field, r domain.DateRange) (domain.Snapshot, error) {
	req := domain.FetchRequest{
		FieldID:   field.ID,
		Location:  field.Location,
		DateRange: domain.InputOf(r),
	}
	snap := domain.Snapshot{Field: field, Range: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Weather, err = a.svc.FetchWeather(gctx, req); return })
	g.Go(func() (err error) { snap.Vegetation, err = a.svc.FetchVegetation(gctx, req); return })
	g.Go(func() (err error) { snap.Soil, err = a.svc.FetchSoil(gctx, req); return })
	g.Go(func() (err error) { snap.Water, err = a.svc.FetchWater(gctx, req); return })
	g.Go(func() (err error) { snap.Rainfall, err = a.svc.FetchRainfall(gctx, req); return })
	g.Go(func() (err error) { snap.Hazard, err = a.svc.FetchHazard(gctx, req); return })

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot for field %s: %w", field.ID, err)
	}
	snap.GeneratedAt = a.clock.Now().UTC()
	return snap, nil
}
