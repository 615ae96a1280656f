// Command validate checks a directory of genmock fixtures for integrity:
// series shape and bounds, classification consistency, parity between the
// per-bundle fixtures and the snapshot, and reproducibility from the seed.
//
// Usage:
//
//	go run ./cmd/validate --fixtures data/mock --seed 2025
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/google/go-cmp/cmp"
)

type cli struct {
	Fixtures string `help:"Directory written by genmock." required:"" type:"existingdir"`
	Seed     uint64 `help:"Seed the fixtures were generated with." default:"2025"`
}

// bound is the closed value interval of a series.
type bound struct{ lo, hi float64 }

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fixtures is everything genmock writes.
type fixtures struct {
	snapshot   domain.Snapshot
	weather    domain.WeatherBundle
	vegetation domain.VegetationBundle
	soil       domain.SoilProfile
	water      domain.WaterBundle
	rainfall   domain.RainfallBundle
	hazard     domain.HazardBundle
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("validate"),
		kong.Description("Validate genmock telemetry fixtures."),
	)
	os.Exit(run(c.Fixtures, c.Seed))
}

func run(dir string, seed uint64) int {
	fmt.Println("=== Field Telemetry Fixture Validation ===")
	fmt.Println()

	fx, err := loadFixtures(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSeries(fx),
		validateClassification(fx),
		validateSnapshotParity(fx),
		validateReproducible(fx, seed),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Field %s (%s), %s..%s, %d days\n",
		fx.snapshot.Field.ID, fx.snapshot.Field.Location,
		fx.snapshot.Range.Start, fx.snapshot.Range.End, fx.snapshot.Range.DayCount())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadFixtures(dir string) (fixtures, error) {
	var fx fixtures
	targets := map[string]any{
		"snapshot.json":                  &fx.snapshot,
		domain.BundleWeather + ".json":    &fx.weather,
		domain.BundleVegetation + ".json": &fx.vegetation,
		domain.BundleSoil + ".json":       &fx.soil,
		domain.BundleWater + ".json":      &fx.water,
		domain.BundleRainfall + ".json":   &fx.rainfall,
		domain.BundleHazard + ".json":     &fx.hazard,
	}
	for name, dst := range targets {
		if err := loadJSON(filepath.Join(dir, name), dst); err != nil {
			return fixtures{}, fmt.Errorf("load %s: %w", name, err)
		}
	}
	if err := fx.snapshot.Range.Validate(); err != nil {
		return fixtures{}, fmt.Errorf("snapshot range: %w", err)
	}
	return fx, nil
}

func loadJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// ── Phase 1: Series ──
// Every series covers the snapshot range day by day and stays in bounds.

func validateSeries(fx fixtures) *phase {
	p := &phase{name: "Phase 1: Series shape and bounds"}
	r := fx.snapshot.Range

	series := []struct {
		name string
		s    domain.Series
		b    bound
	}{
		{"weather.temperature", fx.weather.Temperature, bound{25, 35}},
		{"weather.humidity", fx.weather.Humidity, bound{50, 85}},
		{"weather.rainfall", fx.weather.Rainfall, bound{0, 25}},
		{"vegetation.ndvi", fx.vegetation.NDVI, bound{0.4, 0.85}},
		{"vegetation.evi", fx.vegetation.EVI, bound{0.2, 0.7}},
		{"vegetation.gci", fx.vegetation.GCI, bound{1, 3}},
		{"water.soilMoisture", fx.water.SoilMoisture, bound{30, 70}},
		{"rainfall.dailyRainfall", fx.rainfall.DailyRainfall, bound{0, 25}},
	}

	for _, sr := range series {
		checkSeries(p, sr.name, sr.s, r, sr.b)
	}

	if fx.hazard.FireRiskIndex < 0.2 || fx.hazard.FireRiskIndex > 0.6 {
		p.errorf("hazard.fireRiskIndex %.2f outside [0.2, 0.6]", fx.hazard.FireRiskIndex)
	}
	return p
}

func checkSeries(p *phase, name string, s domain.Series, r domain.DateRange, b bound) {
	if len(s) != r.DayCount() {
		p.errorf("%s: expected %d points, got %d", name, r.DayCount(), len(s))
		return
	}
	for i, pt := range s {
		want := r.Start.AddDays(i)
		if !pt.Date.Equal(want) {
			p.errorf("%s[%d]: expected date %s, got %s", name, i, want, pt.Date)
		}
		if pt.Value < b.lo || pt.Value > b.hi {
			p.errorf("%s[%d]: value %v outside [%v, %v]", name, i, pt.Value, b.lo, b.hi)
		}
	}
}

// ── Phase 2: Classification ──
// Derived statuses agree with the values they were derived from.

func validateClassification(fx fixtures) *phase {
	p := &phase{name: "Phase 2: Classification consistency"}

	for _, sec := range fx.vegetation.FieldSections {
		if want := domain.ClassifyFieldSection(sec.Value); sec.Status != want {
			p.errorf("field section %s: value %.2f has status %+v, expected %+v", sec.Name, sec.Value, sec.Status, want)
		}
	}
	if pt, ok := fx.vegetation.NDVI.Latest(); ok {
		if fx.vegetation.Health == nil || *fx.vegetation.Health != domain.ClassifyNDVI(pt.Value) {
			p.errorf("vegetation health does not match latest NDVI %.2f", pt.Value)
		}
	}

	soil := fx.soil
	if soil.PHStatus != domain.ClassifyPH(soil.PH) {
		p.errorf("soil pH %.1f has status %+v", soil.PH, soil.PHStatus)
	}
	if soil.NutrientStatus != domain.OverallNutrientStatus(soil.Nitrogen, soil.Phosphorus, soil.Potassium) {
		p.errorf("soil nutrient status %+v does not match N=%.1f P=%.1f K=%.1f",
			soil.NutrientStatus, soil.Nitrogen, soil.Phosphorus, soil.Potassium)
	}
	levels := map[string]float64{"Nitrogen": soil.Nitrogen, "Phosphorus": soil.Phosphorus}
	classify := map[string]func(float64) domain.Classification{
		"Nitrogen":   domain.ClassifyNitrogen,
		"Phosphorus": domain.ClassifyPhosphorus,
	}
	for _, rec := range soil.Recommendations {
		fn, ok := classify[rec.Nutrient]
		if !ok {
			p.errorf("unexpected soil recommendation for %q", rec.Nutrient)
			continue
		}
		if want := fn(levels[rec.Nutrient]).Label; rec.CurrentLevel != want {
			p.errorf("%s recommendation level %q, expected %q", rec.Nutrient, rec.CurrentLevel, want)
		}
	}

	for i, e := range fx.water.IrrigationEvents {
		if e.Band != domain.IrrigationStatusBand(e.Status) {
			p.errorf("irrigation event %d: status %q has band %q", i, e.Status, e.Band)
		}
	}
	return p
}

// ── Phase 3: Snapshot parity ──
// With a seeded source every fetch replays the same sequence, so the
// per-bundle fixtures must match the snapshot exactly.

func validateSnapshotParity(fx fixtures) *phase {
	p := &phase{name: "Phase 3: Snapshot parity (bundles vs snapshot)"}

	pairs := []struct {
		name      string
		got, want any
	}{
		{domain.BundleWeather, fx.weather, fx.snapshot.Weather},
		{domain.BundleVegetation, fx.vegetation, fx.snapshot.Vegetation},
		{domain.BundleSoil, fx.soil, fx.snapshot.Soil},
		{domain.BundleWater, fx.water, fx.snapshot.Water},
		{domain.BundleRainfall, fx.rainfall, fx.snapshot.Rainfall},
		{domain.BundleHazard, fx.hazard, fx.snapshot.Hazard},
	}
	for _, pr := range pairs {
		if diff := cmp.Diff(pr.want, pr.got); diff != "" {
			p.errorf("%s differs from snapshot (-snapshot +fixture):\n%s", pr.name, diff)
		}
	}
	return p
}

// ── Phase 4: Reproducibility ──
// Regenerating with the same seed yields the stored fixtures.

func validateReproducible(fx fixtures, seed uint64) *phase {
	p := &phase{name: "Phase 4: Reproducible from seed"}

	svc := climate.New(climate.Options{Rand: climate.SeededSource(seed)},
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	req := domain.FetchRequest{
		FieldID:   fx.snapshot.Field.ID,
		Location:  fx.snapshot.Field.Location,
		DateRange: domain.InputOf(fx.snapshot.Range),
	}

	stored := map[string]any{
		domain.BundleWeather:    fx.weather,
		domain.BundleVegetation: fx.vegetation,
		domain.BundleSoil:       fx.soil,
		domain.BundleWater:      fx.water,
		domain.BundleRainfall:   fx.rainfall,
		domain.BundleHazard:     fx.hazard,
	}
	for _, bundle := range domain.Bundles {
		fresh, err := svc.Fetch(context.Background(), bundle, req)
		if err != nil {
			p.errorf("%s: regenerate: %v", bundle, err)
			continue
		}
		if diff := cmp.Diff(fresh, stored[bundle]); diff != "" {
			p.errorf("%s: stored fixture is stale (-regenerated +stored):\n%s", bundle, diff)
		}
	}
	return p
}
