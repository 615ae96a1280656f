// Command genmock writes reproducible JSON fixtures of every telemetry bundle
// for one field and date range. It drives the real climate service with a
// fixed seed and a fixed clock, so the output only changes when the
// generators do.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  --out-dir data/mock \
//	  --field 1 --location "DIT Pune" \
//	  --start 2025-08-10 --end 2025-08-14
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/field-telemetry-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

type cli struct {
	OutDir   string    `help:"Directory to write fixtures into." required:"" type:"path"`
	Field    string    `help:"Field ID." default:"1"`
	Name     string    `help:"Field name recorded in the snapshot fixture." default:"Farm 1"`
	Location string    `help:"Field location." default:"DIT Pune"`
	Start    string    `help:"First day of the range (YYYY-MM-DD)." default:"2025-08-10"`
	End      string    `help:"Last day of the range (YYYY-MM-DD)." default:"2025-08-14"`
	Seed     uint64    `help:"Random seed." default:"2025"`
	Now      time.Time `help:"Fixed clock time (RFC3339) stamped on the snapshot." default:"2025-08-14T06:00:00Z"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("genmock"),
		kong.Description("Generate reproducible telemetry fixtures."),
	)
	kctx.FatalIfErrorf(run(c))
}

func run(c cli) error {
	r, err := domain.ParseDateRange(c.Start, c.End)
	if err != nil {
		return fmt.Errorf("invalid range: %w", err)
	}

	fixed := clockwork.NewFakeClockAt(c.Now.UTC())
	domain.SetClock(fixed)
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := climate.New(climate.Options{
		Latency: 0,
		Clock:   fixed,
		Rand:    climate.SeededSource(c.Seed),
	}, logger, observability.NewMetricsForTesting())

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx := context.Background()
	req := climate.NewFetchRequest(c.Field, c.Location, c.Start, c.End)
	for _, bundle := range domain.Bundles {
		v, err := svc.Fetch(ctx, bundle, req)
		if err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(c.OutDir, bundle+".json"), v); err != nil {
			return err
		}
		log.Printf("%s: written", bundle)
	}

	field := domain.Field{ID: c.Field, Name: c.Name, Location: c.Location}
	snap, err := pipeline.NewSnapshotAssembler(svc, fixed).Build(ctx, field, r)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(c.OutDir, "snapshot.json"), snap); err != nil {
		return err
	}

	log.Printf("fixtures for field %s, %s..%s (%d days) written to %s", c.Field, r.Start, r.End, r.DayCount(), c.OutDir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
