//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/field-telemetry-service/internal/adapter/kafka"
	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/config"
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/field-telemetry-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-field-telemetry"

// publishedSnapshot holds a deserialized message read from the snapshot topic.
type publishedSnapshot struct {
	Snapshot domain.Snapshot
	Key      string
	Headers  map[string]string
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedSnapshot {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from snapshot topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(msg.Value, &snap), "unmarshal snapshot")

	return publishedSnapshot{Snapshot: snap, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestWriterPublishesSnapshot verifies kafka.Writer keys and headers a snapshot.
func TestWriterPublishesSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic, 1)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	generated := time.Date(2025, 8, 14, 6, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		Field:       domain.Field{ID: "2", Name: "Baramati", Location: "Baramati"},
		Range:       domain.TrailingRange(domain.NewDate(2025, 8, 14), 7),
		Hazard:      domain.HazardBundle{FireRiskIndex: 0.42, HistoricalEvents: []domain.HazardAlert{}},
		GeneratedAt: generated,
	}
	require.NoError(t, writer.LoadBatch(ctx, []domain.Snapshot{snap}))

	got := readSnapshot(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "2", got.Key)
	assert.Equal(t, "2", got.Headers["field_id"])
	assert.Equal(t, "2025-08-14T06:00:00Z", got.Headers["generated_at"])
	assert.Equal(t, snap.Field, got.Snapshot.Field)
	assert.Equal(t, 0.42, got.Snapshot.Hazard.FireRiskIndex)
	assert.Equal(t, "2025-08-08", got.Snapshot.Range.Start.String())
}

// TestFeedEndToEnd wires catalog → assembler → writer against real Kafka and
// verifies one snapshot per field is published.
func TestFeedEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic, 3)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	svc := climate.New(climate.Options{}, discardLogger(), metrics)
	catalog := climate.NewCatalog(climate.DefaultFields)
	assembler := pipeline.NewSnapshotAssembler(svc, nil)

	feed := pipeline.New(catalog, assembler, writer, discardLogger(), metrics,
		pipeline.Options{Interval: time.Hour, WindowDays: 7})

	feedCtx, feedCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- feed.Run(feedCtx) }()

	consumer := newConsumer(t, broker)
	received := map[string]publishedSnapshot{}
	for len(received) < len(climate.DefaultFields) {
		ps := readSnapshot(ctx, t, consumer)
		received[ps.Key] = ps
	}

	feedCancel()
	require.NoError(t, <-errCh)
	require.NoError(t, feed.CheckReadiness(ctx))

	for _, f := range climate.DefaultFields {
		ps, ok := received[f.ID]
		require.True(t, ok, "missing snapshot for field %s", f.ID)
		assert.Equal(t, f.ID, ps.Headers["field_id"])
		_, err := time.Parse(time.RFC3339, ps.Headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")

		assert.Equal(t, f, ps.Snapshot.Field)
		assert.Equal(t, 7, ps.Snapshot.Range.DayCount())
		assert.Len(t, ps.Snapshot.Weather.Temperature, 7)
		assert.Len(t, ps.Snapshot.Vegetation.FieldSections, 3)
		assert.Equal(t, "Clay Loam", ps.Snapshot.Soil.SoilType)
	}
}
