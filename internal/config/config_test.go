package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1*time.Second, cfg.SimulatedLatency)
	assert.Nil(t, cfg.RandomSeed)
	assert.Equal(t, 1000, cfg.SessionMaxKeys)
	assert.False(t, cfg.FeedEnabled)
	assert.Equal(t, time.Minute, cfg.FeedInterval)
	assert.Equal(t, 7, cfg.FeedWindowDays)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "field-telemetry", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SIMULATED_LATENCY", "250ms")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("SESSION_MAX_KEYS", "50")
	t.Setenv("FEED_ENABLED", "true")
	t.Setenv("FEED_INTERVAL", "30s")
	t.Setenv("FEED_WINDOW_DAYS", "14")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-telemetry")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.SimulatedLatency)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, uint64(42), *cfg.RandomSeed)
	assert.Equal(t, 50, cfg.SessionMaxKeys)
	assert.True(t, cfg.FeedEnabled)
	assert.Equal(t, 30*time.Second, cfg.FeedInterval)
	assert.Equal(t, 14, cfg.FeedWindowDays)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-telemetry", cfg.KafkaTopic)
}

func TestLoad_ZeroLatencyAllowed(t *testing.T) {
	t.Setenv("SIMULATED_LATENCY", "0s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.SimulatedLatency)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"SIMULATED_LATENCY", "soon", "SIMULATED_LATENCY"},
		{"SIMULATED_LATENCY", "-1s", "SIMULATED_LATENCY"},
		{"FEED_INTERVAL", "0s", "FEED_INTERVAL"},
		{"FEED_INTERVAL", "bad", "FEED_INTERVAL"},
		{"FEED_WINDOW_DAYS", "0", "FEED_WINDOW_DAYS"},
		{"FEED_WINDOW_DAYS", "400", "FEED_WINDOW_DAYS"},
		{"RANDOM_SEED", "-5", "RANDOM_SEED"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidSessionMaxKeysFallsBack(t *testing.T) {
	t.Setenv("SESSION_MAX_KEYS", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.SessionMaxKeys)
}
