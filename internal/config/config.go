package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mock generation.
	SimulatedLatency time.Duration
	RandomSeed       *uint64 // nil means a fresh random seed per fetch
	SessionMaxKeys   int

	// Snapshot feed configuration.
	FeedEnabled    bool
	FeedInterval   time.Duration
	FeedWindowDays int
	KafkaBrokers   []string
	KafkaTopic     string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	latency, err := time.ParseDuration(sharedcfg.EnvOrDefault("SIMULATED_LATENCY", "1s"))
	if err != nil || latency < 0 {
		return nil, errors.New("invalid SIMULATED_LATENCY")
	}

	feedInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_INTERVAL", "1m"))
	if err != nil || feedInterval <= 0 {
		return nil, errors.New("invalid FEED_INTERVAL")
	}

	windowDays, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEED_WINDOW_DAYS", "7"))
	if err != nil || windowDays < 1 || windowDays > 366 {
		return nil, errors.New("invalid FEED_WINDOW_DAYS: must be between 1 and 366")
	}

	seed, err := parseRandomSeed()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SimulatedLatency: latency,
		RandomSeed:       seed,
		SessionMaxKeys:   parseSessionMaxKeys(),

		FeedEnabled:    os.Getenv("FEED_ENABLED") == "true",
		FeedInterval:   feedInterval,
		FeedWindowDays: windowDays,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "field-telemetry"),
	}

	if cfg.FeedEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when FEED_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when FEED_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseRandomSeed() (*uint64, error) {
	s := os.Getenv("RANDOM_SEED")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid RANDOM_SEED: must be an unsigned integer")
	}
	return &v, nil
}

func parseSessionMaxKeys() int {
	if s := os.Getenv("SESSION_MAX_KEYS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
