package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects Postgres persistence. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig points at the species catalog cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit outbox relay when Brokers is non-empty.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
}

// ConditionsConfig tunes the condition calculation engine.
type ConditionsConfig struct {
	TemplatesPath     string
	TxTimeout         time.Duration
	SpeciesCatalogKey string
}

type AuditConfig struct {
	// Buffer > 0 makes audit emission asynchronous.
	Buffer int
}

// Config is the full process configuration.
type Config struct {
	Server     Server
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Conditions ConditionsConfig
	Audit      AuditConfig
	LogLevel   slog.Level
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Server: Server{
			Addr:            envOr("CONDITIONS_ADDR", ":8080"),
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    envOr("AUDIT_TOPIC", "fellinglicence.audit"),
			RelayInterval: time.Second,
		},
		Conditions: ConditionsConfig{
			TemplatesPath:     os.Getenv("CONDITION_TEMPLATES_PATH"),
			SpeciesCatalogKey: envOr("SPECIES_CATALOG_KEY", "species:catalog"),
		},
	}

	if cfg.Conditions.TxTimeout, err = durationEnv("TX_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Audit.Buffer, err = intEnv("AUDIT_BUFFER", 0); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
