package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"CONDITIONS_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS",
		"AUDIT_TOPIC", "CONDITION_TEMPLATES_PATH", "SPECIES_CATALOG_KEY", "TX_TIMEOUT", "AUDIT_BUFFER", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "fellinglicence.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, "species:catalog", cfg.Conditions.SpeciesCatalogKey)
	assert.Equal(t, 5*time.Second, cfg.Conditions.TxTimeout)
	assert.Zero(t, cfg.Audit.Buffer)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CONDITIONS_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TX_TIMEOUT", "750ms")
	t.Setenv("AUDIT_BUFFER", "256")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Conditions.TxTimeout)
	assert.Equal(t, 256, cfg.Audit.Buffer)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"bad duration":    {"TX_TIMEOUT", "soon"},
		"negative buffer": {"AUDIT_BUFFER", "-1"},
		"bad level":       {"LOG_LEVEL", "chatty"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.ErrorContains(t, err, kv[0])
		})
	}
}
