package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "18080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, BackendStore, cfg.EventBackend)
	assert.Equal(t, []string{NotifierLog}, cfg.Notifiers)
	assert.Equal(t, 30*time.Second, cfg.AnalyticsCacheTTL)
	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/lighthouse")
	t.Setenv("NOTIFIERS", "log, Redis,kafka")
	t.Setenv("REDIS_ADDRS", "a:6379,b:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092")
	t.Setenv("ANALYTICS_CACHE_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, []string{"log", "redis", "kafka"}, cfg.Notifiers)
	assert.Equal(t, []string{"a:6379", "b:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 2*time.Minute, cfg.AnalyticsCacheTTL)
	assert.True(t, cfg.NotifierEnabled(NotifierKafka))
	assert.False(t, cfg.NotifierEnabled(NotifierWebsocket))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown store", func(c *Config) { c.StoreBackend = "sqlite" }, "STORE_BACKEND"},
		{"postgres without url", func(c *Config) { c.StoreBackend = BackendPostgres }, "DATABASE_URL"},
		{"unknown events", func(c *Config) { c.EventBackend = "druid" }, "EVENT_BACKEND"},
		{"unknown notifier", func(c *Config) { c.Notifiers = []string{"pager"} }, "pager"},
		{"redis without addrs", func(c *Config) { c.Notifiers = []string{NotifierRedis} }, "REDIS_ADDRS"},
		{"kafka without brokers", func(c *Config) { c.Notifiers = []string{NotifierKafka} }, "KAFKA_BROKERS"},
		{"events topic without brokers", func(c *Config) { c.KafkaEventsTopic = "events" }, "KAFKA_BROKERS"},
		{"email without smtp", func(c *Config) { c.Notifiers = []string{NotifierEmail} }, "NOTIFY_EMAIL_TO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				JWTSecret:    "secret",
				StoreBackend: BackendMemory,
				EventBackend: BackendStore,
				Notifiers:    []string{NotifierLog},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSummaryHidesSecret(t *testing.T) {
	cfg := Config{JWTSecret: "hunter2", StoreBackend: BackendMongo, EventBackend: BackendClickHouse}
	s := cfg.Summary()
	assert.Equal(t, "set", s["JWT_SECRET"])
	assert.Equal(t, BackendMongo, s["STORE_BACKEND"])
}
