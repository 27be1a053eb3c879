// Package config reads the lighthouse service configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/pkg/config"
	"github.com/ganeshsabale-99/DMP-Project/pkg/database"
	"github.com/ganeshsabale-99/DMP-Project/pkg/email"
	"github.com/ganeshsabale-99/DMP-Project/pkg/llm"
	"github.com/ganeshsabale-99/DMP-Project/pkg/redis"
)

const ServiceName = "lighthouse"

// Store backends
const (
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendMongo      = "mongo"
	BackendStore      = "store"
	BackendClickHouse = "clickhouse"
)

// Notifier backends
const (
	NotifierLog       = "log"
	NotifierRedis     = "redis"
	NotifierKafka     = "kafka"
	NotifierWebsocket = "websocket"
	NotifierEmail     = "email"
)

var notifiers = []string{NotifierLog, NotifierRedis, NotifierKafka, NotifierWebsocket, NotifierEmail}

type Config struct {
	Port      string
	JWTSecret string
	// ServiceToken lets pipeline jobs call the API as an analyst
	ServiceToken string
	WebAppURL    string

	StoreBackend string
	EventBackend string
	AutoMigrate  bool
	Postgres     database.Config
	Mongo        database.MongoConfig
	ClickHouse   database.ClickHouseConfig

	Redis             redis.Config
	KafkaBrokers      []string
	KafkaNotifyTopic  string
	KafkaEventsTopic  string
	KafkaDLQTopic     string
	KafkaGroupID      string
	KafkaClientID     string
	Notifiers         []string
	NotifyQueueSize   int
	NotifyWorkers     int
	NotifyEmailTo     string
	SMTP              email.Config
	TurnstileSecret   string
	SuggestionURL     string
	SuggestionTimeout time.Duration
	LLM               llm.Config

	PolicyFile        string
	AnalyticsCacheTTL time.Duration
	AnalyticsStaleTTL time.Duration
	RequestTimeout    time.Duration
}

// Load reads the environment and validates backend choices
func Load() (Config, error) {
	pg := database.DefaultConfig()
	pg.URL = config.GetEnv("DATABASE_URL", "")
	pg.MaxOpenConns = config.GetEnvInt("DB_MAX_OPEN_CONNS", pg.MaxOpenConns)
	pg.MaxIdleConns = config.GetEnvInt("DB_MAX_IDLE_CONNS", pg.MaxIdleConns)

	mongo := database.DefaultMongoConfig()
	mongo.URI = config.GetEnv("MONGO_URI", mongo.URI)
	mongo.Database = config.GetEnv("MONGO_DATABASE", mongo.Database)

	ch := database.DefaultClickHouseConfig()
	ch.Addr = config.GetEnvList("CLICKHOUSE_ADDR", ch.Addr)
	ch.Database = config.GetEnv("CLICKHOUSE_DB", ch.Database)
	ch.Username = config.GetEnv("CLICKHOUSE_USER", ch.Username)
	ch.Password = config.GetEnv("CLICKHOUSE_PASSWORD", "")

	cfg := Config{
		Port:         config.GetEnv("PORT", "18080"),
		JWTSecret:    config.GetEnv("JWT_SECRET", ""),
		ServiceToken: config.GetEnv("SERVICE_TOKEN", ""),
		WebAppURL:    config.GetEnv("WEB_APP_URL", ""),

		StoreBackend: strings.ToLower(config.GetEnv("STORE_BACKEND", BackendMemory)),
		EventBackend: strings.ToLower(config.GetEnv("EVENT_BACKEND", BackendStore)),
		AutoMigrate:  config.GetEnvBool("DB_AUTO_MIGRATE", true),
		Postgres:     pg,
		Mongo:        mongo,
		ClickHouse:   ch,

		Redis: redis.Config{
			Addrs:    config.GetEnvList("REDIS_ADDRS", nil),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetEnvInt("REDIS_DB", 0),
		},
		KafkaBrokers:     config.GetEnvList("KAFKA_BROKERS", nil),
		KafkaNotifyTopic: config.GetEnv("KAFKA_NOTIFY_TOPIC", "lighthouse.notifications"),
		KafkaEventsTopic: config.GetEnv("KAFKA_EVENTS_TOPIC", ""),
		KafkaDLQTopic:    config.GetEnv("KAFKA_DLQ_TOPIC", "lighthouse.events.dlq"),
		KafkaGroupID:     config.GetEnv("KAFKA_GROUP_ID", "lighthouse-ingest"),
		KafkaClientID:    config.GetEnv("KAFKA_CLIENT_ID", ServiceName),
		Notifiers:        config.GetEnvList("NOTIFIERS", []string{NotifierLog}),
		NotifyQueueSize:  config.GetEnvInt("NOTIFY_QUEUE_SIZE", 1024),
		NotifyWorkers:    config.GetEnvInt("NOTIFY_WORKERS", 2),
		NotifyEmailTo:    config.GetEnv("NOTIFY_EMAIL_TO", ""),
		SMTP: email.Config{
			Host:     config.GetEnv("SMTP_HOST", ""),
			Port:     config.GetEnv("SMTP_PORT", "587"),
			User:     config.GetEnv("SMTP_USER", ""),
			Password: config.GetEnv("SMTP_PASSWORD", ""),
			From:     config.GetEnv("FROM_EMAIL", ""),
			FromName: config.GetEnv("FROM_NAME", "Lighthouse"),
		},
		TurnstileSecret:   config.GetEnv("TURNSTILE_SECRET_KEY", ""),
		SuggestionURL:     config.GetEnv("SUGGESTION_URL", ""),
		SuggestionTimeout: config.GetEnvDuration("SUGGESTION_TIMEOUT", 15*time.Second),
		LLM:               llm.LoadConfig(),

		PolicyFile:        config.GetEnv("POLICY_FILE", ""),
		AnalyticsCacheTTL: config.GetEnvDuration("ANALYTICS_CACHE_TTL", 30*time.Second),
		AnalyticsStaleTTL: config.GetEnvDuration("ANALYTICS_CACHE_STALE", 30*time.Second),
		RequestTimeout:    config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	for i, n := range cfg.Notifiers {
		cfg.Notifiers[i] = strings.ToLower(n)
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem at once
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for STORE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	switch c.EventBackend {
	case BackendStore, BackendClickHouse:
	default:
		errs = append(errs, fmt.Errorf("unknown EVENT_BACKEND %q", c.EventBackend))
	}
	for _, n := range c.Notifiers {
		if !slices.Contains(notifiers, n) {
			errs = append(errs, fmt.Errorf("unknown notifier %q", n))
		}
	}
	if c.NotifierEnabled(NotifierRedis) && len(c.Redis.Addrs) == 0 {
		errs = append(errs, errors.New("REDIS_ADDRS is required for the redis notifier"))
	}
	if c.NotifierEnabled(NotifierKafka) && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka notifier"))
	}
	if c.KafkaEventsTopic != "" && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_EVENTS_TOPIC is set"))
	}
	if c.NotifierEnabled(NotifierEmail) && (!c.SMTP.Enabled() || c.NotifyEmailTo == "") {
		errs = append(errs, errors.New("SMTP_HOST, FROM_EMAIL and NOTIFY_EMAIL_TO are required for the email notifier"))
	}
	return errors.Join(errs...)
}

func (c Config) NotifierEnabled(name string) bool {
	return slices.Contains(c.Notifiers, name)
}

// Summary is the non-secret view reported by the config health check
func (c Config) Summary() map[string]string {
	return map[string]string{
		"STORE_BACKEND": c.StoreBackend,
		"EVENT_BACKEND": c.EventBackend,
		"NOTIFIERS":     strings.Join(c.Notifiers, ","),
		"JWT_SECRET":    redacted(c.JWTSecret),
	}
}

func redacted(s string) string {
	if s == "" {
		return ""
	}
	return "set"
}
