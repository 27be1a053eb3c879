package main

import (
	"context"
	"fmt"

	appconfig "github.com/ganeshsabale-99/DMP-Project/internal/config"
	"github.com/ganeshsabale-99/DMP-Project/internal/notify"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/clickhouse"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/memory"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/mongo"
	"github.com/ganeshsabale-99/DMP-Project/internal/store/postgres"
	"github.com/ganeshsabale-99/DMP-Project/internal/suggest"
	"github.com/ganeshsabale-99/DMP-Project/pkg/database"
	"github.com/ganeshsabale-99/DMP-Project/pkg/email"
	"github.com/ganeshsabale-99/DMP-Project/pkg/kafka"
	"github.com/ganeshsabale-99/DMP-Project/pkg/llm"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/monitoring"
	"github.com/ganeshsabale-99/DMP-Project/pkg/redis"
)

// entityStore is a document store that also keeps the event log
type entityStore interface {
	store.Store
	store.EventStore
}

type closer struct {
	name string
	fn   func() error
}

// closers run in reverse order of registration
type closers []closer

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c *closers) run(logger logging.Logger) {
	for i := len(*c) - 1; i >= 0; i-- {
		cl := (*c)[i]
		if err := cl.fn(); err != nil {
			logger.WithError(err).WithField("component", cl.name).Warn("Close failed")
		}
	}
}

func openStore(ctx context.Context, cfg appconfig.Config, logger logging.Logger) (entityStore, error) {
	switch cfg.StoreBackend {
	case appconfig.BackendPostgres:
		db, err := database.Connect(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := database.MigratePostgres(ctx, db, logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		return postgres.New(db), nil

	case appconfig.BackendMongo:
		_, db, err := database.ConnectMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		st := mongo.New(db)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return st, nil

	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.New(), nil
	}
}

// openEvents returns the event log. With the store backend the entity
// store keeps events itself and there is nothing extra to close.
func openEvents(ctx context.Context, cfg appconfig.Config, st entityStore, logger logging.Logger) (store.EventStore, func() error, error) {
	if cfg.EventBackend != appconfig.BackendClickHouse {
		return st, nil, nil
	}
	db, err := database.ConnectClickHouse(ctx, cfg.ClickHouse, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.MigrateClickHouse(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return clickhouse.New(db), db.Close, nil
}

type notifierWiring struct {
	backends []notify.Notifier
	hub      *notify.Hub
	// relay feeds the hub from Redis so every replica's clients see every
	// notification; the hub is then not a direct backend.
	relay    *notify.RedisNotifier
	producer *kafka.Producer
	closeFns closers
	logger   logging.Logger
}

func (w *notifierWiring) close() error {
	w.closeFns.run(w.logger)
	return nil
}

func buildNotifiers(ctx context.Context, cfg appconfig.Config, logger logging.Logger, hc *monitoring.HealthChecker) (*notifierWiring, error) {
	w := &notifierWiring{logger: logger}

	if cfg.NotifierEnabled(appconfig.NotifierLog) {
		w.backends = append(w.backends, notify.NewLogNotifier(logger))
	}

	if cfg.NotifierEnabled(appconfig.NotifierWebsocket) {
		w.hub = notify.NewHub(logger)
	}

	if cfg.NotifierEnabled(appconfig.NotifierRedis) {
		client, err := redis.NewUniversalClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		w.closeFns.add("redis", client.Close)
		hc.AddCheck("redis", monitoring.PingCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
		rn := notify.NewRedisNotifier(client, logger)
		w.backends = append(w.backends, rn)
		if w.hub != nil {
			w.relay = rn
		}
	}
	if w.hub != nil && w.relay == nil {
		w.backends = append(w.backends, w.hub)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID, logger)
		if err != nil {
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		w.producer = producer
		w.closeFns.add("kafka producer", producer.Close)
		hc.AddCheck("kafka_producer", monitoring.OptionalPingCheck("kafka", producer.Ping))
		if cfg.NotifierEnabled(appconfig.NotifierKafka) {
			w.backends = append(w.backends, notify.NewKafkaNotifier(producer, cfg.KafkaNotifyTopic))
		}
	}

	if cfg.NotifierEnabled(appconfig.NotifierEmail) {
		sender := email.NewSender(cfg.SMTP)
		w.backends = append(w.backends, notify.NewEmailNotifier(sender, cfg.NotifyEmailTo, cfg.WebAppURL, logger))
	}

	names := make([]string, 0, len(w.backends))
	for _, b := range w.backends {
		names = append(names, b.Name())
	}
	logger.WithField("backends", names).Info("Notification backends ready")
	return w, nil
}

// buildSuggester prefers the HTTP generator, then an LLM provider. It
// returns a nil interface when neither is configured.
func buildSuggester(cfg appconfig.Config, logger logging.Logger) (suggest.Suggester, error) {
	switch {
	case cfg.SuggestionURL != "":
		logger.WithField("url", cfg.SuggestionURL).Info("Content suggestions via HTTP")
		return suggest.NewHTTPClient(cfg.SuggestionURL, cfg.SuggestionTimeout), nil
	case cfg.LLM.Enabled():
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logging.Fields{
			"provider": cfg.LLM.Provider,
			"model":    cfg.LLM.Model,
		}).Info("Content suggestions via LLM")
		return suggest.NewLLMSuggester(provider), nil
	default:
		return nil, nil
	}
}
