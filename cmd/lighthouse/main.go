package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appconfig "github.com/ganeshsabale-99/DMP-Project/internal/config"
	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/handlers"
	"github.com/ganeshsabale-99/DMP-Project/internal/ingest"
	"github.com/ganeshsabale-99/DMP-Project/internal/metrics"
	"github.com/ganeshsabale-99/DMP-Project/internal/notify"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/internal/service"
	"github.com/ganeshsabale-99/DMP-Project/pkg/auth"
	"github.com/ganeshsabale-99/DMP-Project/pkg/config"
	"github.com/ganeshsabale-99/DMP-Project/pkg/kafka"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/monitoring"
	"github.com/ganeshsabale-99/DMP-Project/pkg/server"
	"github.com/ganeshsabale-99/DMP-Project/pkg/turnstile"
	"github.com/ganeshsabale-99/DMP-Project/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService(appconfig.ServiceName)
	config.LoadEnv(logger)

	cfg, err := appconfig.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Lighthouse stopped with error")
	}
}

func run(ctx context.Context, cfg appconfig.Config, logger logging.Logger) error {
	logger.WithFields(logging.Fields{
		"version":       version.Version,
		"commit":        version.GetShortCommit(),
		"store_backend": cfg.StoreBackend,
		"event_backend": cfg.EventBackend,
		"notifiers":     cfg.Notifiers,
	}).Info("Starting lighthouse")

	healthChecker := monitoring.NewHealthChecker(appconfig.ServiceName, version.Version)
	metricsCollector := monitoring.NewMetricsCollector(appconfig.ServiceName, version.Version, version.GitCommit)
	m := metrics.New(metricsCollector)
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(cfg.Summary()))

	var cleanup closers
	defer cleanup.run(logger)

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	cleanup.add("store", st.Close)
	healthChecker.AddCheck(cfg.StoreBackend, monitoring.PingCheck(cfg.StoreBackend, st.Ping))

	events, closeEvents, err := openEvents(ctx, cfg, st, logger)
	if err != nil {
		return err
	}
	if closeEvents != nil {
		cleanup.add("events", closeEvents)
		healthChecker.AddCheck(cfg.EventBackend, monitoring.PingCheck(cfg.EventBackend, events.Ping))
	}

	pol := policy.Default()
	if cfg.PolicyFile != "" {
		table, err := policy.LoadFile(cfg.PolicyFile)
		if err != nil {
			return err
		}
		if pol, err = policy.New(table); err != nil {
			return err
		}
		logger.WithField("path", cfg.PolicyFile).Info("Loaded policy file")
	}

	engine := rollup.New(events, st, st, rollup.Options{
		TTL:                  cfg.AnalyticsCacheTTL,
		StaleWhileRevalidate: cfg.AnalyticsStaleTTL,
		MaxEntries:           1000,
		CacheHooks:           m.CacheHooks(),
		OnQuery:              m.ObserveQuery,
	})

	g, gctx := errgroup.WithContext(ctx)

	wiring, err := buildNotifiers(gctx, cfg, logger, healthChecker)
	if err != nil {
		return err
	}
	cleanup.add("notifiers", wiring.close)

	dispatcherCfg := notify.DefaultDispatcherConfig()
	dispatcherCfg.QueueSize = cfg.NotifyQueueSize
	dispatcherCfg.Workers = cfg.NotifyWorkers
	dispatcherCfg.Hooks = m.NotifyHooks()
	dispatcher := notify.NewDispatcher(dispatcherCfg, logger, wiring.backends...)
	dispatcher.Start()

	suggester, err := buildSuggester(cfg, logger)
	if err != nil {
		return err
	}

	svc := service.New(service.Config{
		Store:     st,
		Rollup:    engine,
		Policy:    pol,
		Publisher: dispatcher,
		Suggester: suggester,
		Logger:    logger,
		Hooks:     m.ServiceHooks(),
	})

	if wiring.hub != nil {
		hub := wiring.hub
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
	}
	if wiring.relay != nil {
		relay, hub := wiring.relay, wiring.hub
		g.Go(func() error {
			if err := relay.Relay(gctx, hub); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("Redis notification relay stopped")
			}
			return nil
		})
	}

	if cfg.KafkaEventsTopic != "" {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaClientID, logger)
		if err != nil {
			return err
		}
		cleanup.add("kafka consumer", consumer.Close)
		if wiring.producer != nil && cfg.KafkaDLQTopic != "" {
			consumer.WithDeadLetter(wiring.producer, cfg.KafkaDLQTopic)
		}
		consumer.AddHandler(cfg.KafkaEventsTopic, ingest.NewHandler(svc, logger, m.IngestMetrics()).HandleMessage)
		healthChecker.AddCheck("kafka_consumer", monitoring.PingCheck("kafka", consumer.Ping))
		g.Go(func() error {
			logger.WithField("topic", cfg.KafkaEventsTopic).Info("Consuming analytics events")
			if err := consumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	var tv handlers.TurnstileVerifier
	if cfg.TurnstileSecret != "" {
		tv = turnstile.NewValidator(cfg.TurnstileSecret)
	}
	hcfg := handlers.Config{
		Service:        svc,
		Turnstile:      tv,
		Metrics:        m,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	}
	if wiring.hub != nil {
		hcfg.Hub = wiring.hub
	}
	h := handlers.New(hcfg)

	authOpts := []auth.Option{auth.WithQueryToken("token")}
	if cfg.ServiceToken != "" {
		authOpts = append(authOpts, auth.WithServiceToken(cfg.ServiceToken, string(domain.RoleAnalyst)))
	}
	router := server.SetupServiceRouter(logger, appconfig.ServiceName, healthChecker, metricsCollector)
	h.Register(router, auth.JWTAuthMiddleware([]byte(cfg.JWTSecret), authOpts...))

	serverCfg := server.DefaultConfig(appconfig.ServiceName, cfg.Port)
	g.Go(func() error {
		return server.Run(gctx, serverCfg, router, logger)
	})

	err = g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if derr := dispatcher.Close(drainCtx); derr != nil {
		logger.WithError(derr).Warn("Notification queue not fully drained")
	}
	return err
}
