package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CyberwizD/push-relay/internal/config"
	"github.com/CyberwizD/push-relay/internal/handlers"
	"github.com/CyberwizD/push-relay/internal/repository"
	"github.com/CyberwizD/push-relay/internal/routes"
	"github.com/CyberwizD/push-relay/internal/services"
	"github.com/CyberwizD/push-relay/pkg/logger"
	"github.com/CyberwizD/push-relay/pkg/metrics"
	"github.com/CyberwizD/push-relay/pkg/rabbitmq"
	"github.com/CyberwizD/push-relay/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// A missing or broken credential leaves the relay up in degraded mode.
	messenger := services.Bootstrap(ctx, cfg.CredentialsEnv, cfg.ServiceAccountJSON(), logr)

	metricsCollector := metrics.New()
	startup := retry.Policy{
		Attempts:       cfg.StartupRetryAttempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		JitterFactor:   0.2,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			logr.Warn("startup dependency not ready, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		},
	}

	dispatcherCfg := services.DispatcherConfig{
		Concurrency: cfg.SendConcurrency,
		Timeout:     cfg.ProviderTimeout,
		SuppressTTL: cfg.TokenSuppressTTL,
		Metrics:     metricsCollector,
	}

	// Initialize Redis
	var redisClient *redis.Client
	var idempotencyStore services.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(ctx, cfg.RedisURL, startup)
		if err != nil {
			logr.Warn("redis unavailable; rate limiting and token suppression disabled", slog.Any("error", err))
		} else {
			redisRepo := repository.NewRedisRepository(redisClient, cfg.TokenSuppressTTL)
			defer redisRepo.Close()
			dispatcherCfg.Cache = redisRepo
			idempotencyStore = redisRepo
		}
	}

	// Delivery report sinks
	var sinks services.MultiSink
	var deliveries handlers.DeliveryStore

	if cfg.DatabaseURL != "" {
		deliveryLog, err := openDeliveryLog(ctx, cfg.DatabaseURL, cfg.DeliveryTable, startup)
		if err != nil {
			logr.Warn("delivery log disabled", slog.Any("error", err))
		} else {
			sinks = append(sinks, deliveryLog)
			deliveries = deliveryLog
		}
	}

	if cfg.RabbitMQURL != "" {
		mqManager, err := openReportBroker(ctx, cfg, logr, startup)
		if err != nil {
			logr.Warn("report publishing disabled", slog.Any("error", err))
		} else {
			defer mqManager.Close()
			sinks = append(sinks, services.NewPublisher(mqManager, cfg.ReportExchange, cfg.ReportRoutingKey))
		}
	}

	var reporter *services.Reporter
	if len(sinks) > 0 {
		reporter = services.NewReporter(sinks, logr)
	}

	// Initialize services and handlers
	dispatcher := services.NewDispatcher(messenger, logr, dispatcherCfg)
	idempotencyService := services.NewIdempotencyService(idempotencyStore, cfg.IdempotencyTTL)
	notificationHandler := handlers.NewNotificationHandler(dispatcher, reporter, idempotencyService)
	callHandler := handlers.NewCallHandler(dispatcher, reporter, idempotencyService)
	statusHandler := handlers.NewStatusHandler(dispatcher, cfg.AppVersion, cfg.ServiceAccountJSON, deliveries)

	gin.SetMode(gin.ReleaseMode)
	router := routes.NewRouter(notificationHandler, callHandler, statusHandler, routes.Options{
		APIKey:             cfg.APIKey,
		CORSAllowOrigins:   cfg.CORSAllowOrigins,
		DebugEndpoint:      cfg.DebugEndpointEnabled,
		RedisClient:        redisClient,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CircuitBreaker:     cfg.CircuitBreaker,
		Metrics:            metricsCollector,
		Logger:             logr,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logr.Info("push relay listening",
			slog.String("addr", srv.Addr),
			slog.Bool("firebase_initialized", dispatcher.Available()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server listen failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", slog.Any("error", err))
	}

	logr.Info("server exiting")
}

func openDeliveryLog(ctx context.Context, dsn, table string, policy retry.Policy) (*repository.DeliveryLog, error) {
	var db *gorm.DB
	err := retry.Do(ctx, policy, func(context.Context) error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return repository.NewDeliveryLog(db, table)
}

func openReportBroker(ctx context.Context, cfg *config.Config, logr *slog.Logger, policy retry.Policy) (*rabbitmq.Manager, error) {
	var mqManager *rabbitmq.Manager
	err := retry.Do(ctx, policy, func(context.Context) error {
		var dialErr error
		mqManager, dialErr = rabbitmq.NewManager(cfg.RabbitMQURL, logr)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	if err := mqManager.DeclareReportTopology(cfg.ReportExchange, cfg.ReportQueue, cfg.ReportRoutingKey); err != nil {
		mqManager.Close()
		return nil, fmt.Errorf("declare report topology: %w", err)
	}
	return mqManager, nil
}

// connectRedis accepts either a redis:// URL or a bare host:port.
func connectRedis(ctx context.Context, raw string, policy retry.Policy) (*redis.Client, error) {
	opts := &redis.Options{Addr: raw}
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
