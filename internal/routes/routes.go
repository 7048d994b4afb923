package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/CyberwizD/push-relay/internal/handlers"
	"github.com/CyberwizD/push-relay/internal/middleware"
	"github.com/CyberwizD/push-relay/internal/services"
	"github.com/CyberwizD/push-relay/pkg/metrics"
)

// Options configures the route table. Zero values disable the optional parts.
type Options struct {
	APIKey             string
	CORSAllowOrigins   []string
	DebugEndpoint      bool
	RedisClient        *redis.Client
	RateLimitPerMinute int
	CircuitBreaker     bool
	Metrics            *metrics.Collector
	Logger             *slog.Logger
}

// NewRouter builds the gin engine with middleware and every relay route.
func NewRouter(
	notificationHandler *handlers.NotificationHandler,
	callHandler *handlers.CallHandler,
	statusHandler *handlers.StatusHandler,
	opts Options,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		opts.Logger.Error("panic recovered", slog.Any("panic", recovered), slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}))
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.LoggerMiddleware(opts.Logger))
	router.Use(cors.New(corsConfig(opts.CORSAllowOrigins)))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/", statusHandler.Home)
	router.GET("/health", statusHandler.Health)
	if opts.DebugEndpoint {
		router.GET("/debug", statusHandler.Debug)
	}

	send := router.Group("/")
	send.Use(middleware.AuthMiddleware(opts.APIKey))
	if opts.RedisClient != nil && opts.RateLimitPerMinute > 0 {
		send.Use(middleware.RateLimitMiddleware(opts.RedisClient, opts.RateLimitPerMinute, time.Minute, opts.Logger))
	}
	if opts.CircuitBreaker {
		cb := middleware.NewCircuitBreaker("push-relay-send", 30*time.Second, opts.Logger)
		send.Use(middleware.CircuitBreakerMiddleware(cb))
	}
	{
		send.POST("/send-notification", notificationHandler.SendNotification)
		send.POST("/send-batch-notification", notificationHandler.SendBatchNotification)
		send.POST("/send-call-notification", callHandler.SendCallNotification)
		send.POST("/cancel-call-notification", callHandler.CancelCallNotification)
	}

	deliveries := router.Group("/deliveries")
	deliveries.Use(middleware.AuthMiddleware(opts.APIKey))
	deliveries.GET("/:request_id", statusHandler.GetDelivery)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader, services.IdempotencyKeyHeader},
		ExposeHeaders: []string{middleware.CorrelationIDHeader, "Retry-After", "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
