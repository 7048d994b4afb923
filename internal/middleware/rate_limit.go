package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimitMiddleware allows limit requests per client IP per window, counted
// in Redis. Redis errors let the request through.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate_limit:" + c.ClientIP()

		pipe := redisClient.Pipeline()
		incr := pipe.Incr(c, key)
		pipe.Expire(c, key, window)
		if _, err := pipe.Exec(c); err != nil {
			logger.Warn("rate limit check failed", slog.Any("error", err))
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			c.Header("Retry-After", formatSeconds(window))
			abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		c.Next()
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Round(time.Second).Seconds()))
}
