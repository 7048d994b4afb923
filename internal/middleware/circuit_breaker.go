package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/CyberwizD/push-relay/internal/apperror"
)

// NewCircuitBreaker trips after five consecutive failed send requests and
// half-opens again after timeout.
func NewCircuitBreaker(name string, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// CircuitBreakerMiddleware counts provider errors recorded on the context
// as failures and rejects requests with 503 while the breaker is open. An
// uninitialized provider and per-recipient rejections do not count.
func CircuitBreakerMiddleware(cb *gobreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := cb.Execute(func() (interface{}, error) {
			c.Next()
			for _, ginErr := range c.Errors {
				if apperror.KindOf(ginErr.Err) == apperror.KindProvider {
					return nil, ginErr.Err
				}
			}
			return nil, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			abort(c, http.StatusServiceUnavailable, "service is unavailable")
		}
	}
}
