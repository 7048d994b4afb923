package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CyberwizD/push-relay/internal/models"
	"github.com/CyberwizD/push-relay/internal/services"
)

// claimIdempotency returns the claimed key, scoped to the route, or "" when
// the request carries no Idempotency-Key. done is true when a response has
// already been written.
func claimIdempotency(c *gin.Context, idem *services.IdempotencyService) (key string, done bool) {
	key = strings.TrimSpace(c.GetHeader(services.IdempotencyKeyHeader))
	if key == "" || !idem.Enabled() {
		return "", false
	}
	key = c.FullPath() + ":" + key

	reply, err := idem.Begin(c.Request.Context(), key)
	switch {
	case errors.Is(err, services.ErrRequestInFlight):
		respondError(c, http.StatusConflict, err.Error())
		return "", true
	case err != nil:
		// Store unavailable: serve the request without idempotency.
		_ = c.Error(err)
		return "", false
	case reply != nil:
		c.Header("Idempotent-Replayed", "true")
		c.JSON(reply.Status, reply.Body)
		return "", true
	}
	return key, false
}

// settleIdempotency records the outcome of a claimed request.
func settleIdempotency(c *gin.Context, idem *services.IdempotencyService, key string, status int, body models.ResponseEnvelope) {
	if key == "" {
		return
	}
	if err := idem.Complete(c.Request.Context(), key, status, body); err != nil {
		_ = c.Error(err)
	}
}
