package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberwizD/push-relay/internal/apperror"
	"github.com/CyberwizD/push-relay/internal/models"
	"github.com/CyberwizD/push-relay/internal/services"
)

// NotificationHandler serves the standard and batch send endpoints.
type NotificationHandler struct {
	dispatcher  *services.Dispatcher
	reporter    *services.Reporter
	idempotency *services.IdempotencyService
}

// NewNotificationHandler creates a new NotificationHandler. reporter and
// idempotency may be nil.
func NewNotificationHandler(dispatcher *services.Dispatcher, reporter *services.Reporter, idempotency *services.IdempotencyService) *NotificationHandler {
	return &NotificationHandler{
		dispatcher:  dispatcher,
		reporter:    reporter,
		idempotency: idempotency,
	}
}

// SendNotification sends one provider message per token.
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	h.send(c, models.ModeEach, h.dispatcher.SendEach)
}

// SendBatchNotification sends a single multicast message for all tokens.
func (h *NotificationHandler) SendBatchNotification(c *gin.Context) {
	h.send(c, models.ModeMulticast, h.dispatcher.SendMulticast)
}

type sendFunc func(ctx context.Context, req *models.NotificationRequest) (models.SendResults, error)

func (h *NotificationHandler) send(c *gin.Context, mode string, fn sendFunc) {
	if !h.dispatcher.Available() {
		respondAppError(c, apperror.Unavailable(services.ErrNotInitialized))
		return
	}

	var req models.NotificationRequest
	if err := bindJSON(c, &req); err != nil {
		respondAppError(c, err)
		return
	}

	key, done := claimIdempotency(c, h.idempotency)
	if done {
		return
	}

	results, err := fn(c.Request.Context(), &req)
	if err != nil {
		settleIdempotency(c, h.idempotency, key, apperror.StatusCode(err), models.ResponseEnvelope{})
		respondAppError(c, err)
		return
	}

	h.reporter.Report(c.Request.Context(), models.NewDeliveryReport(
		requestID(c), c.FullPath(), mode, services.ProviderName, results,
	))

	envelope := models.ResponseEnvelope{Success: true, Results: &results}
	settleIdempotency(c, h.idempotency, key, http.StatusOK, envelope)
	respondSuccess(c, envelope)
}
