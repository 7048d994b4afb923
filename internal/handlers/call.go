package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberwizD/push-relay/internal/apperror"
	"github.com/CyberwizD/push-relay/internal/models"
	"github.com/CyberwizD/push-relay/internal/services"
)

// CallHandler serves the call alert endpoints.
type CallHandler struct {
	dispatcher  *services.Dispatcher
	reporter    *services.Reporter
	idempotency *services.IdempotencyService
}

func NewCallHandler(dispatcher *services.Dispatcher, reporter *services.Reporter, idempotency *services.IdempotencyService) *CallHandler {
	return &CallHandler{
		dispatcher:  dispatcher,
		reporter:    reporter,
		idempotency: idempotency,
	}
}

// SendCallNotification alerts a single device about an incoming call.
func (h *CallHandler) SendCallNotification(c *gin.Context) {
	if !h.dispatcher.Available() {
		respondAppError(c, apperror.Unavailable(services.ErrNotInitialized))
		return
	}

	var req models.CallNotificationRequest
	if err := bindJSON(c, &req); err != nil {
		respondAppError(c, err)
		return
	}

	key, done := claimIdempotency(c, h.idempotency)
	if done {
		return
	}

	id, data, err := h.dispatcher.NotifyCall(c.Request.Context(), &req)
	h.report(c, models.ModeCallNotify, req.TargetToken, id, err)
	if err != nil {
		settleIdempotency(c, h.idempotency, key, apperror.StatusCode(err), models.ResponseEnvelope{})
		respondAppError(c, err)
		return
	}

	h.succeed(c, key, models.ResponseEnvelope{
		MessageID: id,
		Data:      data,
	})
}

// CancelCallNotification withdraws a previously sent call alert.
func (h *CallHandler) CancelCallNotification(c *gin.Context) {
	if !h.dispatcher.Available() {
		respondAppError(c, apperror.Unavailable(services.ErrNotInitialized))
		return
	}

	var req models.CancelCallRequest
	if err := bindJSON(c, &req); err != nil {
		respondAppError(c, err)
		return
	}

	key, done := claimIdempotency(c, h.idempotency)
	if done {
		return
	}

	id, err := h.dispatcher.CancelCall(c.Request.Context(), &req)
	h.report(c, models.ModeCallCancel, req.TargetToken, id, err)
	if err != nil {
		settleIdempotency(c, h.idempotency, key, apperror.StatusCode(err), models.ResponseEnvelope{})
		respondAppError(c, err)
		return
	}

	h.succeed(c, key, models.ResponseEnvelope{
		Message:   "Call cancelled notification sent",
		MessageID: id,
	})
}

func (h *CallHandler) succeed(c *gin.Context, key string, envelope models.ResponseEnvelope) {
	envelope.Success = true
	settleIdempotency(c, h.idempotency, key, http.StatusOK, envelope)
	respondSuccess(c, envelope)
}

func (h *CallHandler) report(c *gin.Context, mode, token, messageID string, err error) {
	if !h.reporter.Enabled() {
		return
	}
	detail := models.Delivered(token, messageID)
	if err != nil {
		detail = models.Undelivered(token, apperror.Message(err))
	}
	results := models.NewSendResults([]models.DeliveryResult{detail})
	h.reporter.Report(c.Request.Context(), models.NewDeliveryReport(
		requestID(c), c.FullPath(), mode, services.ProviderName, results,
	))
}
