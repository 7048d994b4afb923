package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CyberwizD/push-relay/internal/repository"
	"github.com/CyberwizD/push-relay/internal/services"
)

// DeliveryStore reads back recorded delivery reports.
type DeliveryStore interface {
	Get(ctx context.Context, requestID string) (*repository.DeliveryRecord, error)
}

// StatusHandler serves the read-only status endpoints.
type StatusHandler struct {
	dispatcher  *services.Dispatcher
	version     string
	credentials func() string
	deliveries  DeliveryStore
}

// NewStatusHandler creates a StatusHandler. credentials returns the raw
// credential document at call time; deliveries may be nil.
func NewStatusHandler(dispatcher *services.Dispatcher, version string, credentials func() string, deliveries DeliveryStore) *StatusHandler {
	return &StatusHandler{
		dispatcher:  dispatcher,
		version:     version,
		credentials: credentials,
		deliveries:  deliveries,
	}
}

func (h *StatusHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "online",
		"message":              "FCM Notification Server is running",
		"firebase_initialized": h.dispatcher.Available(),
		"version":              h.version,
	})
}

func (h *StatusHandler) Health(c *gin.Context) {
	status, firebase := "healthy", "connected"
	if !h.dispatcher.Available() {
		status, firebase = "unhealthy", "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"firebase": firebase,
	})
}

// Debug reports on the credential variable without revealing its contents.
func (h *StatusHandler) Debug(c *gin.Context) {
	creds := services.InspectCredentials(h.credentials())
	c.JSON(http.StatusOK, gin.H{
		"firebase_initialized": h.dispatcher.Available(),
		"env_var_exists":       creds.EnvVarExists,
		"env_var_length":       creds.EnvVarLength,
		"project_id":           creds.ProjectID,
	})
}

// GetDelivery returns the recorded outcome of a previous send request.
func (h *StatusHandler) GetDelivery(c *gin.Context) {
	if h.deliveries == nil {
		respondError(c, http.StatusNotFound, "delivery log is disabled")
		return
	}

	id := c.Param("request_id")
	rec, err := h.deliveries.Get(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"request_id": rec.RequestID,
		"endpoint":   rec.Endpoint,
		"mode":       rec.Mode,
		"status":     rec.Status,
		"successful": rec.Successful,
		"failed":     rec.Failed,
		"updated_at": rec.UpdatedAt,
	})
}
