package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberwizD/push-relay/internal/apperror"
	"github.com/CyberwizD/push-relay/internal/middleware"
	"github.com/CyberwizD/push-relay/internal/models"
)

func respondSuccess(c *gin.Context, envelope models.ResponseEnvelope) {
	envelope.Success = true
	c.JSON(http.StatusOK, envelope)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ResponseEnvelope{
		Success: false,
		Error:   message,
	})
}

// respondAppError maps err to its status code and client-facing message.
func respondAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondError(c, apperror.StatusCode(err), apperror.Message(err))
}

// request is a body that folds aliases and defaults before validation.
type request interface {
	Normalize()
}

// bindJSON decodes the request body into dst, normalizes it and runs its
// binding rules. Every failure is a validation error.
func bindJSON(c *gin.Context, dst request) error {
	if c.Request.Body == nil {
		return apperror.Validation("No JSON data provided")
	}
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("No JSON data provided")
		}
		return apperror.Validation(fmt.Sprintf("Invalid JSON payload: %v", err))
	}
	dst.Normalize()
	return models.Validate(dst)
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.CorrelationIDKey)
}
