package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberwizD/push-relay/internal/models"
)

func TestIdempotencyService_Enabled(t *testing.T) {
	var nilService *IdempotencyService
	assert.False(t, nilService.Enabled())
	assert.False(t, NewIdempotencyService(nil, 0).Enabled())
	assert.True(t, NewIdempotencyService(newFakeIdempotencyStore(), 0).Enabled())
}

func TestIdempotencyService_ClaimThenReplay(t *testing.T) {
	ctx := context.Background()
	svc := NewIdempotencyService(newFakeIdempotencyStore(), time.Hour)

	reply, err := svc.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, reply)

	_, err = svc.Begin(ctx, "k1")
	assert.ErrorIs(t, err, ErrRequestInFlight)

	body := models.ResponseEnvelope{Success: true, MessageID: "projects/demo/messages/1"}
	require.NoError(t, svc.Complete(ctx, "k1", http.StatusOK, body))

	reply, err = svc.Begin(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, body, reply.Body)
}

func TestIdempotencyService_FailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	svc := NewIdempotencyService(newFakeIdempotencyStore(), time.Hour)

	_, err := svc.Begin(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, "k2", http.StatusInternalServerError, models.ResponseEnvelope{}))

	reply, err := svc.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestIdempotencyService_StoreError(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.setErr = errors.New("connection refused")
	svc := NewIdempotencyService(store, time.Hour)

	_, err := svc.Begin(context.Background(), "k3")
	assert.EqualError(t, err, "connection refused")
}
