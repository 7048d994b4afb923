package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/CyberwizD/push-relay/internal/models"
)

// IdempotencyKeyHeader lets a client retry a send without delivering twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyLockPrefix  = "push:idempotency:lock:"
	idempotencyReplyPrefix = "push:idempotency:reply:"
	defaultIdempotencyTTL  = 24 * time.Hour
)

// ErrRequestInFlight is returned when a key is claimed but its request has not finished.
var ErrRequestInFlight = errors.New("a request with this Idempotency-Key is still in progress")

// IdempotencyStore is the key/value surface the service needs.
// *repository.RedisRepository satisfies it.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StoredReply is the response recorded for a completed idempotent request.
type StoredReply struct {
	Status int                     `json:"status"`
	Body   models.ResponseEnvelope `json:"body"`
}

// IdempotencyService handles idempotency checks for the send endpoints.
type IdempotencyService struct {
	store IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyService creates a new IdempotencyService. A nil store disables it.
func NewIdempotencyService(store IdempotencyStore, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyService{store: store, ttl: ttl}
}

func (s *IdempotencyService) Enabled() bool {
	return s != nil && s.store != nil
}

// Begin claims key. A nil reply and nil error mean the caller owns the key
// and must call Complete. A finished request yields its stored reply; an
// unfinished one yields ErrRequestInFlight.
func (s *IdempotencyService) Begin(ctx context.Context, key string) (*StoredReply, error) {
	claimed, err := s.store.SetNX(ctx, idempotencyLockPrefix+key, s.ttl)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, nil
	}

	var reply StoredReply
	found, err := s.store.GetJSON(ctx, idempotencyReplyPrefix+key, &reply)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRequestInFlight
	}
	return &reply, nil
}

// Complete records the reply for key. Anything but 200 releases the claim
// so the client may retry.
func (s *IdempotencyService) Complete(ctx context.Context, key string, status int, body models.ResponseEnvelope) error {
	if status != http.StatusOK {
		return s.store.Delete(ctx, idempotencyLockPrefix+key)
	}
	return s.store.SetJSON(ctx, idempotencyReplyPrefix+key, StoredReply{Status: status, Body: body}, s.ttl)
}
