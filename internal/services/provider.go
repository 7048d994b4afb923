package services

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/CyberwizD/push-relay/internal/models"
)

// ProviderName identifies FCM in logs and delivery reports.
const ProviderName = "fcm"

// Messenger is the subset of the FCM client used by the relay.
// *messaging.Client satisfies it.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// ReportSink receives a summary of every send request.
type ReportSink interface {
	Report(ctx context.Context, report *models.DeliveryReport) error
}

// TokenCache tracks tokens the provider has reported as unregistered.
type TokenCache interface {
	IsTokenSuppressed(ctx context.Context, token string) (bool, error)
	SuppressToken(ctx context.Context, token string, ttl time.Duration) error
}
