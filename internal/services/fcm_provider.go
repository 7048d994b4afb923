package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// ErrCredentialsMissing is returned when the credential variable is unset or empty.
var ErrCredentialsMissing = errors.New("service account credentials are missing")

var fcmScopes = []string{
	"https://www.googleapis.com/auth/firebase.messaging",
	"https://www.googleapis.com/auth/cloud-platform",
}

// ServiceAccount holds the identifying fields of a service-account document.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// ParseServiceAccount decodes the JSON credential document.
func ParseServiceAccount(raw string) (*ServiceAccount, error) {
	if raw == "" {
		return nil, ErrCredentialsMissing
	}
	var sa ServiceAccount
	if err := json.Unmarshal([]byte(raw), &sa); err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	return &sa, nil
}

// NewFCMMessenger builds an FCM client bound to the given service-account JSON.
func NewFCMMessenger(ctx context.Context, raw string) (*messaging.Client, *ServiceAccount, error) {
	sa, err := ParseServiceAccount(raw)
	if err != nil {
		return nil, nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(raw), fcmScopes...)
	if err != nil {
		return nil, sa, fmt.Errorf("load credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: sa.ProjectID}, option.WithCredentials(creds))
	if err != nil {
		return nil, sa, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, sa, fmt.Errorf("initialize messaging client: %w", err)
	}
	return client, sa, nil
}

// Bootstrap initializes the messenger from the credential document. Any
// failure is logged and yields a nil Messenger; the relay keeps serving
// status endpoints and reports sends as unavailable.
func Bootstrap(ctx context.Context, envVar, raw string, logger *slog.Logger) Messenger {
	if raw == "" {
		logger.Error("firebase credentials missing", slog.String("env_var", envVar))
		return nil
	}
	logger.Info("firebase credentials found", slog.String("env_var", envVar), slog.Int("length", len(raw)))

	client, sa, err := NewFCMMessenger(ctx, raw)
	if err != nil {
		logger.Error("failed to initialize firebase", slog.String("env_var", envVar), slog.Any("error", err))
		return nil
	}

	logger.Info("firebase initialized", slog.String("project_id", sa.ProjectID))
	return client
}

// CredentialStatus describes the credential variable without exposing it.
type CredentialStatus struct {
	EnvVarExists bool
	EnvVarLength int
	ProjectID    *string
}

// InspectCredentials reports presence, length and embedded project id of raw.
// A malformed document yields a nil ProjectID.
func InspectCredentials(raw string) CredentialStatus {
	status := CredentialStatus{
		EnvVarExists: raw != "",
		EnvVarLength: len(raw),
	}
	if sa, err := ParseServiceAccount(raw); err == nil && sa.ProjectID != "" {
		status.ProjectID = &sa.ProjectID
	}
	return status
}
