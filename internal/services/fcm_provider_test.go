package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberwizD/push-relay/pkg/logger"
)

func TestParseServiceAccount(t *testing.T) {
	sa, err := ParseServiceAccount(`{"type":"service_account","project_id":"demo-app","client_email":"relay@demo-app.iam.gserviceaccount.com"}`)
	require.NoError(t, err)
	assert.Equal(t, "demo-app", sa.ProjectID)
	assert.Equal(t, "service_account", sa.Type)

	_, err = ParseServiceAccount("")
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = ParseServiceAccount("{not json")
	assert.Error(t, err)
}

func TestInspectCredentials(t *testing.T) {
	status := InspectCredentials(`{"project_id":"demo-app"}`)
	assert.True(t, status.EnvVarExists)
	assert.Equal(t, 25, status.EnvVarLength)
	require.NotNil(t, status.ProjectID)
	assert.Equal(t, "demo-app", *status.ProjectID)

	status = InspectCredentials("")
	assert.False(t, status.EnvVarExists)
	assert.Zero(t, status.EnvVarLength)
	assert.Nil(t, status.ProjectID)

	status = InspectCredentials("garbage")
	assert.True(t, status.EnvVarExists)
	assert.Nil(t, status.ProjectID)
}

func TestBootstrap_FailuresYieldNilMessenger(t *testing.T) {
	log := logger.Discard()

	assert.Nil(t, Bootstrap(context.Background(), "FIREBASE_SERVICE_ACCOUNT", "", log))
	assert.Nil(t, Bootstrap(context.Background(), "FIREBASE_SERVICE_ACCOUNT", "{broken", log))
	// Valid JSON that is not a usable credential is rejected by the oauth2 loader.
	assert.Nil(t, Bootstrap(context.Background(), "FIREBASE_SERVICE_ACCOUNT", `{"project_id":"demo"}`, log))
}
