package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/config"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sm := NewServiceManager(env.db, env.repo, env.logger, env.validator, ServiceManagerConfig{
		Auth:      config.AuthConfig{JWTSecret: "s"},
		Publisher: env.publisher,
	})

	assert.Panics(t, func() { sm.Course() })
	assert.Error(t, sm.HealthCheck(ctx))

	require.NoError(t, sm.Initialize(ctx))
	require.NoError(t, sm.Initialize(ctx))

	assert.NotNil(t, sm.Auth())
	assert.NotNil(t, sm.User())
	assert.NotNil(t, sm.Course())
	assert.NotNil(t, sm.Lecture())
	assert.NotNil(t, sm.Progress())
	assert.NotNil(t, sm.Purchase())
	assert.NotNil(t, sm.Report())
	assert.NoError(t, sm.HealthCheck(ctx))

	require.NoError(t, sm.Shutdown(ctx))
	assert.Error(t, sm.HealthCheck(ctx))
}

func TestServiceManager_RequiresAuthSecret(t *testing.T) {
	env := newTestEnv(t)
	sm := NewServiceManager(env.db, env.repo, env.logger, env.validator, ServiceManagerConfig{})
	assert.Error(t, sm.Initialize(context.Background()))
}
