//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/parishweb/portal-gateway/internal/credentials"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)
	connection, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(connection)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCredentialsIntegration(t *testing.T) {
	ctx := context.Background()
	client := setupRedisContainer(t)
	adapter, err := NewRedisAdapter(WithRedisClient(client), WithEncryption("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	store, err := credentials.NewStore(adapter.CredentialsBackend("session-1", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, store.SetPair(ctx, models.Credentials{AccessToken: "access", RefreshToken: "refresh"}))
	pair, err := store.Pair(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{AccessToken: "access", RefreshToken: "refresh"}, pair)
	ttl, err := client.TTL(ctx, "credentials:session-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Clear(ctx))
	exists, err := client.Exists(ctx, "credentials:session-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
	_, err = store.AccessToken(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)
}

func TestRedisSessionIntegration(t *testing.T) {
	ctx := context.Background()
	client := setupRedisContainer(t)
	adapter, err := NewRedisAdapter(WithRedisClient(client))
	require.NoError(t, err)
	now := time.Now().UTC()
	session := models.AdminSession{
		ID:             "session-1",
		Username:       "parish-admin",
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
		IdleTTLSeconds: 3600,
	}

	require.NoError(t, adapter.SetSession(ctx, session))
	loaded, err := adapter.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "parish-admin", loaded.Username)

	require.NoError(t, adapter.RemoveSession(ctx, session.ID))
	_, err = adapter.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, gwerrors.ErrSessionNotFound)
}
