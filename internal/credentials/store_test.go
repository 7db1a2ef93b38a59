package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	file, err := NewFileBackend(filepath.Join(t.TempDir(), "portal", "credentials.json"))
	require.NoError(t, err)
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   file,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store, err := NewStore(backend)
			require.NoError(t, err)

			_, err = store.AccessToken(ctx)
			assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)

			err = store.SetPair(ctx, models.Credentials{AccessToken: "access", RefreshToken: "refresh"})
			require.NoError(t, err)
			access, err := store.AccessToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "access", access)

			require.NoError(t, store.SetAccessToken(ctx, "access2"))
			pair, err := store.Pair(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Credentials{AccessToken: "access2", RefreshToken: "refresh"}, pair)

			require.NoError(t, store.Clear(ctx))
			_, err = store.RefreshToken(ctx)
			assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)
			pair, err = store.Pair(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Credentials{}, pair)
		})
	}
}

func TestSetPairRequiresBothTokens(t *testing.T) {
	store, err := NewStore(NewMemoryBackend())
	require.NoError(t, err)

	err = store.SetPair(context.Background(), models.Credentials{AccessToken: "access"})

	assert.ErrorIs(t, err, gwerrors.ErrInvalidInput)
	assert.NotContains(t, err.Error(), "access>")
	_, err = store.AccessToken(context.Background())
	assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)
}

type failingBackend struct {
	*MemoryBackend
	failKey string
}

func (f failingBackend) Set(ctx context.Context, key string, value string) error {
	if key == f.failKey {
		return errors.New("write failed")
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestSetPairFailureLeavesNoToken(t *testing.T) {
	ctx := context.Background()
	backend := failingBackend{MemoryBackend: NewMemoryBackend(), failKey: models.RefreshTokenKey}
	store, err := NewStore(backend)
	require.NoError(t, err)

	err = store.SetPair(ctx, models.Credentials{AccessToken: "access", RefreshToken: "refresh"})

	assert.Error(t, err)
	_, err = store.AccessToken(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)
	_, err = store.RefreshToken(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrTokenNotFound)
}

func TestNewStoreWithoutBackend(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestFileBackendPermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, models.AccessTokenKey, "access"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"adminAccessToken":"access"}`, string(raw))

	require.NoError(t, backend.Remove(ctx, models.AccessTokenKey, models.RefreshTokenKey))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	// removing again is not an error
	assert.NoError(t, backend.Remove(ctx, models.AccessTokenKey))
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	_, err = backend.Get(context.Background(), models.AccessTokenKey)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, gwerrors.ErrTokenNotFound)
}
