// Package credentials persists the admin token pair issued by the remote API.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
)

// Backend is a key value storage for the token pair.
type Backend interface {
	// Get returns gwerrors.ErrTokenNotFound when the key is absent
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Remove deletes all the keys in one operation
	Remove(ctx context.Context, keys ...string) error
}

// Store reads and writes the admin credential pair through a Backend.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("the credentials backend is not set")
	}
	return &Store{backend: backend}, nil
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.backend.Get(ctx, models.AccessTokenKey)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.backend.Get(ctx, models.RefreshTokenKey)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.backend.Set(ctx, models.AccessTokenKey, token)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.backend.Set(ctx, models.RefreshTokenKey, token)
}

// SetPair stores the pair returned by a login.
func (s *Store) SetPair(ctx context.Context, creds models.Credentials) error {
	if !creds.Complete() {
		return fmt.Errorf("%w: both tokens are required, got %s", gwerrors.ErrInvalidInput, creds)
	}
	err := s.backend.Set(ctx, models.AccessTokenKey, creds.AccessToken)
	if err != nil {
		return err
	}
	err = s.backend.Set(ctx, models.RefreshTokenKey, creds.RefreshToken)
	if err != nil {
		// both tokens or none
		return errors.Join(err, s.Clear(ctx))
	}
	return nil
}

// Pair returns the stored pair, absent tokens are left empty.
func (s *Store) Pair(ctx context.Context) (models.Credentials, error) {
	access, err := s.AccessToken(ctx)
	if err != nil && !errors.Is(err, gwerrors.ErrTokenNotFound) {
		return models.Credentials{}, err
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil && !errors.Is(err, gwerrors.ErrTokenNotFound) {
		return models.Credentials{}, err
	}
	return models.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Remove(ctx, models.AccessTokenKey, models.RefreshTokenKey)
}
