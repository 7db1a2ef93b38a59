package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/redis/go-redis/v9"
)

const (
	credentialsPrefix string = "credentials"
)

// RedisCredentialsBackend keeps the credential pair of one admin session as fields of a redis hash.
type RedisCredentialsBackend struct {
	adapter   RedisAdapter
	key       string
	expiresAt time.Time
}

// CredentialsBackend returns the credential storage of a session. The stored values expire with
// the session when expiresAt is not zero.
func (r RedisAdapter) CredentialsBackend(sessionID string, expiresAt time.Time) *RedisCredentialsBackend {
	return &RedisCredentialsBackend{adapter: r, key: r.credentialsKey(sessionID), expiresAt: expiresAt}
}

// RemoveCredentials drops the whole credential hash of a session.
func (r RedisAdapter) RemoveCredentials(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.credentialsKey(sessionID)).Err()
}

func (RedisAdapter) credentialsKey(sessionID string) string {
	return credentialsPrefix + ":" + sessionID
}

func (b *RedisCredentialsBackend) Get(ctx context.Context, field string) (string, error) {
	raw, err := b.adapter.rdb.HGet(ctx, b.key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", gwerrors.ErrTokenNotFound
		}
		return "", err
	}
	return b.adapter.decrypt(raw)
}

func (b *RedisCredentialsBackend) Set(ctx context.Context, field string, value string) error {
	enc, err := b.adapter.encrypt(value)
	if err != nil {
		return err
	}
	slog.Debug(
		"TOKEN STORE",
		"message",
		"saving token",
		"field",
		field,
	)
	err = b.adapter.rdb.HSet(ctx, b.key, field, enc).Err()
	if err != nil {
		return err
	}
	if b.expiresAt.IsZero() {
		return nil
	}
	return b.adapter.rdb.ExpireAt(ctx, b.key, b.expiresAt.Add(expiresAtLeeway)).Err()
}

// Remove deletes the fields with a single HDEL so the pair is never half removed.
func (b *RedisCredentialsBackend) Remove(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return b.adapter.rdb.HDel(ctx, b.key, fields...).Err()
}
