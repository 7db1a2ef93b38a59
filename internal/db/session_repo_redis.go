package db

import (
	"context"
	"errors"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
)

const (
	sessionPrefix string = "session"
)

func (r RedisAdapter) GetSession(ctx context.Context, sessionID string) (models.AdminSession, error) {
	output := models.AdminSession{}
	// NOTE: HGETALL will return an empty list of hash-keys and hash-values if the key is not found
	// then this is deserialized as an empty (zero-valued) struct
	raw, err := r.rdb.HGetAll(
		ctx,
		r.sessionKey(sessionID),
	).Result()
	if err != nil {
		return output, err
	}
	err = r.deserializeToStruct(raw, &output)
	if err != nil {
		if errors.Is(err, gwerrors.ErrMissingDBResource) {
			err = gwerrors.ErrSessionNotFound
		}
		return models.AdminSession{}, err
	}
	return output, nil
}

func (r RedisAdapter) SetSession(ctx context.Context, session models.AdminSession) error {
	key := r.sessionKey(session.ID)
	err := r.rdb.HSet(
		ctx,
		key,
		r.serializeStruct(session)...,
	).Err()
	if err != nil {
		return err
	}
	return r.rdb.ExpireAt(ctx, key, session.ExpiresAt.Add(expiresAtLeeway)).Err()
}

func (r RedisAdapter) RemoveSession(ctx context.Context, sessionID string) error {
	return r.rdb.Del(
		ctx,
		r.sessionKey(sessionID),
	).Err()
}

func (RedisAdapter) sessionKey(sessionID string) string {
	return sessionPrefix + ":" + sessionID
}
