package sessions

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/parishweb/portal-gateway/internal/models"
)

type SessionMaker interface {
	NewSession(username string) (models.AdminSession, error)
}

type SessionMakerImpl struct {
	idleSessionTTLSeconds int
	maxSessionTTLSeconds  int
	idGenerator           models.IDGenerator
}

func (sm *SessionMakerImpl) NewSession(username string) (models.AdminSession, error) {
	if username == "" {
		return models.AdminSession{}, fmt.Errorf("cannot create a session without a username")
	}
	id, err := sm.idGenerator.ID()
	if err != nil {
		return models.AdminSession{}, err
	}
	session := models.AdminSession{
		ID:             id,
		Username:       username,
		CreatedAt:      time.Now().UTC(),
		IdleTTLSeconds: models.SerializableInt(sm.idleSessionTTLSeconds),
		MaxTTLSeconds:  models.SerializableInt(sm.maxSessionTTLSeconds),
	}
	session.Touch()
	slog.Info("NEW SESSION", "session", session)
	return session, nil
}

type SessionMakerOption func(*SessionMakerImpl) error

func WithIdleSessionTTLSeconds(s int) SessionMakerOption {
	return func(sm *SessionMakerImpl) error {
		if s <= 0 {
			return fmt.Errorf("the idle session TTL has to be positive")
		}
		sm.idleSessionTTLSeconds = s
		return nil
	}
}

func WithMaxSessionTTLSeconds(s int) SessionMakerOption {
	return func(sm *SessionMakerImpl) error {
		if s < 0 {
			return fmt.Errorf("the max session TTL cannot be negative")
		}
		sm.maxSessionTTLSeconds = s
		return nil
	}
}

func WithIDGenerator(g models.IDGenerator) SessionMakerOption {
	return func(sm *SessionMakerImpl) error {
		sm.idGenerator = g
		return nil
	}
}

func NewSessionMaker(options ...SessionMakerOption) (SessionMaker, error) {
	sm := SessionMakerImpl{
		idleSessionTTLSeconds: 14400,
		maxSessionTTLSeconds:  86400,
		idGenerator:           models.RandomGenerator{Length: 24},
	}
	for _, opt := range options {
		err := opt(&sm)
		if err != nil {
			return nil, err
		}
	}
	if sm.idGenerator == nil {
		return nil, fmt.Errorf("the session ID generator is not set")
	}
	return &sm, nil
}
