package sessions

import (
	"context"

	"github.com/parishweb/portal-gateway/internal/models"
)

type SessionRepository interface {
	SessionGetter
	SessionSetter
	SessionRemover
}

type SessionGetter interface {
	GetSession(ctx context.Context, sessionID string) (models.AdminSession, error)
}

type SessionSetter interface {
	SetSession(ctx context.Context, session models.AdminSession) error
}

type SessionRemover interface {
	RemoveSession(ctx context.Context, sessionID string) error
}
