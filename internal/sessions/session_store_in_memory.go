package sessions

import (
	"context"
	"sync"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
)

// InMemorySessionRepository keeps admin sessions in the memory of a single gateway instance.
type InMemorySessionRepository struct {
	lock     *sync.RWMutex
	sessions map[string]models.AdminSession
}

func (db *InMemorySessionRepository) GetSession(ctx context.Context, id string) (models.AdminSession, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	session, found := db.sessions[id]
	if !found {
		return models.AdminSession{}, gwerrors.ErrSessionNotFound
	}
	return session, nil
}

func (db *InMemorySessionRepository) SetSession(ctx context.Context, session models.AdminSession) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.sessions[session.ID] = session
	return nil
}

func (db *InMemorySessionRepository) RemoveSession(ctx context.Context, id string) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	delete(db.sessions, id)
	return nil
}

// RemoveExpired drops expired sessions and returns their IDs.
func (db *InMemorySessionRepository) RemoveExpired() []string {
	db.lock.Lock()
	defer db.lock.Unlock()
	removed := []string{}
	for id, session := range db.sessions {
		if session.Expired() {
			delete(db.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{lock: &sync.RWMutex{}, sessions: map[string]models.AdminSession{}}
}
