// Package clientpool keeps one authenticated API client per admin session, so that the
// requests of a session share a single refresh coordinator.
package clientpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/credentials"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/utils"
)

type Entry struct {
	Client      *apiclient.Client
	Credentials *credentials.Store
	lastUsed    time.Time
}

// Factory builds the client and credential store of a session.
type Factory func(session models.AdminSession) (*apiclient.Client, *credentials.Store, error)

// BackendFactory returns where the credentials of a session are kept.
type BackendFactory func(session models.AdminSession) (credentials.Backend, error)

type Pool struct {
	lock    sync.Mutex
	entries map[string]*Entry
	factory Factory
	now     func() time.Time
}

// Get returns the entry of the session, creating it on first use.
func (p *Pool) Get(session models.AdminSession) (*Entry, error) {
	if session.ID == "" {
		return nil, fmt.Errorf("cannot get an API client for a session without an ID")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	entry, found := p.entries[session.ID]
	if !found {
		// runs under the pool lock, factories must not do I/O
		client, store, err := p.factory(session)
		if err != nil {
			return nil, err
		}
		entry = &Entry{Client: client, Credentials: store}
		p.entries[session.ID] = entry
	}
	entry.lastUsed = p.now()
	return entry, nil
}

func (p *Pool) Remove(sessionID string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	delete(p.entries, sessionID)
}

func (p *Pool) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.entries)
}

// EvictIdle drops the entries that were not used for longer than olderThan and returns how many were dropped.
func (p *Pool) EvictIdle(olderThan time.Duration) int {
	p.lock.Lock()
	defer p.lock.Unlock()
	cutoff := p.now().Add(-olderThan)
	evicted := 0
	for id, entry := range p.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(p.entries, id)
			evicted++
		}
	}
	return evicted
}

// GetScheduler returns a scheduler that evicts idle clients every minute, it still has to be started.
func (p *Pool) GetScheduler(maxIdle time.Duration) (*gocron.Scheduler, error) {
	if maxIdle <= 0 {
		return nil, fmt.Errorf("invalid max idle duration %s", maxIdle)
	}
	s := gocron.NewScheduler(time.UTC)
	evictTask := func() {
		evicted := p.EvictIdle(maxIdle)
		if evicted > 0 {
			slog.Info("CLIENT POOL", "message", "evicted idle API clients", "count", evicted, "remaining", p.Len())
		}
	}
	_, err := s.Every(1).
		Minutes().
		Do(evictTask)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type PoolOption func(*Pool) error

func WithFactory(factory Factory) PoolOption {
	return func(p *Pool) error {
		p.factory = factory
		return nil
	}
}

func withClock(now func() time.Time) PoolOption {
	return func(p *Pool) error {
		p.now = now
		return nil
	}
}

func NewPool(options ...PoolOption) (*Pool, error) {
	p := Pool{entries: map[string]*Entry{}, now: time.Now}
	for _, opt := range options {
		err := opt(&p)
		if err != nil {
			return nil, err
		}
	}
	if p.factory == nil {
		return nil, fmt.Errorf("the client factory is not set")
	}
	return &p, nil
}

// ClientFactory builds a credential store over the backend of the session and an authenticated
// client that uses it. A forced logout is logged with the username.
func ClientFactory(backends BackendFactory, options ...apiclient.ClientOption) Factory {
	return func(session models.AdminSession) (*apiclient.Client, *credentials.Store, error) {
		backend, err := backends(session)
		if err != nil {
			return nil, nil, err
		}
		store, err := credentials.NewStore(backend)
		if err != nil {
			return nil, nil, err
		}
		username := session.Username
		clientOptions := append([]apiclient.ClientOption{}, options...)
		clientOptions = append(
			clientOptions,
			apiclient.WithCredentialStore(store),
			apiclient.WithLogoutHandler(func(ctx context.Context, loginRoute string, cause error) {
				slog.Info(
					"CLIENT POOL",
					"message",
					"the admin session was logged out",
					"username",
					username,
					"loginRoute",
					loginRoute,
					"cause",
					cause,
					"requestID",
					utils.RequestIDFromContext(ctx),
				)
			}),
		)
		client, err := apiclient.NewClient(clientOptions...)
		if err != nil {
			return nil, nil, err
		}
		return client, store, nil
	}
}

// MemoryBackends gives every session its own in-memory credential backend.
func MemoryBackends(models.AdminSession) (credentials.Backend, error) {
	return credentials.NewMemoryBackend(), nil
}
