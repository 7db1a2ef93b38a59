package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/parishweb/portal-gateway/internal/admin"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/clientpool"
	"github.com/parishweb/portal-gateway/internal/config"
	"github.com/parishweb/portal-gateway/internal/credentials"
	"github.com/parishweb/portal-gateway/internal/db"
	"github.com/parishweb/portal-gateway/internal/metrics"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/public"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/sessions"
)

// components holds everything the routes of the gateway need.
type components struct {
	pool        *clientpool.Pool
	sessions    *sessions.SessionStore
	memorySess  *sessions.InMemorySessionRepository
	redis       *db.RedisAdapter
	adminServer *admin.AdminServer
	publicSrv   *public.PublicServer
}

func (c *components) Close() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		slog.Error("closing the redis client failed", "error", err)
	}
}

// expireSessions drops expired in-memory sessions together with their clients.
func (c *components) expireSessions() {
	if c.memorySess == nil {
		return
	}
	for _, id := range c.memorySess.RemoveExpired() {
		c.pool.Remove(id)
	}
}

func newComponents(gwConfig config.Config, m *metrics.Metrics) (*components, error) {
	output := components{}
	var sessionRepo sessions.SessionRepository
	var backends clientpool.BackendFactory = clientpool.MemoryBackends
	removalHandlers := []sessions.SessionStoreOption{}
	if gwConfig.Credentials.Type == config.CredentialsTypeRedis {
		redisAdapter, err := db.NewRedisAdapter(
			db.WithRedisConfig(gwConfig.Redis),
			db.WithTokenEncryption(gwConfig.Credentials.TokenEncryption),
		)
		if err != nil {
			return nil, err
		}
		output.redis = redisAdapter
		sessionRepo = redisAdapter
		backends = func(session models.AdminSession) (credentials.Backend, error) {
			return redisAdapter.CredentialsBackend(session.ID, credentialsExpiry(session)), nil
		}
		removalHandlers = append(removalHandlers, sessions.WithRemovalHandler(func(ctx context.Context, sessionID string) {
			if err := redisAdapter.RemoveCredentials(ctx, sessionID); err != nil {
				slog.Error("removing the credentials of a session failed", "error", err)
			}
		}))
	} else {
		output.memorySess = sessions.NewInMemorySessionRepository()
		sessionRepo = output.memorySess
	}

	httpClient := &http.Client{Timeout: gwConfig.RemoteAPI.Timeout()}
	baseURL := gwConfig.RemoteAPI.BaseURL.String()
	pool, err := clientpool.NewPool(clientpool.WithFactory(clientpool.ClientFactory(
		backends,
		apiclient.WithBaseURL(baseURL),
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithRefreshPath(gwConfig.RemoteAPI.RefreshPath),
		apiclient.WithLoginRoute(gwConfig.RemoteAPI.LoginRoute),
		apiclient.WithObserver(m),
	)))
	if err != nil {
		return nil, err
	}
	output.pool = pool

	sessionOptions := []sessions.SessionStoreOption{
		sessions.WithSessionRepository(sessionRepo),
		sessions.WithConfig(gwConfig.Sessions),
		sessions.WithRemovalHandler(func(_ context.Context, sessionID string) { pool.Remove(sessionID) }),
	}
	sessionStore, err := sessions.NewSessionStore(append(sessionOptions, removalHandlers...)...)
	if err != nil {
		return nil, err
	}
	output.sessions = sessionStore

	anonymous, err := apiclient.NewClient(apiclient.WithBaseURL(baseURL), apiclient.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	loginAPI, err := remoteapi.NewClient(anonymous)
	if err != nil {
		return nil, err
	}
	output.adminServer, err = admin.NewAdminServer(
		admin.WithSessionStore(sessionStore),
		admin.WithClientPool(pool),
		admin.WithLoginClient(loginAPI),
		admin.WithLoginRecorder(m),
		admin.WithLoginRoute(gwConfig.RemoteAPI.LoginRoute),
	)
	if err != nil {
		return nil, err
	}

	publicOptions := []apiclient.ClientOption{apiclient.WithBaseURL(baseURL), apiclient.WithHTTPClient(httpClient)}
	if !gwConfig.RemoteAPI.PublicToken.Empty() {
		publicOptions = append(publicOptions, apiclient.WithStaticToken(string(gwConfig.RemoteAPI.PublicToken)))
	}
	publicClient, err := apiclient.NewClient(publicOptions...)
	if err != nil {
		return nil, err
	}
	publicAPI, err := remoteapi.NewClient(publicClient)
	if err != nil {
		return nil, err
	}
	output.publicSrv, err = public.NewPublicServer(
		public.WithAPIClient(publicAPI),
		public.WithNotificationEmail(gwConfig.Public.NotificationEmail),
	)
	if err != nil {
		return nil, err
	}
	return &output, nil
}

// credentialsExpiry is when redis can drop the stored credentials of a session. Sessions
// without a maximum lifetime keep them until they are removed explicitly.
func credentialsExpiry(session models.AdminSession) time.Time {
	if session.MaxTTLSeconds > 0 {
		return session.CreatedAt.Add(session.MaxTTL())
	}
	return time.Time{}
}
