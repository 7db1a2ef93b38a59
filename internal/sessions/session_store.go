// Package sessions keeps track of logged in administrators. The session ID travels in a cookie
// and namespaces the credential pair stored for the administrator.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/config"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/utils"
)

// RemovalHandler is called after a session was deleted, it cleans up what belongs to the session.
type RemovalHandler func(ctx context.Context, sessionID string)

type SessionStore struct {
	cookieTemplate func() http.Cookie
	sessionMaker   SessionMaker
	sessionRepo    SessionRepository
	onRemove       []RemovalHandler
}

func (sessions *SessionStore) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, loadErr := sessions.Get(c)
			if loadErr != nil && !isMissing(loadErr) {
				slog.Info(
					"SESSION MIDDLEWARE",
					"message",
					"could not load session",
					"error",
					loadErr,
					"requestID",
					utils.GetRequestID(c),
				)
			}
			if loadErr == nil {
				c.Set(SessionCtxKey, session)
			}
			err := next(c)
			saveErr := sessions.Save(c)
			if saveErr != nil && !isMissing(saveErr) {
				slog.Info(
					"SESSION MIDDLEWARE",
					"message",
					"could not save session",
					"error",
					saveErr,
					"requestID",
					utils.GetRequestID(c),
				)
			}
			return err
		}
	}
}

func isMissing(err error) bool {
	return errors.Is(err, gwerrors.ErrSessionNotFound) || errors.Is(err, gwerrors.ErrSessionExpired)
}

// getFromContext retrieves a session from the current context
func (sessions *SessionStore) getFromContext(c echo.Context) (*models.AdminSession, error) {
	sessionRaw := c.Get(SessionCtxKey)
	if sessionRaw == nil {
		return nil, gwerrors.ErrSessionNotFound
	}
	session, ok := sessionRaw.(*models.AdminSession)
	if !ok {
		return nil, gwerrors.ErrSessionParse
	}
	if session == nil || session.ID == "" {
		return nil, gwerrors.ErrSessionNotFound
	}
	if session.Expired() {
		return nil, gwerrors.ErrSessionExpired
	}
	return session, nil
}

func (sessions *SessionStore) cookieSessionID(c echo.Context) (string, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	return cookie.Value, nil
}

// Get returns the session of the current request and extends its idle expiry.
func (sessions *SessionStore) Get(c echo.Context) (*models.AdminSession, error) {
	session, err := sessions.getFromContext(c)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, gwerrors.ErrSessionParse) {
		return nil, err
	}
	sessionID, err := sessions.cookieSessionID(c)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, gwerrors.ErrSessionNotFound
	}
	sessionFromStore, err := sessions.sessionRepo.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return nil, err
	}
	if sessionFromStore.ID == "" {
		return nil, gwerrors.ErrSessionNotFound
	}
	if sessionFromStore.Expired() {
		return nil, gwerrors.ErrSessionExpired
	}
	session = &sessionFromStore
	session.Touch()
	return session, nil
}

// Create starts a new session for username, persists it and sets the session cookie.
func (sessions *SessionStore) Create(c echo.Context, username string) (*models.AdminSession, error) {
	session, err := sessions.sessionMaker.NewSession(username)
	if err != nil {
		return nil, err
	}
	err = sessions.sessionRepo.SetSession(c.Request().Context(), session)
	if err != nil {
		return nil, err
	}
	c.Set(SessionCtxKey, &session)
	cookie := sessions.Cookie(session)
	c.SetCookie(&cookie)
	return &session, nil
}

func (sessions *SessionStore) Save(c echo.Context) error {
	session, err := sessions.getFromContext(c)
	if err != nil {
		return err
	}
	return sessions.sessionRepo.SetSession(c.Request().Context(), *session)
}

// Delete removes the session of the current request, clears the cookie and runs the removal handlers.
func (sessions *SessionStore) Delete(c echo.Context) error {
	sessionID := ""
	if session, err := sessions.getFromContext(c); err == nil {
		sessionID = session.ID
	}
	if sessionID == "" {
		var err error
		sessionID, err = sessions.cookieSessionID(c)
		if err != nil {
			return err
		}
	}

	newCookie := sessions.cookieTemplate()
	newCookie.MaxAge = -1
	c.SetCookie(&newCookie)
	c.Set(SessionCtxKey, &models.AdminSession{})

	if sessionID == "" {
		return nil
	}
	return sessions.Remove(c.Request().Context(), sessionID)
}

// Remove deletes a session by ID, for sessions that end outside of a request.
func (sessions *SessionStore) Remove(ctx context.Context, sessionID string) error {
	err := sessions.sessionRepo.RemoveSession(ctx, sessionID)
	for _, handler := range sessions.onRemove {
		handler(ctx, sessionID)
	}
	return err
}

func (sessions *SessionStore) Cookie(session models.AdminSession) http.Cookie {
	cookie := sessions.cookieTemplate()
	cookie.Value = session.ID
	if session.MaxTTLSeconds > 0 {
		cookie.Expires = session.CreatedAt.Add(session.MaxTTL())
	}
	return cookie
}

type SessionStoreOption func(*SessionStore) error

func WithSessionRepository(repo SessionRepository) SessionStoreOption {
	return func(sessions *SessionStore) error {
		sessions.sessionRepo = repo
		return nil
	}
}

func WithSessionMaker(maker SessionMaker) SessionStoreOption {
	return func(sessions *SessionStore) error {
		sessions.sessionMaker = maker
		return nil
	}
}

func WithCookieTemplate(f func() http.Cookie) SessionStoreOption {
	return func(sessions *SessionStore) error {
		sessions.cookieTemplate = f
		return nil
	}
}

// WithRemovalHandler registers a handler that runs whenever a session is removed.
func WithRemovalHandler(handler RemovalHandler) SessionStoreOption {
	return func(sessions *SessionStore) error {
		if handler == nil {
			return fmt.Errorf("the removal handler cannot be nil")
		}
		sessions.onRemove = append(sessions.onRemove, handler)
		return nil
	}
}

func WithConfig(c config.SessionConfig) SessionStoreOption {
	return func(sessions *SessionStore) error {
		maker, err := NewSessionMaker(
			WithIdleSessionTTLSeconds(c.IdleSessionTTLSeconds),
			WithMaxSessionTTLSeconds(c.MaxSessionTTLSeconds),
		)
		if err != nil {
			return err
		}
		sessions.sessionMaker = maker
		secure := c.CookieSecure
		sessions.cookieTemplate = func() http.Cookie {
			return cookieTemplate(secure)
		}
		return nil
	}
}

func cookieTemplate(secure bool) http.Cookie {
	return http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func NewSessionStore(options ...SessionStoreOption) (*SessionStore, error) {
	sessions := SessionStore{
		cookieTemplate: func() http.Cookie {
			return cookieTemplate(true)
		},
	}
	for _, opt := range options {
		err := opt(&sessions)
		if err != nil {
			return nil, err
		}
	}
	if sessions.cookieTemplate == nil {
		return nil, fmt.Errorf("cookie template is not initialized")
	}
	if sessions.sessionMaker == nil {
		return nil, fmt.Errorf("session maker is not initialized")
	}
	if sessions.sessionRepo == nil {
		return nil, fmt.Errorf("session repository is not initialized")
	}
	return &sessions, nil
}
