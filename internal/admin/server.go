// Package admin serves the administration API of the portal. Every route except login runs
// with the authenticated API client of the caller's session.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/clientpool"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/sessions"
	"github.com/parishweb/portal-gateway/internal/utils"
)

const RoutesBasePath string = "/admin/api"

var errNoSession = errors.New("no admin session")

// LoginRecorder counts login attempts, metrics.Metrics is the usual implementation.
type LoginRecorder interface {
	LoginAttempted(err error)
}

type noopRecorder struct{}

func (noopRecorder) LoginAttempted(error) {}

type AdminServer struct {
	sessions   *sessions.SessionStore
	pool       *clientpool.Pool
	loginAPI   *remoteapi.Client
	logins     LoginRecorder
	loginRoute string
}

func (a *AdminServer) RegisterHandlers(server *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e := server.Group(RoutesBasePath)
	e.Use(commonMiddlewares...)
	e.Use(NoCaching, a.sessions.Middleware(), a.mapErrors)

	e.POST("/login", a.PostLogin)
	e.POST("/logout", a.PostLogout)
	e.GET("/me", a.GetMe, a.requireSession)

	e.GET("/dashboard", a.GetDashboard, a.requireSession)

	e.GET("/news", a.GetNewsList, a.requireSession)
	e.POST("/news", a.PostNews, a.requireSession)
	e.GET("/news/:id", a.GetNews, a.requireSession)
	e.PATCH("/news/:id", a.PatchNews, a.requireSession)
	e.DELETE("/news/:id", a.DeleteNews, a.requireSession)

	e.POST("/upload", a.PostUpload, a.requireSession)

	e.GET("/gallery/albums", a.GetAlbums, a.requireSession)
	e.POST("/gallery/albums", a.PostAlbum, a.requireSession)
	e.GET("/gallery/albums/:id", a.GetAlbum, a.requireSession)
	e.PATCH("/gallery/albums/:id", a.PatchAlbum, a.requireSession)
	e.DELETE("/gallery/albums/:id", a.DeleteAlbum, a.requireSession)
	e.POST("/gallery/albums/:id/images", a.PostAlbumImages, a.requireSession)
	e.DELETE("/gallery/images/:id", a.DeleteImage, a.requireSession)

	e.GET("/schedule", a.GetSchedule, a.requireSession)
	e.POST("/schedule", a.PostScheduleEntry, a.requireSession)
	e.GET("/schedule/:id", a.GetScheduleEntry, a.requireSession)
	e.PATCH("/schedule/:id", a.PatchScheduleEntry, a.requireSession)
	e.DELETE("/schedule/:id", a.DeleteScheduleEntry, a.requireSession)
}

// NoCaching sets headers in responses that prevent caching by the browser.
func NoCaching(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var noCacheHeaders = map[string]string{
			"Expires":         time.Unix(0, 0).Format(time.RFC1123),
			"Cache-Control":   "no-cache, no-store, must-revalidate, max-age=0",
			"X-Accel-Expires": "0",
		}
		for k, v := range noCacheHeaders {
			c.Response().Header().Set(k, v)
		}
		return next(c)
	}
}

func (a *AdminServer) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := a.sessions.Get(c); err != nil {
			return fmt.Errorf("%w: %w", errNoSession, err)
		}
		return next(c)
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// mapErrors turns the errors of the handlers into responses. A forced logout also ends the
// gateway session so that the next request starts from the login page.
func (a *AdminServer) mapErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}
		var respErr *apiclient.ResponseError
		switch {
		case errors.Is(err, apiclient.ErrSessionExpired):
			slog.Info(
				"ADMIN",
				"message",
				"the admin session ended after a failed token refresh",
				"error",
				err,
				"requestID",
				utils.GetRequestID(c),
			)
			if session, sessionErr := a.sessions.Get(c); sessionErr == nil {
				a.pool.Remove(session.ID)
			}
			if deleteErr := a.sessions.Delete(c); deleteErr != nil {
				slog.Error("ADMIN", "message", "could not delete the session", "error", deleteErr, "requestID", utils.GetRequestID(c))
			}
			return a.redirectToLogin(c, "the session expired")
		case errors.Is(err, errNoSession):
			return a.redirectToLogin(c, "login required")
		case errors.Is(err, gwerrors.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &respErr):
			message := respErr.Message()
			if message == "" {
				message = http.StatusText(respErr.StatusCode)
			}
			return c.JSON(respErr.StatusCode, errorResponse{Error: message})
		default:
			return err
		}
	}
}

func (a *AdminServer) redirectToLogin(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderLocation, a.loginRoute)
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: message, Redirect: a.loginRoute})
}

// session returns the session loaded by the session middleware and its pooled client.
func (a *AdminServer) session(c echo.Context) (*models.AdminSession, *clientpool.Entry, error) {
	session, err := a.sessions.Get(c)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errNoSession, err)
	}
	entry, err := a.pool.Get(*session)
	if err != nil {
		return nil, nil, err
	}
	return session, entry, nil
}

func (a *AdminServer) api(c echo.Context) (*remoteapi.Client, error) {
	_, entry, err := a.session(c)
	if err != nil {
		return nil, err
	}
	return remoteapi.NewClient(entry.Client)
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: the id %q is not valid", gwerrors.ErrInvalidInput, c.Param("id"))
	}
	return id, nil
}

type AdminServerOption func(*AdminServer) error

func WithSessionStore(store *sessions.SessionStore) AdminServerOption {
	return func(a *AdminServer) error {
		a.sessions = store
		return nil
	}
}

func WithClientPool(pool *clientpool.Pool) AdminServerOption {
	return func(a *AdminServer) error {
		a.pool = pool
		return nil
	}
}

// WithLoginClient sets the client used for the login call, it must not carry admin credentials.
func WithLoginClient(api *remoteapi.Client) AdminServerOption {
	return func(a *AdminServer) error {
		a.loginAPI = api
		return nil
	}
}

func WithLoginRecorder(recorder LoginRecorder) AdminServerOption {
	return func(a *AdminServer) error {
		a.logins = recorder
		return nil
	}
}

func WithLoginRoute(route string) AdminServerOption {
	return func(a *AdminServer) error {
		if route == "" {
			return fmt.Errorf("the login route cannot be empty")
		}
		a.loginRoute = route
		return nil
	}
}

func NewAdminServer(options ...AdminServerOption) (*AdminServer, error) {
	server := AdminServer{logins: noopRecorder{}, loginRoute: apiclient.DefaultLoginRoute}
	for _, opt := range options {
		err := opt(&server)
		if err != nil {
			return nil, err
		}
	}
	if server.sessions == nil {
		return nil, fmt.Errorf("session store not initialized")
	}
	if server.pool == nil {
		return nil, fmt.Errorf("client pool not initialized")
	}
	if server.loginAPI == nil {
		return nil, fmt.Errorf("login client not initialized")
	}
	if server.logins == nil {
		return nil, fmt.Errorf("login recorder not initialized")
	}
	return &server, nil
}
