package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/clientpool"
	"github.com/parishweb/portal-gateway/internal/config"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginCounter struct {
	lock     sync.Mutex
	ok       int
	failures int
}

func (l *loginCounter) LoginAttempted(err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err != nil {
		l.failures++
		return
	}
	l.ok++
}

type testGateway struct {
	e      *echo.Echo
	api    *fakeAPI
	pool   *clientpool.Pool
	logins *loginCounter
	cookie *http.Cookie
}

func setupGateway(t *testing.T) *testGateway {
	api := newFakeAPI(t)
	baseURL := api.start(t)
	pool, err := clientpool.NewPool(clientpool.WithFactory(
		clientpool.ClientFactory(clientpool.MemoryBackends, apiclient.WithBaseURL(baseURL)),
	))
	require.NoError(t, err)
	sessionStore, err := sessions.NewSessionStore(
		sessions.WithSessionRepository(sessions.NewInMemorySessionRepository()),
		sessions.WithConfig(config.SessionConfig{IdleSessionTTLSeconds: 3600, MaxSessionTTLSeconds: 7200}),
		sessions.WithRemovalHandler(func(_ context.Context, sessionID string) { pool.Remove(sessionID) }),
	)
	require.NoError(t, err)
	anonymous, err := apiclient.NewClient(apiclient.WithBaseURL(baseURL))
	require.NoError(t, err)
	loginAPI, err := remoteapi.NewClient(anonymous)
	require.NoError(t, err)
	logins := &loginCounter{}
	server, err := NewAdminServer(
		WithSessionStore(sessionStore),
		WithClientPool(pool),
		WithLoginClient(loginAPI),
		WithLoginRecorder(logins),
	)
	require.NoError(t, err)
	e := echo.New()
	e.Pre(middleware.RequestID())
	server.RegisterHandlers(e)
	return &testGateway{e: e, api: api, pool: pool, logins: logins}
}

func (g *testGateway) do(method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, RoutesBasePath+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return g.send(req)
}

func (g *testGateway) send(req *http.Request) *httptest.ResponseRecorder {
	if g.cookie != nil {
		req.AddCookie(g.cookie)
	}
	rec := httptest.NewRecorder()
	g.e.ServeHTTP(rec, req)
	return rec
}

func (g *testGateway) login(t *testing.T) {
	rec := g.do(http.MethodPost, "/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessions.SessionCookieName {
			g.cookie = cookie
		}
	}
	require.NotNil(t, g.cookie)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var output T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &output))
	return output
}

func TestLoginAndMe(t *testing.T) {
	g := setupGateway(t)

	g.login(t)
	rec := g.do(http.MethodGet, "/me", "")

	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[userResponse](t, rec)
	assert.Equal(t, "admin", me.Username)
	require.NotNil(t, me.AccessTokenExpiresAt)
	assert.True(t, tokenExpiresAt.Equal(*me.AccessTokenExpiresAt))
	assert.Equal(t, "no-cache, no-store, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 1, g.logins.ok)
	assert.Equal(t, 1, g.pool.Len())
}

func TestLoginWithWrongPassword(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errorResponse{Error: "Invalid credentials"}, decode[errorResponse](t, rec))
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, g.logins.failures)
	assert.Equal(t, int32(0), g.api.refreshCalls.Load())
}

func TestLoginWithoutPassword(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(http.MethodPost, "/login", `{"username":"admin"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), g.api.loginCalls.Load())
}

func TestRoutesRequireSession(t *testing.T) {
	g := setupGateway(t)
	for _, path := range []string{"/me", "/news", "/dashboard", "/gallery/albums", "/schedule"} {
		t.Run(path, func(t *testing.T) {
			rec := g.do(http.MethodGet, path, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apiclient.DefaultLoginRoute, rec.Header().Get(echo.HeaderLocation))
			assert.Equal(t, apiclient.DefaultLoginRoute, decode[errorResponse](t, rec).Redirect)
		})
	}
	assert.Equal(t, 0, g.pool.Len())
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	g := setupGateway(t)
	g.login(t)
	g.api.expireAccessToken()

	rec := g.do(http.MethodGet, "/news?page=1&limit=10", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	expected := models.NewsList{News: []models.News{{ID: 1, Title: "Hram"}}, Total: 1}
	if diff := cmp.Diff(expected, decode[models.NewsList](t, rec)); diff != "" {
		t.Errorf("unexpected news list (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(1), g.api.refreshCalls.Load())

	// the refreshed token is kept for the next request
	rec = g.do(http.MethodGet, "/news", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), g.api.refreshCalls.Load())
}

func TestDashboard(t *testing.T) {
	g := setupGateway(t)
	g.login(t)
	g.api.expireAccessToken()

	rec := g.do(http.MethodGet, "/dashboard", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dashboard := decode[dashboardResponse](t, rec)
	assert.Equal(t, 1, dashboard.NewsTotal)
	assert.Len(t, dashboard.LatestNews, 1)
	assert.Len(t, dashboard.Albums, 1)
	assert.Len(t, dashboard.Schedule, 1)
	assert.GreaterOrEqual(t, g.api.refreshCalls.Load(), int32(1))
	assert.LessOrEqual(t, g.api.refreshCalls.Load(), int32(3))
}

func TestFailedRefreshEndsSession(t *testing.T) {
	g := setupGateway(t)
	g.login(t)
	g.api.expireAccessToken()
	g.api.failRefresh()

	rec := g.do(http.MethodGet, "/news", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apiclient.DefaultLoginRoute, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, apiclient.DefaultLoginRoute, decode[errorResponse](t, rec).Redirect)
	assert.Equal(t, 0, g.pool.Len())

	rec = g.do(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int32(1), g.api.refreshCalls.Load())
}

func TestLogout(t *testing.T) {
	g := setupGateway(t)
	g.login(t)

	rec := g.do(http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, 0, g.pool.Len())
	rec = g.do(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithoutSession(t *testing.T) {
	g := setupGateway(t)

	rec := g.do(http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInvalidInput(t *testing.T) {
	g := setupGateway(t)
	g.login(t)

	rec := g.do(http.MethodPost, "/news", `{"image":"hram.jpg","translations":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(http.MethodGet, "/news/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.do(http.MethodGet, "/news?page=first", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamErrorIsPassedThrough(t *testing.T) {
	g := setupGateway(t)
	g.login(t)

	rec := g.do(http.MethodDelete, "/news/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "News not found", decode[errorResponse](t, rec).Error)

	rec = g.do(http.MethodDelete, "/news/5", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPostAlbumImages(t *testing.T) {
	g := setupGateway(t)
	g.login(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range []string{"a.jpg", "b.jpg"} {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("caption", "Paste"))
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, RoutesBasePath+"/gallery/albums/2/images", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

	rec := g.send(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	images := decode[[]models.Image](t, rec)
	require.Len(t, images, 2)
	assert.Equal(t, "/uploads/a.jpg", images[0].URL)
	assert.Equal(t, "/uploads/b.jpg", images[1].URL)
	for _, image := range images {
		assert.Equal(t, 2, image.AlbumID)
		assert.Equal(t, "Paste", image.Caption)
		assert.Equal(t, models.PhotoMedia, image.Type)
	}
}

func TestPostAlbumImagesWithoutFiles(t *testing.T) {
	g := setupGateway(t)
	g.login(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("caption", "Paste"))
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, RoutesBasePath+"/gallery/albums/2/images", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

	rec := g.send(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewAdminServerValidation(t *testing.T) {
	_, err := NewAdminServer()
	assert.Error(t, err)

	_, err = NewAdminServer(WithLoginRoute(""))
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	assert.Nil(t, tokenExpiry(""))
	assert.Nil(t, tokenExpiry("not-a-jwt"))
	expiry := tokenExpiry(mintToken(t, "tok"))
	require.NotNil(t, expiry)
	assert.True(t, tokenExpiresAt.Equal(*expiry))
}
