package public

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publicToken string = "public-token"

type upstreamCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeAPI struct {
	lock         sync.Mutex
	calls        []upstreamCall
	token        string
	refreshCalls atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.lock.Lock()
	f.calls = append(f.calls, upstreamCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	token := f.token
	f.lock.Unlock()
	reply := func(status int, payload any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
	if r.URL.Path == "/api/auth/refresh" {
		f.refreshCalls.Add(1)
		reply(http.StatusOK, map[string]string{"accessToken": "admin-token"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+token {
		reply(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/news":
		reply(http.StatusOK, models.NewsList{News: []models.News{{ID: 1, Title: "Hram"}}, Total: 1})
	case r.Method == http.MethodGet && r.URL.Path == "/api/schedule":
		reply(http.StatusOK, []models.ScheduleEntry{})
	case r.Method == http.MethodPost && r.URL.Path == "/api/donations/create-checkout-session":
		reply(http.StatusOK, models.CheckoutSession{SessionID: "cs_test"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/notes/create-checkout-session":
		reply(http.StatusOK, map[string]string{})
	case r.Method == http.MethodPost && r.URL.Path == "/api/ktitors":
		reply(http.StatusCreated, models.Ktitor{ID: 4, Name: "Maria", Contribution: "roof"})
	case r.Method == http.MethodPost:
		reply(http.StatusCreated, map[string]string{})
	case r.Method == http.MethodPut || r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		reply(http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func (f *fakeAPI) recorded() []upstreamCall {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]upstreamCall{}, f.calls...)
}

func setupServer(t *testing.T, options ...PublicServerOption) (*echo.Echo, *fakeAPI) {
	api := &fakeAPI{token: publicToken}
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)
	client, err := apiclient.NewClient(apiclient.WithBaseURL(upstream.URL), apiclient.WithStaticToken(publicToken))
	require.NoError(t, err)
	typed, err := remoteapi.NewClient(client)
	require.NoError(t, err)
	server, err := NewPublicServer(append([]PublicServerOption{WithAPIClient(typed)}, options...)...)
	require.NoError(t, err)
	e := echo.New()
	server.RegisterHandlers(e)
	return e, api
}

func serve(e *echo.Echo, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewsList(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodGet, "/api/news?page=2&locale=ro", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"news":[{"id":1,"title":"Hram","description":"","fullText":"","image":"","isMain":false,"isActive":false,"createdAt":"0001-01-01T00:00:00Z"}],"total":1}`, rec.Body.String())
	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "locale=ro&page=2", calls[0].Query)
}

func TestInvalidLocale(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodGet, "/api/schedule?locale=en", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.recorded())
}

func TestRejectedTokenIsNotRefreshed(t *testing.T) {
	e, api := setupServer(t)
	api.lock.Lock()
	api.token = "rotated-token"
	api.lock.Unlock()

	rec := serve(e, http.MethodGet, "/api/news", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
	assert.NotContains(t, rec.Body.String(), "redirect")
	assert.Equal(t, int32(0), api.refreshCalls.Load())
}

func TestDonationCheckout(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodPost, "/api/donations/checkout", `{"amount":25,"donorName":"Ion","donorEmail":"ion@example.org"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"sessionId":"cs_test"}`, rec.Body.String())
	assert.Equal(t, "no-cache, no-store, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))
	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"amount":2500,"donorName":"Ion","donorEmail":"ion@example.org"}`, calls[0].Body)
}

func TestCheckoutWithoutSession(t *testing.T) {
	e, _ := setupServer(t)

	rec := serve(e, http.MethodPost, "/api/notes/checkout", `{"type":"health","names":"Ion","isPaid":true,"amount":5}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDonation(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodPost, "/api/donations", `{"amount":25,"donorName":"Ion","donorEmail":"ion@example.org"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodPost, "/api/donations", `{"amount":0,"donorName":"Ion","donorEmail":"ion@example.org"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, api.recorded(), 1)
}

func TestSubscriptions(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodPut, "/api/subscriptions", `{"email":"ion@example.org","preferences":{"news":true}}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodDelete, "/api/subscriptions?email=ion%40example.org", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "/api/subscriptions/update", calls[0].Path)
	assert.Equal(t, "/api/subscriptions/unsubscribe", calls[1].Path)
	assert.Equal(t, "email=ion%40example.org", calls[1].Query)
}

func TestKtitorApplicationSendsNotification(t *testing.T) {
	e, api := setupServer(t, WithNotificationEmail("parish@example.org"))

	rec := serve(e, http.MethodPost, "/api/ktitors", `{"name":"Maria","contribution":"roof"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "/api/ktitors", calls[0].Path)
	assert.Equal(t, "/api/email/send", calls[1].Path)
	var email models.Email
	require.NoError(t, json.Unmarshal([]byte(calls[1].Body), &email))
	assert.Equal(t, "parish@example.org", email.To)
	assert.Contains(t, email.Subject, "Maria")
}

func TestKtitorApplicationWithoutNotification(t *testing.T) {
	e, api := setupServer(t)

	rec := serve(e, http.MethodPost, "/api/ktitors", `{"name":"Maria","contribution":"roof"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, api.recorded(), 1)
}

func TestContact(t *testing.T) {
	e, api := setupServer(t, WithNotificationEmail("parish@example.org"))

	rec := serve(e, http.MethodPost, "/api/contact", `{"name":"Ion","email":"ion@example.org","message":"Hello"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = serve(e, http.MethodPost, "/api/contact", `{"name":"Ion","email":"ion@example.org"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, api.recorded(), 1)
}

func TestContactDisabledWithoutAddress(t *testing.T) {
	e, _ := setupServer(t)

	rec := serve(e, http.MethodPost, "/api/contact", `{"name":"Ion","email":"ion@example.org","message":"Hello"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewPublicServerWithoutClient(t *testing.T) {
	_, err := NewPublicServer()
	assert.Error(t, err)
}
