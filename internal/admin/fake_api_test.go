package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/stretchr/testify/require"
)

var tokenExpiresAt = time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, subject string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(tokenExpiresAt),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

// fakeAPI is a minimal parish API: it issues tokens on login, refreshes them and serves a few
// protected resources that need the current access token.
type fakeAPI struct {
	lock         sync.Mutex
	validToken   string
	nextToken    string
	refreshToken string
	refreshOK    bool
	imageID      int

	refreshCalls atomic.Int32
	loginCalls   atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		validToken:   mintToken(t, "tok1"),
		nextToken:    mintToken(t, "tok2"),
		refreshToken: "ref1",
		refreshOK:    true,
	}
}

// expireAccessToken makes the current access token invalid, a refresh hands out the next one.
func (f *fakeAPI) expireAccessToken() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.validToken = f.nextToken
}

func (f *fakeAPI) failRefresh() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.refreshOK = false
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return r.Header.Get("Authorization") == "Bearer "+f.validToken
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		f.login(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/refresh":
		f.refresh(w, r)
		return
	}
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/news":
		writeJSON(w, http.StatusOK, models.NewsList{News: []models.News{{ID: 1, Title: "Hram"}}, Total: 1})
	case r.Method == http.MethodDelete && r.URL.Path == "/api/news/99":
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "News not found"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/news/"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/api/gallery/albums":
		writeJSON(w, http.StatusOK, []models.Album{{ID: 2, Name: "Paste"}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/schedule":
		writeJSON(w, http.StatusOK, []models.ScheduleEntry{{ID: 3, Date: "2024-01-07", Time: "09:00", Event: "Liturghia"}})
	case r.Method == http.MethodPost && r.URL.Path == "/api/gallery/upload/multiple":
		f.upload(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/gallery/images":
		f.addImage(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	f.loginCalls.Add(1)
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  f.validToken,
		"refreshToken": f.refreshToken,
		"user":         map[string]string{"username": body.Username},
	})
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.refreshOK || body.RefreshToken != f.refreshToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": f.validToken})
}

func (f *fakeAPI) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	output := []models.UploadedFile{}
	for _, header := range r.MultipartForm.File["files"] {
		output = append(output, models.UploadedFile{URL: "/uploads/" + header.Filename, Type: models.PhotoMedia})
	}
	writeJSON(w, http.StatusOK, output)
}

func (f *fakeAPI) addImage(w http.ResponseWriter, r *http.Request) {
	var body models.ImageInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.lock.Lock()
	f.imageID++
	id := f.imageID
	f.lock.Unlock()
	writeJSON(w, http.StatusCreated, models.Image{
		ID:      id,
		AlbumID: body.AlbumID,
		URL:     body.URL,
		Caption: body.Caption,
		Type:    body.Type,
	})
}

func (f *fakeAPI) start(t *testing.T) string {
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return server.URL
}
