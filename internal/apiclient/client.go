// Package apiclient sends requests to the remote parish API on behalf of an administrator.
// It attaches the stored access token to every request and, when the API answers 401,
// refreshes the token once for all concurrently failing requests before replaying them.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/utils"
)

const (
	DefaultRefreshPath string = "/api/auth/refresh"
	DefaultLoginRoute  string = "/admin/login"

	headerAuthorization string = "Authorization"
	headerRequestID     string = "X-Request-ID"
)

// CredentialStore persists the admin credential pair. Absent tokens are reported either as an
// empty string or as gwerrors.ErrTokenNotFound.
type CredentialStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	// Clear removes both tokens together
	Clear(ctx context.Context) error
}

// LogoutHandler is called once per failed refresh cycle, after the stored credentials were cleared.
type LogoutHandler func(ctx context.Context, loginRoute string, cause error)

// Observer receives the refresh lifecycle events, it is used for metrics.
type Observer interface {
	RefreshStarted()
	RefreshFinished(err error, waiters int)
	RequestQueued()
	ForcedLogout()
}

type noopObserver struct{}

func (noopObserver) RefreshStarted()            {}
func (noopObserver) RefreshFinished(error, int) {}
func (noopObserver) RequestQueued()             {}
func (noopObserver) ForcedLogout()              {}

type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	refreshClient *http.Client
	refreshPath   string
	loginRoute    string
	credentials   CredentialStore
	staticToken   string
	onLogout      LogoutHandler
	observer      Observer
	idGenerator   models.IDGenerator

	lock       sync.Mutex
	refreshing bool
	waiting    []continuation
}

// Do sends the request and returns the response if its status is below 400. A 401 answer
// triggers at most one token refresh and one replay of the request.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.do(ctx, attempt{request: req})
}

func (c *Client) do(ctx context.Context, a attempt) (*Response, error) {
	res, err := c.send(ctx, a)
	if err == nil {
		return res, nil
	}
	if a.retried || c.credentials == nil || !IsUnauthorized(err) {
		if a.retried && IsUnauthorized(err) {
			slog.Info(
				"API CLIENT",
				"message",
				"request rejected again after the token refresh, giving up",
				"method",
				a.request.Method,
				"path",
				a.request.Path,
				"requestID",
				utils.RequestIDFromContext(ctx),
			)
		}
		return nil, err
	}
	a = a.markRetried()
	token, err := c.freshAccessToken(ctx, err)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, a.withToken(token))
}

// Decorate sets the Authorization header from the stored access token. It never fails, a request
// without a token is sent as is and the API decides whether to reject it.
func (c *Client) Decorate(ctx context.Context, req *http.Request) {
	token := c.staticToken
	if c.credentials != nil {
		stored, err := c.credentials.AccessToken(ctx)
		if err != nil {
			slog.Debug(
				"API CLIENT",
				"message",
				"could not load the access token, sending the request without it",
				"error",
				err,
				"requestID",
				utils.RequestIDFromContext(ctx),
			)
		}
		token = stored
	}
	if token == "" {
		return
	}
	req.Header.Set(headerAuthorization, "Bearer "+token)
}

func (c *Client) send(ctx context.Context, a attempt) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, a.request)
	if err != nil {
		return nil, err
	}
	if a.token != "" {
		httpReq.Header.Set(headerAuthorization, "Bearer "+a.token)
	} else {
		c.Decorate(ctx, httpReq)
	}
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	slog.Debug(
		"API CLIENT",
		"message",
		"received response",
		"method",
		httpReq.Method,
		"url",
		httpReq.URL.String(),
		"status",
		res.StatusCode,
		"retried",
		a.retried,
		"requestID",
		httpReq.Header.Get(headerRequestID),
	)
	if res.StatusCode >= http.StatusBadRequest {
		return nil, &ResponseError{
			Method:     httpReq.Method,
			URL:        httpReq.URL.String(),
			StatusCode: res.StatusCode,
			Body:       body,
		}
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	requestID := utils.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID, err = c.idGenerator.ID()
		if err != nil {
			return nil, err
		}
	}
	httpReq.Header.Set(headerRequestID, requestID)
	return httpReq, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	if ref.IsAbs() {
		return ref, nil
	}
	target := c.baseURL.JoinPath(ref.Path)
	target.RawQuery = ref.RawQuery
	return target, nil
}

// LoginRoute is where the user is sent when the session cannot be renewed.
func (c *Client) LoginRoute() string {
	return c.loginRoute
}

type ClientOption func(*Client) error

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return err
		}
		if !parsed.IsAbs() {
			return fmt.Errorf("the base URL %q is not absolute", baseURL)
		}
		c.baseURL = parsed
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

// WithRefreshHTTPClient sets the client used for the refresh call, it defaults to the main one.
func WithRefreshHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.refreshClient = httpClient
		return nil
	}
}

func WithRefreshPath(refreshPath string) ClientOption {
	return func(c *Client) error {
		c.refreshPath = refreshPath
		return nil
	}
}

func WithLoginRoute(loginRoute string) ClientOption {
	return func(c *Client) error {
		c.loginRoute = loginRoute
		return nil
	}
}

func WithCredentialStore(store CredentialStore) ClientOption {
	return func(c *Client) error {
		c.credentials = store
		return nil
	}
}

// WithStaticToken makes the client send a fixed bearer token. Such a client never refreshes
// and never logs anybody out.
func WithStaticToken(token string) ClientOption {
	return func(c *Client) error {
		c.staticToken = token
		return nil
	}
}

func WithLogoutHandler(handler LogoutHandler) ClientOption {
	return func(c *Client) error {
		c.onLogout = handler
		return nil
	}
}

func WithObserver(observer Observer) ClientOption {
	return func(c *Client) error {
		c.observer = observer
		return nil
	}
}

func NewClient(options ...ClientOption) (*Client, error) {
	c := Client{
		refreshPath: DefaultRefreshPath,
		loginRoute:  DefaultLoginRoute,
		observer:    noopObserver{},
		idGenerator: models.ULIDGenerator{},
	}
	for _, opt := range options {
		err := opt(&c)
		if err != nil {
			return nil, err
		}
	}
	if c.baseURL == nil {
		return nil, fmt.Errorf("the base URL of the API is not set")
	}
	if c.credentials != nil && c.staticToken != "" {
		return nil, fmt.Errorf("a client cannot use both a static token and a credential store")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.refreshClient == nil {
		c.refreshClient = c.httpClient
	}
	if c.observer == nil {
		c.observer = noopObserver{}
	}
	return &c, nil
}
