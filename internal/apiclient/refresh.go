package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/utils"
	"github.com/tidwall/gjson"
)

var errRefreshAborted = errors.New("the token refresh was interrupted")

type refreshOutcome struct {
	token string
	err   error
}

// continuation resolves one request that waits on the refresh in flight.
// It is buffered so that settling never blocks on a waiter that gave up.
type continuation chan refreshOutcome

// freshAccessToken returns a new access token after the API rejected a request with cause.
// Only the first caller talks to the API, later callers wait for its outcome.
func (c *Client) freshAccessToken(ctx context.Context, cause error) (string, error) {
	c.lock.Lock()
	if c.refreshing {
		waiter := make(continuation, 1)
		c.waiting = append(c.waiting, waiter)
		c.lock.Unlock()
		c.observer.RequestQueued()
		select {
		case outcome := <-waiter:
			return outcome.token, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.lock.Unlock()
	// waiters depend on this refresh, the caller going away must not abort it
	return c.runRefresh(context.WithoutCancel(ctx), cause)
}

func (c *Client) runRefresh(ctx context.Context, cause error) (string, error) {
	c.observer.RefreshStarted()
	outcome := refreshOutcome{err: &RefreshError{Err: errRefreshAborted}}
	defer func() {
		waiters := c.settle(outcome)
		c.observer.RefreshFinished(outcome.err, waiters)
	}()
	var ownerErr error
	outcome, ownerErr = c.refresh(ctx, cause)
	return outcome.token, ownerErr
}

// refresh returns the outcome handed to the waiters and the error returned to the request
// that started the refresh, the two differ only when there was nothing to refresh with.
func (c *Client) refresh(ctx context.Context, cause error) (refreshOutcome, error) {
	refreshToken, err := c.credentials.RefreshToken(ctx)
	if err != nil && !errors.Is(err, gwerrors.ErrTokenNotFound) {
		slog.Error(
			"API CLIENT",
			"message",
			"could not load the refresh token",
			"error",
			err,
			"requestID",
			utils.RequestIDFromContext(ctx),
		)
		return c.fail(ctx, err)
	}
	if refreshToken == "" {
		outcome, _ := c.fail(ctx, ErrMissingRefreshToken)
		return outcome, &RefreshError{Err: fmt.Errorf("%w: %w", ErrMissingRefreshToken, cause)}
	}

	accessToken, rotated, err := c.callRefresh(ctx, refreshToken)
	if err != nil {
		slog.Info(
			"API CLIENT",
			"message",
			"the token refresh was rejected",
			"error",
			err,
			"requestID",
			utils.RequestIDFromContext(ctx),
		)
		return c.fail(ctx, err)
	}
	// the new token is stored before anybody is replayed with it
	err = c.credentials.SetAccessToken(ctx, accessToken)
	if err == nil && rotated != "" {
		err = c.credentials.SetRefreshToken(ctx, rotated)
	}
	if err != nil {
		slog.Error(
			"API CLIENT",
			"message",
			"could not store the refreshed tokens",
			"error",
			err,
			"requestID",
			utils.RequestIDFromContext(ctx),
		)
		return c.fail(ctx, err)
	}
	slog.Debug("API CLIENT", "message", "refreshed the access token", "rotated", rotated != "")
	return refreshOutcome{token: accessToken}, nil
}

func (c *Client) fail(ctx context.Context, err error) (refreshOutcome, error) {
	refreshErr := &RefreshError{Err: err}
	c.forceLogout(ctx, refreshErr)
	return refreshOutcome{err: refreshErr}, refreshErr
}

// forceLogout ends the admin session. It runs once per failed refresh, never in a waiter.
func (c *Client) forceLogout(ctx context.Context, cause error) {
	err := c.credentials.Clear(ctx)
	if err != nil {
		slog.Error(
			"API CLIENT",
			"message",
			"could not clear the stored credentials",
			"error",
			err,
			"requestID",
			utils.RequestIDFromContext(ctx),
		)
	}
	c.observer.ForcedLogout()
	slog.Info("API CLIENT", "message", "forcing a new login", "loginRoute", c.loginRoute, "cause", cause)
	if c.onLogout != nil {
		c.onLogout(ctx, c.loginRoute, cause)
	}
}

// settle takes the queued waiters and clears the refreshing flag in one step, then resolves
// the waiters in the order they were queued. It returns the number of waiters.
func (c *Client) settle(outcome refreshOutcome) int {
	c.lock.Lock()
	waiting := c.waiting
	c.waiting = nil
	c.refreshing = false
	c.lock.Unlock()
	for _, waiter := range waiting {
		waiter <- outcome
	}
	return len(waiting)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// callRefresh exchanges the refresh token for a new access token. The call carries no
// Authorization header. The API may rotate the refresh token, an empty rotated token means
// the old one stays valid.
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (string, string, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", "", err
	}
	req, err := c.newHTTPRequest(ctx, &Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	})
	if err != nil {
		return "", "", err
	}
	res, err := c.refreshClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", "", err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", "", &ResponseError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: res.StatusCode,
			Body:       resBody,
		}
	}
	if !gjson.ValidBytes(resBody) {
		return "", "", ErrInvalidRefreshResponse
	}
	accessToken := gjson.GetBytes(resBody, "accessToken").String()
	if accessToken == "" {
		return "", "", ErrInvalidRefreshResponse
	}
	return accessToken, gjson.GetBytes(resBody, "refreshToken").String(), nil
}
