package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrSessionExpired is wrapped by every error that ended the admin session, the stored
// credentials are gone and the user has to log in again.
var ErrSessionExpired = errors.New("the session expired, a new login is required")
var ErrMissingRefreshToken = errors.New("the refresh token is missing")
var ErrInvalidRefreshResponse = errors.New("the refresh response does not contain an access token")

// ResponseError is returned for API responses with a status of 400 or above.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.URL, e.StatusCode)
}

// Message returns the "message" field of a JSON error body if there is one.
func (e *ResponseError) Message() string {
	if !gjson.ValidBytes(e.Body) {
		return ""
	}
	return gjson.GetBytes(e.Body, "message").String()
}

// RefreshError is returned to every request that waited on a failed token refresh.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "refreshing the access token failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() []error {
	return []error{ErrSessionExpired, e.Err}
}

// IsUnauthorized reports whether err is an API response with status 401.
func IsUnauthorized(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusUnauthorized
}
