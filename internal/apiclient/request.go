package apiclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
)

// Request is a replayable description of an outbound API call. The body is kept as bytes
// so that the same request can be sent again after a token refresh.
type Request struct {
	Method string
	// Path is resolved against the base URL of the client unless it is an absolute URL.
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func NewRequest(method string, path string) *Request {
	return &Request{Method: method, Path: path, Header: http.Header{}}
}

// NewJSONRequest creates a request whose body is the JSON encoding of payload.
func NewJSONRequest(method string, path string, payload any) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req := NewRequest(method, path)
	req.Header.Set("Content-Type", "application/json")
	req.Body = body
	return req, nil
}

// attempt is one try at sending a request. Values are never mutated, a retry is a new attempt.
type attempt struct {
	request *Request
	// retried is set before the request is sent again with a refreshed token,
	// an attempt that is already retried never triggers another refresh
	retried bool
	// token overrides the stored access token when it is not empty
	token string
}

func (a attempt) markRetried() attempt {
	return attempt{request: a.request, retried: true, token: a.token}
}

func (a attempt) withToken(token string) attempt {
	return attempt{request: a.request, retried: a.retried, token: token}
}

// Response is a fully read API response with a status below 400.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the body into v, an empty body leaves v untouched.
func (r *Response) DecodeJSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}
