// Package remoteapi is a typed client for the endpoints of the parish API.
package remoteapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/parishweb/portal-gateway/internal/apiclient"
)

// Doer sends a request to the API, apiclient.Client is the usual implementation.
type Doer interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error)
}

type Client struct {
	api Doer
}

func NewClient(api Doer) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("the API client is not set")
	}
	return &Client{api: api}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req := apiclient.NewRequest(http.MethodGet, path)
	req.Query = query
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return err
	}
	return res.DecodeJSON(out)
}

// send posts payload as JSON and decodes the answer into out when out is not nil.
func (c *Client) send(ctx context.Context, method string, path string, payload any, out any) error {
	req, err := apiclient.NewJSONRequest(method, path, payload)
	if err != nil {
		return err
	}
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.DecodeJSON(out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) error {
	req := apiclient.NewRequest(http.MethodDelete, path)
	req.Query = query
	_, err := c.api.Do(ctx, req)
	return err
}

func resourcePath(base string, id int) string {
	return base + "/" + strconv.Itoa(id)
}

func localeQuery(locale string) url.Values {
	if locale == "" {
		return nil
	}
	return url.Values{"locale": []string{locale}}
}
