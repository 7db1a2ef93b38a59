package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/credentials"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	cliLoginRoute string = "portalctl login"
	usernameKey   string = "username"
	outputYAML    string = "yaml"
	outputJSON    string = "json"
)

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portalctl.json"
	}
	return filepath.Join(dir, "portalctl", "credentials.json")
}

// handler is what every command runs with: the typed API client and the credential file behind it.
type handler struct {
	ctx     context.Context
	backend *credentials.FileBackend
	creds   *credentials.Store
	api     *remoteapi.Client
	cli     *cli.Context
}

func newHandler(c *cli.Context) (*handler, error) {
	backend, err := credentials.NewFileBackend(c.String("credentials"))
	if err != nil {
		return nil, err
	}
	store, err := credentials.NewStore(backend)
	if err != nil {
		return nil, err
	}
	client, err := apiclient.NewClient(
		apiclient.WithBaseURL(c.String("api-url")),
		apiclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		apiclient.WithCredentialStore(store),
		apiclient.WithLoginRoute(cliLoginRoute),
		apiclient.WithLogoutHandler(func(_ context.Context, loginRoute string, _ error) {
			fmt.Fprintf(c.App.ErrWriter, "session expired, run %q\n", loginRoute)
		}),
	)
	if err != nil {
		return nil, err
	}
	api, err := remoteapi.NewClient(client)
	if err != nil {
		return nil, err
	}
	return &handler{ctx: c.Context, backend: backend, creds: store, api: api, cli: c}, nil
}

func (h *handler) print(v any) error {
	switch h.cli.String("output") {
	case outputJSON:
		encoder := json.NewEncoder(h.cli.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case outputYAML:
		encoder := yaml.NewEncoder(h.cli.App.Writer)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", h.cli.String("output"))
	}
}

// withHandler builds the handler before running the action.
func withHandler(action func(h *handler) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		h, err := newHandler(c)
		if err != nil {
			return err
		}
		return action(h)
	}
}
