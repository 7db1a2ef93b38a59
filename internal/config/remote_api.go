package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type RemoteAPIConfig struct {
	BaseURL     *url.URL
	RefreshPath string
	// LoginRoute is where the admin is sent after the session could not be renewed
	LoginRoute string
	// PublicToken is sent by the client serving the public pages
	PublicToken    RedactedString
	TimeoutSeconds int
}

func (c RemoteAPIConfig) Validate() error {
	if c.BaseURL == nil || !c.BaseURL.IsAbs() {
		return fmt.Errorf("the remote API base URL has to be an absolute URL")
	}
	if !strings.HasPrefix(c.RefreshPath, "/") {
		return fmt.Errorf("the refresh path %q has to start with /", c.RefreshPath)
	}
	if !strings.HasPrefix(c.LoginRoute, "/") {
		return fmt.Errorf("the login route %q has to start with /", c.LoginRoute)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("the remote API timeout (%d) needs to be greater than 0", c.TimeoutSeconds)
	}
	return nil
}

func (c RemoteAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
