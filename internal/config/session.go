package config

import (
	"fmt"
	"time"
)

const SessionCookieName string = "_portal_admin_session"

type SessionConfig struct {
	IdleSessionTTLSeconds int
	MaxSessionTTLSeconds  int
	CookieSecure          bool
}

func (c *SessionConfig) Validate(e RunningEnvironment) error {
	if c.IdleSessionTTLSeconds <= 0 {
		return fmt.Errorf("idle session TTL seconds (%d) needs to be greater than 0", c.IdleSessionTTLSeconds)
	}
	if c.MaxSessionTTLSeconds > 0 && c.IdleSessionTTLSeconds > c.MaxSessionTTLSeconds {
		return fmt.Errorf("max session TTL seconds (%d) cannot be less than idle session TTL seconds (%d)", c.MaxSessionTTLSeconds, c.IdleSessionTTLSeconds)
	}
	if e == Production && !c.CookieSecure {
		return fmt.Errorf("the session cookie has to be secure in production")
	}
	return nil
}

func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleSessionTTLSeconds) * time.Second
}
