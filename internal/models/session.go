package models

import (
	"fmt"
	"time"
)

// AdminSession is the gateway-side session of a logged in administrator. The session ID
// is also the namespace of the credential pair stored for that administrator.
type AdminSession struct {
	ID       string
	Username string
	// UTC timestamp for when the session was created
	CreatedAt time.Time
	// UTC timestamp for when the session will expire
	ExpiresAt      time.Time
	IdleTTLSeconds SerializableInt
	MaxTTLSeconds  SerializableInt
}

func (s *AdminSession) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Touch updates ExpiresAt according to IdleTTLSeconds, never past CreatedAt + MaxTTLSeconds.
func (s *AdminSession) Touch() {
	expiresAt := time.Now().UTC().Add(s.IdleTTL())
	if s.MaxTTLSeconds > 0 {
		maxExpiresAt := s.CreatedAt.Add(s.MaxTTL())
		if expiresAt.After(maxExpiresAt) {
			expiresAt = maxExpiresAt
		}
	}
	s.ExpiresAt = expiresAt
}

func (s *AdminSession) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLSeconds) * time.Second
}

func (s *AdminSession) MaxTTL() time.Duration {
	return time.Duration(s.MaxTTLSeconds) * time.Second
}

func (s AdminSession) String() string {
	return fmt.Sprintf(
		"AdminSession<ID: redacted, Username: %s, CreatedAt: %s, ExpiresAt: %s>",
		s.Username,
		s.CreatedAt,
		s.ExpiresAt,
	)
}
