package models

import "fmt"

// Storage keys of the admin credential pair. They are shared by every credential backend
// so that a pair written by one component can be read by another.
const (
	AccessTokenKey  string = "adminAccessToken"
	RefreshTokenKey string = "adminRefreshToken"
)

// Credentials is the token pair issued by the remote API on login.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// String redacts the token values so that the pair can be logged safely.
func (c Credentials) String() string {
	return fmt.Sprintf(
		"Credentials<AccessToken: %s, RefreshToken: %s>",
		redact(c.AccessToken),
		redact(c.RefreshToken),
	)
}

func redact(val string) string {
	if val == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted-%d-chars>", len(val))
}
