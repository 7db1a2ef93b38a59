package config

import (
	"fmt"
	"net/mail"
)

// PublicConfig configures the routes used by the public site.
type PublicConfig struct {
	// Contact form messages and ktitor applications are sent here, the contact route is disabled when empty
	NotificationEmail string
}

func (c *PublicConfig) Validate() error {
	if c.NotificationEmail == "" {
		return nil
	}
	if _, err := mail.ParseAddress(c.NotificationEmail); err != nil {
		return fmt.Errorf("the notification e-mail %q is not valid: %w", c.NotificationEmail, err)
	}
	return nil
}
