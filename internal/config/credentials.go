package config

import "fmt"

const (
	CredentialsTypeMemory string = "memory"
	CredentialsTypeRedis  string = "redis"
)

type TokenEncryptionConfig struct {
	Enabled   bool
	SecretKey RedactedString
}

type CredentialsConfig struct {
	Type            string
	TokenEncryption TokenEncryptionConfig
}

func (c CredentialsConfig) Validate(e RunningEnvironment) error {
	switch c.Type {
	case CredentialsTypeMemory, CredentialsTypeRedis:
	default:
		return fmt.Errorf("unknown credentials type %q (must be one of memory, redis)", c.Type)
	}
	if c.TokenEncryption.Enabled && len(c.TokenEncryption.SecretKey) != 32 {
		return fmt.Errorf(
			"token encryption key has to be 32 bytes long, the provided one is %d long",
			len(c.TokenEncryption.SecretKey),
		)
	}
	if e == Production && c.Type == CredentialsTypeRedis && !c.TokenEncryption.Enabled {
		return fmt.Errorf("tokens stored in redis have to be encrypted in production")
	}
	return nil
}
