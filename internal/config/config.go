package config

import (
	"fmt"
	"strings"
)

type RunningEnvironment string

const (
	Development RunningEnvironment = "development"
	Production  RunningEnvironment = "production"
)

type Config struct {
	RunningEnvironment RunningEnvironment
	DebugMode          bool
	Server             ServerConfig
	RemoteAPI          RemoteAPIConfig
	Sessions           SessionConfig
	Credentials        CredentialsConfig
	Redis              RedisConfig
	Public             PublicConfig
	Monitoring         MonitoringConfig
}

func (c *Config) Validate() error {
	switch c.RunningEnvironment {
	case Development, Production:
	default:
		return fmt.Errorf("unknown running environment %q (must be one of development, production)", c.RunningEnvironment)
	}
	err := c.Server.Validate()
	if err != nil {
		return err
	}
	err = c.RemoteAPI.Validate()
	if err != nil {
		return err
	}
	err = c.Sessions.Validate(c.RunningEnvironment)
	if err != nil {
		return err
	}
	err = c.Credentials.Validate(c.RunningEnvironment)
	if err != nil {
		return err
	}
	err = c.Public.Validate()
	if err != nil {
		return err
	}
	if c.Credentials.Type == CredentialsTypeRedis {
		err = c.Redis.Validate(c.RunningEnvironment)
		if err != nil {
			return err
		}
	}
	return nil
}

// RedactedString is used for secrets, it never shows its value when printed or serialized.
type RedactedString string

func (r RedactedString) String() string {
	return fmt.Sprintf("<redacted-%d-chars>", len(r))
}

func (r RedactedString) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r RedactedString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r RedactedString) MarshalBinary() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r RedactedString) Empty() bool {
	return strings.TrimSpace(string(r)) == ""
}
