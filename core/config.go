package core

import (
	"fmt"
	"strings"
	"time"
)

const minSigningSecretBytes = 32

type Config struct {
	SigningSecret   string        `koanf:"signing_secret" mapstructure:"signing_secret"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl" mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

func DefaultConfig() Config {
	return Config{
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}
}

func (c Config) Validate() error {
	if len(strings.TrimSpace(c.SigningSecret)) < minSigningSecretBytes {
		return fmt.Errorf("core: signing_secret must be at least %d bytes", minSigningSecretBytes)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("core: access_token_ttl must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("core: refresh_token_ttl must be positive")
	}
	return nil
}
