package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.appstoreconnect.apple.com/v1"

type RetryConfig struct {
	MaxAttemptsRateLimit int           `koanf:"max_attempts_rate_limit" mapstructure:"max_attempts_rate_limit"`
	MaxAttemptsTransient int           `koanf:"max_attempts_transient" mapstructure:"max_attempts_transient"`
	InitialBackoff       time.Duration `koanf:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff           time.Duration `koanf:"max_backoff" mapstructure:"max_backoff"`
}

type TokenConfig struct {
	TTL           time.Duration `koanf:"ttl" mapstructure:"ttl"`
	RefreshMargin time.Duration `koanf:"refresh_margin" mapstructure:"refresh_margin"`
}

type Config struct {
	BaseURL        string      `koanf:"base_url" mapstructure:"base_url"`
	KeyID          string      `koanf:"key_id" mapstructure:"key_id"`
	IssuerID       string      `koanf:"issuer_id" mapstructure:"issuer_id"`
	PrivateKeyPath string      `koanf:"private_key_path" mapstructure:"private_key_path"`
	PrivateKeyPEM  string      `koanf:"private_key_pem" mapstructure:"private_key_pem"`
	Token          TokenConfig `koanf:"token" mapstructure:"token"`
	Retry          RetryConfig `koanf:"retry" mapstructure:"retry"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Token: TokenConfig{
			TTL:           20 * time.Minute,
			RefreshMargin: time.Minute,
		},
		Retry: RetryConfig{
			MaxAttemptsRateLimit: 5,
			MaxAttemptsTransient: 2,
			InitialBackoff:       time.Second,
			MaxBackoff:           time.Minute,
		},
	}
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core: base_url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if c.Retry.MaxAttemptsRateLimit < 0 || c.Retry.MaxAttemptsTransient < 0 {
		return fmt.Errorf("core: retry attempt caps must not be negative")
	}
	if c.Retry.InitialBackoff < 0 || c.Retry.MaxBackoff < 0 {
		return fmt.Errorf("core: retry backoff durations must not be negative")
	}
	if c.Token.TTL < 0 || c.Token.RefreshMargin < 0 {
		return fmt.Errorf("core: token durations must not be negative")
	}
	return nil
}

// Credentials assembles the credential value from the resolved config.
// Callers that loaded the key from a file pass its contents in pem.
func (c Config) Credentials(pem []byte) Credentials {
	if len(pem) == 0 && strings.TrimSpace(c.PrivateKeyPEM) != "" {
		pem = []byte(c.PrivateKeyPEM)
	}
	return Credentials{
		KeyID:         strings.TrimSpace(c.KeyID),
		IssuerID:      strings.TrimSpace(c.IssuerID),
		PrivateKeyPEM: pem,
	}
}
