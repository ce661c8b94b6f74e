// Package config loads coinfolio configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes everything the coinfolio server needs to run.
type Config struct {
	HTTPAddr     string `env:"COINFOLIO_HTTP_ADDR" envDefault:":8080"`
	DatabasePath string `env:"COINFOLIO_DB_PATH"   envDefault:"coinfolio.db"`

	// CoinPost OAuth application credentials.
	ClientID     string   `env:"COINFOLIO_COINPOST_CLIENT_ID"`
	ClientSecret string   `env:"COINFOLIO_COINPOST_CLIENT_SECRET"`
	RedirectURI  string   `env:"COINFOLIO_COINPOST_REDIRECT_URI" envDefault:"http://localhost:8080/login/coinpost/callback"`
	ProviderURL  string   `env:"COINFOLIO_COINPOST_BASE_URL"     envDefault:"https://id.coinpost.dev"`
	Scopes       []string `env:"COINFOLIO_COINPOST_SCOPES"       envSeparator:"," envDefault:"user.public"`

	SessionLifetime time.Duration `env:"COINFOLIO_SESSION_LIFETIME"  envDefault:"720h"`
	LoginAttemptTTL time.Duration `env:"COINFOLIO_LOGIN_ATTEMPT_TTL" envDefault:"10m"`
	ProviderTimeout time.Duration `env:"COINFOLIO_PROVIDER_TIMEOUT"  envDefault:"10s"`
	CleanupInterval time.Duration `env:"COINFOLIO_CLEANUP_INTERVAL"  envDefault:"1h"`

	// TrustForwardedProto must be enabled explicitly when coinfolio runs
	// behind a TLS-terminating proxy, so Secure cookie attributes follow
	// the client-facing scheme.
	TrustForwardedProto bool `env:"COINFOLIO_TRUST_FORWARDED_PROTO" envDefault:"false"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, fmt.Errorf("COINFOLIO_COINPOST_CLIENT_ID and COINFOLIO_COINPOST_CLIENT_SECRET are required")
	}
	return cfg, nil
}
