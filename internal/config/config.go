// Package config loads the oauthkit service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

// minCookieSecret matches the key length required by pkg/cookie.
const minCookieSecret = 32

// State store kinds accepted by OAUTH_STATE_STORE.
const (
	StateStoreCookie = "cookie"
	StateStoreMemory = "memory"
	StateStoreRedis  = "redis"
)

var (
	// ErrWeakCookieSecret is returned when COOKIE_SECRET is shorter than 32 bytes.
	ErrWeakCookieSecret = errors.New("config: COOKIE_SECRET must be at least 32 bytes")

	// ErrUnknownStateStore is returned for an OAUTH_STATE_STORE value other than cookie, memory or redis.
	ErrUnknownStateStore = errors.New("config: unknown OAUTH_STATE_STORE")

	// ErrMissingRedisURL is returned when the redis state store is selected without REDIS_URL.
	ErrMissingRedisURL = errors.New("config: OAUTH_STATE_STORE=redis requires REDIS_URL")
)

// Config is the complete service configuration.
type Config struct {
	HTTP   HTTPConfig
	Cookie CookieConfig
	Log    logger.Config

	// StateStore is one of cookie, memory, redis. Empty picks redis when RedisURL is set
	// and cookie otherwise.
	StateStore    string        `env:"OAUTH_STATE_STORE"`
	RedisURL      string        `env:"REDIS_URL"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	StateTTL      time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	// PKCE adds an S256 code challenge to every authorization request.
	PKCE bool `env:"OAUTH_PKCE" envDefault:"false"`

	Buffer oauth.BufferConfig
	GitHub oauth.GitHubConfig
	Google oauth.GoogleConfig
}

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// CookieConfig configures the cookies carrying flow state.
type CookieConfig struct {
	Secret string `env:"COOKIE_SECRET,required"`
	Domain string `env:"COOKIE_DOMAIN"`
	Secure bool   `env:"COOKIE_SECURE" envDefault:"true"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Cookie.Secret) < minCookieSecret {
		return ErrWeakCookieSecret
	}
	if c.StateTTL <= 0 {
		return fmt.Errorf("config: OAUTH_STATE_TTL must be positive, got %s", c.StateTTL)
	}
	switch c.StateStore {
	case "", StateStoreCookie, StateStoreMemory:
	case StateStoreRedis:
		if c.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStateStore, c.StateStore)
	}
	return nil
}

// StateBackend resolves the effective state store kind.
func (c Config) StateBackend() string {
	if c.StateStore != "" {
		return c.StateStore
	}
	if c.RedisURL != "" {
		return StateStoreRedis
	}
	return StateStoreCookie
}

// GitHubEnabled reports whether GitHub credentials are configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHub.ClientID != ""
}

// GoogleEnabled reports whether Google credentials are configured.
func (c Config) GoogleEnabled() bool {
	return c.Google.ClientID != ""
}
