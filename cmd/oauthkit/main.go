// Command oauthkit runs the OAuth 2.0 authorization code flow for Buffer and
// any other configured provider, returning the authenticated profile as JSON.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrymomot/oauthkit/internal/config"
	"github.com/dmitrymomot/oauthkit/internal/handler"
	"github.com/dmitrymomot/oauthkit/internal/server"
	"github.com/dmitrymomot/oauthkit/internal/state"
	"github.com/dmitrymomot/oauthkit/pkg/cache"
	"github.com/dmitrymomot/oauthkit/pkg/cookie"
	"github.com/dmitrymomot/oauthkit/pkg/health"
	"github.com/dmitrymomot/oauthkit/pkg/logger"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
	"github.com/dmitrymomot/oauthkit/pkg/redis"
)

// providerTimeout bounds every call to a provider's token and profile endpoints.
const providerTimeout = 10 * time.Second

func main() {
	// A missing .env file is fine: the real environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Log, server.RequestIDExtractor(), logger.ProviderExtractor())

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	registry, err := newRegistry(cfg, log)
	if err != nil {
		return err
	}

	cookies, err := cookie.New(cfg.Cookie.Secret,
		cookie.WithDomain(cfg.Cookie.Domain),
		cookie.WithSecure(cfg.Cookie.Secure),
		cookie.WithMaxAge(cfg.StateTTL),
	)
	if err != nil {
		return err
	}

	states, checks, hooks, err := newStateStore(ctx, cfg, cookies, log)
	if err != nil {
		return err
	}

	opts := []handler.Option{handler.WithLogger(log)}
	if cfg.PKCE {
		opts = append(opts, handler.WithPKCE(cookies))
	}
	h := handler.New(registry, states, opts...)

	log.Info("providers registered", slog.Any("providers", registry.Names()))

	return server.Run(ctx, server.Config{
		Handler:         server.NewRouter(h, checks, log),
		Logger:          log,
		Addr:            cfg.HTTP.Addr,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		ShutdownHooks:   hooks,
	})
}

// newStateStore builds the configured state store with its readiness checks and shutdown hooks.
func newStateStore(ctx context.Context, cfg config.Config, cookies *cookie.Manager, log *slog.Logger) (state.Store, health.Checks, []server.ShutdownHook, error) {
	checks := health.Checks{}

	switch cfg.StateBackend() {
	case config.StateStoreRedis:
		client, err := redis.Open(ctx, cfg.RedisURL, redis.WithPoolSize(cfg.RedisPoolSize))
		if err != nil {
			return nil, nil, nil, err
		}
		checks["redis"] = redis.Healthcheck(client)
		log.Info("state stored in redis")
		store := state.NewCacheStore(cache.NewRedis[string](client, "oauthkit_state", cfg.StateTTL), cfg.StateTTL)
		return store, checks, []server.ShutdownHook{redis.Shutdown(client)}, nil

	case config.StateStoreMemory:
		mem := cache.NewMemory[string](cfg.StateTTL, time.Minute)
		log.Info("state stored in memory")
		closeMem := func(context.Context) error { return mem.Close() }
		return state.NewCacheStore(mem, cfg.StateTTL), checks, []server.ShutdownHook{closeMem}, nil

	default:
		return state.NewCookieStore(cookies), checks, nil, nil
	}
}

// newRegistry registers Buffer and every optional provider that has credentials.
func newRegistry(cfg config.Config, log *slog.Logger) (*oauth.Registry, error) {
	registry := oauth.NewRegistry()
	httpClient := &http.Client{Timeout: providerTimeout}

	providers := make([]oauth.Provider, 0, 3)

	buffer, err := oauth.NewBufferProvider(cfg.Buffer)
	if err != nil {
		return nil, err
	}
	providers = append(providers, buffer)

	if cfg.GitHubEnabled() {
		p, err := oauth.NewGitHubProvider(cfg.GitHub)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if cfg.GoogleEnabled() {
		p, err := oauth.NewGoogleProvider(cfg.Google)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	for _, p := range providers {
		client, err := oauth.NewClient(p,
			oauth.WithHTTPClient(httpClient),
			oauth.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(client); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
