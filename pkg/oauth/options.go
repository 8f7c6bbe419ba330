package oauth

import (
	"log/slog"
	"net/http"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	scopes     []string
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, tracing).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithScopes overrides the provider's default scopes.
func WithScopes(scopes ...string) Option {
	return func(o *options) {
		o.scopes = scopes
	}
}
