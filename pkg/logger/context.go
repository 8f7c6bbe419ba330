package logger

import (
	"context"
	"log/slog"
)

type providerKey struct{}

// WithProvider stores the OAuth provider handling the current request.
func WithProvider(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, providerKey{}, name)
}

// ProviderFromContext returns the provider stored by WithProvider.
func ProviderFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(providerKey{}).(string)
	return name, ok && name != ""
}

// ProviderExtractor adds an "oauth_provider" attribute when the context carries one.
func ProviderExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		name, ok := ProviderFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("oauth_provider", name), true
	}
}

// StringExtractor adds key with the value returned by fn when it is non-empty.
func StringExtractor(key string, fn func(context.Context) string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v := fn(ctx)
		if v == "" {
			return slog.Attr{}, false
		}
		return slog.String(key, v), true
	}
}
