// Package logger provides structured JSON logging with context extraction and optional
// Sentry reporting, built on log/slog.
//
// Context extractors run on every log call and add request-scoped attributes such as
// the request ID or the OAuth provider handling the request:
//
//	log := logger.New(
//		logger.ProviderExtractor(),
//		logger.StringExtractor("request_id", middleware.GetReqID),
//	)
//
//	ctx = logger.WithProvider(ctx, "buffer")
//	log.InfoContext(ctx, "callback received")
//	// {"level":"INFO","msg":"callback received","oauth_provider":"buffer"}
//
// NewFromConfig mirrors warnings and errors to Sentry when SENTRY_DSN is set and falls
// back to stdout-only logging otherwise, so the same code path runs in development
// and production. NewNope returns a logger that discards everything.
package logger
