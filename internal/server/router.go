package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/oauthkit/internal/handler"
	"github.com/dmitrymomot/oauthkit/pkg/health"
	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

// RequestIDExtractor adds the chi request id to every log record made with the request context.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("request_id", middleware.GetReqID)
}

// NewRouter mounts the OAuth routes and health probes.
func NewRouter(h *handler.Handler, checks health.Checks, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(log)))

	r.Get("/providers", h.Providers)
	r.Get("/auth/{"+handler.ProviderParam+"}", h.Login)
	r.Get("/auth/{"+handler.ProviderParam+"}/callback", h.Callback)

	return r
}

// echoRequestID returns the request id to the caller so failures can be correlated with logs.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
