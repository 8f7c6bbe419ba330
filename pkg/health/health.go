// Package health serves the liveness and readiness probes of the OAuth service.
//
// Readiness runs every dependency check concurrently under one deadline. A check that
// ignores its context is reported down once the deadline passes; the probe never waits for it.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusUp means the process, or the dependency, can serve the flow.
	StatusUp = "up"
	// StatusDown means at least one dependency failed.
	StatusDown = "down"
)

// CheckFunc probes one dependency. redis.Healthcheck has this shape.
type CheckFunc func(ctx context.Context) error

// Checks maps dependency names to their probes.
type Checks map[string]CheckFunc

// Report is the JSON body written by both handlers.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Result is the outcome of a single check.
type Result struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Option configures the readiness probe.
type Option func(*readiness)

// WithTimeout bounds the whole readiness run.
func WithTimeout(d time.Duration) Option {
	return func(rd *readiness) {
		if d > 0 {
			rd.timeout = d
		}
	}
}

// WithLogger logs failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(rd *readiness) {
		if l != nil {
			rd.logger = l
		}
	}
}

// LivenessHandler reports the process as up. It never touches dependencies.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, Report{Status: StatusUp})
	}
}

// ReadinessHandler responds 200 when every check passes and 503 otherwise.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	rd := &readiness{
		checks:  checks,
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(rd)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rep := rd.probe(r.Context())

		code := http.StatusOK
		if rep.Status != StatusUp {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, code, rep)
	}
}

type readiness struct {
	checks  Checks
	logger  *slog.Logger
	timeout time.Duration
}

type namedResult struct {
	name string
	Result
}

func (rd *readiness) probe(ctx context.Context) Report {
	rep := Report{Status: StatusUp}
	if len(rd.checks) == 0 {
		return rep
	}

	ctx, cancel := context.WithTimeout(ctx, rd.timeout)
	defer cancel()

	// Buffered so late checks can finish after the probe has returned.
	out := make(chan namedResult, len(rd.checks))
	for name, check := range rd.checks {
		go func() {
			out <- namedResult{name: name, Result: rd.run(ctx, name, check)}
		}()
	}

	rep.Checks = make(map[string]Result, len(rd.checks))
	for range len(rd.checks) {
		select {
		case res := <-out:
			rep.Checks[res.name] = res.Result
			if res.Status != StatusUp {
				rep.Status = StatusDown
			}
		case <-ctx.Done():
			rd.markPending(ctx, &rep)
			return rep
		}
	}
	return rep
}

func (rd *readiness) run(ctx context.Context, name string, check CheckFunc) Result {
	start := time.Now()
	err := check(ctx)
	res := Result{Status: StatusUp, DurationMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
		rd.logger.WarnContext(ctx, "readiness check failed",
			slog.String("check", name),
			slog.Any("error", err),
		)
	}
	return res
}

// markPending reports every check that has not answered yet as down.
func (rd *readiness) markPending(ctx context.Context, rep *Report) {
	rep.Status = StatusDown
	for name := range rd.checks {
		if _, ok := rep.Checks[name]; ok {
			continue
		}
		rep.Checks[name] = Result{
			Status:     StatusDown,
			Error:      ctx.Err().Error(),
			DurationMS: rd.timeout.Milliseconds(),
		}
		rd.logger.WarnContext(ctx, "readiness check timed out", slog.String("check", name))
	}
}

func writeReport(w http.ResponseWriter, code int, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}
