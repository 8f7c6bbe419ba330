// Package handler serves the authorization code flow over HTTP for every registered provider.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthkit/internal/state"
	"github.com/dmitrymomot/oauthkit/pkg/cookie"
	"github.com/dmitrymomot/oauthkit/pkg/logger"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

// ProviderParam is the route parameter holding the provider name.
const ProviderParam = "provider"

// Profile is the JSON body returned by a successful callback.
type Profile struct {
	Attributes map[string]any `json:"attributes"`
	Provider   string         `json:"provider"`
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
	Code        int    `json:"code,omitempty"`
}

// Handler runs login redirects and callbacks.
type Handler struct {
	registry *oauth.Registry
	states   state.Store
	pkce     *cookie.Manager
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithPKCE enables PKCE. The verifier travels in an encrypted cookie.
func WithPKCE(cookies *cookie.Manager) Option {
	return func(h *Handler) {
		h.pkce = cookies
	}
}

// New creates a Handler over the given registry and state store.
func New(registry *oauth.Registry, states state.Store, opts ...Option) *Handler {
	h := &Handler{
		registry: registry,
		states:   states,
		logger:   logger.NewNope(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Providers lists registered provider names.
func (h *Handler) Providers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"providers": h.registry.Names()})
}

// Login redirects the user to the provider's authorization page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	client, r, ok := h.client(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	st, err := h.states.Issue(w, r, client.Name())
	if err != nil {
		h.logger.ErrorContext(ctx, "issue state", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "state_unavailable"})
		return
	}

	var opts []oauth2.AuthCodeOption
	if h.pkce != nil {
		verifier := oauth2.GenerateVerifier()
		if err := h.pkce.SetEncrypted(w, verifierCookie(client.Name()), verifier); err != nil {
			h.logger.ErrorContext(ctx, "store pkce verifier", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "state_unavailable"})
			return
		}
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}

	h.logger.DebugContext(ctx, "redirecting to provider")
	http.Redirect(w, r, client.AuthCodeURL(st, opts...), http.StatusFound)
}

// Callback completes the flow and responds with the authenticated profile.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	client, r, ok := h.client(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		h.logger.InfoContext(ctx, "authorization denied", slog.String("reason", denied))
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error:       denied,
			Description: q.Get("error_description"),
		})
		return
	}

	if err := h.states.Consume(w, r, client.Name(), q.Get("state")); err != nil {
		h.logger.WarnContext(ctx, "state rejected", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_state"})
		return
	}

	var opts []oauth2.AuthCodeOption
	if h.pkce != nil {
		name := verifierCookie(client.Name())
		verifier, err := h.pkce.GetEncrypted(r, name)
		h.pkce.Delete(w, name)
		if err != nil {
			h.logger.WarnContext(ctx, "pkce verifier rejected", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_state"})
			return
		}
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	token, err := client.Exchange(ctx, q.Get("code"), opts...)
	if err != nil {
		h.fail(w, r, "exchange code", err)
		return
	}

	owner, err := client.FetchResourceOwner(ctx, token)
	if err != nil {
		h.fail(w, r, "fetch resource owner", err)
		return
	}

	h.logger.InfoContext(ctx, "user authenticated", slog.String("owner_id", owner.ID()))
	writeJSON(w, http.StatusOK, Profile{
		Provider:   client.Name(),
		ID:         owner.ID(),
		Name:       owner.Name(),
		Attributes: owner.ToMap(),
	})
}

// client resolves the provider from the route and tags the request context with it.
func (h *Handler) client(w http.ResponseWriter, r *http.Request) (*oauth.Client, *http.Request, bool) {
	name := chi.URLParam(r, ProviderParam)
	client, err := h.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "unknown_provider"})
		return nil, r, false
	}
	return client, r.WithContext(logger.WithProvider(r.Context(), name)), true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()

	if errors.Is(err, oauth.ErrMissingCode) {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "missing_code"})
		return
	}

	var pErr *oauth.ProviderError
	if errors.As(err, &pErr) {
		h.logger.WarnContext(ctx, op+" rejected by provider",
			slog.Int("code", pErr.Code),
			slog.String("message", pErr.Message),
		)
		writeError(w, http.StatusBadGateway, ErrorResponse{Error: pErr.Message, Code: pErr.Code})
		return
	}

	h.logger.ErrorContext(ctx, op+" failed", slog.Any("error", err))
	writeError(w, http.StatusBadGateway, ErrorResponse{Error: "provider_unavailable"})
}

func verifierCookie(provider string) string {
	return "oauth_pkce_" + provider
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
