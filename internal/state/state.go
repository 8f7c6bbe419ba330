// Package state keeps the OAuth state value between the authorization redirect and
// the provider callback.
package state

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/oauthkit/pkg/cache"
	"github.com/dmitrymomot/oauthkit/pkg/cookie"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

var (
	// ErrMissingState is returned when the callback carries no state or none was issued.
	ErrMissingState = errors.New("state: missing")

	// ErrStateMismatch is returned when the callback state does not match the issued one.
	ErrStateMismatch = errors.New("state: mismatch")
)

// Store issues and verifies single-use state values for one provider flow.
type Store interface {
	// Issue creates a state value for provider and remembers it.
	Issue(w http.ResponseWriter, r *http.Request, provider string) (string, error)

	// Consume verifies the state returned by provider and forgets it.
	Consume(w http.ResponseWriter, r *http.Request, provider, state string) error
}

// CookieStore binds the state to the browser through a signed cookie.
type CookieStore struct {
	cookies *cookie.Manager
}

// NewCookieStore creates a cookie-backed store.
func NewCookieStore(cookies *cookie.Manager) *CookieStore {
	return &CookieStore{cookies: cookies}
}

func cookieName(provider string) string {
	return "oauth_state_" + provider
}

// Issue implements Store.
func (s *CookieStore) Issue(w http.ResponseWriter, _ *http.Request, provider string) (string, error) {
	st, err := oauth.GenerateState()
	if err != nil {
		return "", err
	}
	s.cookies.SetSigned(w, cookieName(provider), st)
	return st, nil
}

// Consume implements Store. The cookie is removed whatever the outcome.
func (s *CookieStore) Consume(w http.ResponseWriter, r *http.Request, provider, state string) error {
	name := cookieName(provider)
	defer s.cookies.Delete(w, name)

	if state == "" {
		return ErrMissingState
	}

	want, err := s.cookies.GetSigned(r, name)
	if err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return ErrMissingState
		}
		return errors.Join(ErrStateMismatch, err)
	}

	if subtle.ConstantTimeCompare([]byte(want), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

// CacheStore keeps issued state values server-side. Each value is valid once,
// for the provider it was issued for.
type CacheStore struct {
	cache cache.Cache[string]
	ttl   time.Duration
}

// NewCacheStore creates a store backed by c. Values expire after ttl.
func NewCacheStore(c cache.Cache[string], ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

// Issue implements Store.
func (s *CacheStore) Issue(_ http.ResponseWriter, r *http.Request, provider string) (string, error) {
	st, err := oauth.GenerateState()
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(r.Context(), st, provider, s.ttl); err != nil {
		return "", err
	}
	return st, nil
}

// Consume implements Store.
func (s *CacheStore) Consume(_ http.ResponseWriter, r *http.Request, provider, state string) error {
	if state == "" {
		return ErrMissingState
	}

	issuedFor, err := s.take(r.Context(), state)
	if err != nil {
		return err
	}
	if issuedFor != provider {
		return ErrStateMismatch
	}
	return nil
}

func (s *CacheStore) take(ctx context.Context, state string) (string, error) {
	v, err := s.cache.Take(ctx, state)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return "", ErrStateMismatch
		}
		return "", err
	}
	return v, nil
}
