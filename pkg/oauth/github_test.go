package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

var _ oauth.Provider = (*oauth.GitHubProvider)(nil)

func TestNewGitHubProvider(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, p)
		require.Equal(t, "github", p.Name())
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientSecret: "test-secret",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
		require.Nil(t, p)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID: "test-id",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
		require.Nil(t, p)
	})

	t.Run("default scopes applied", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.Equal(t, oauth.GitHubDefaultScopes(), p.DefaultScopes())
	})

	t.Run("custom scopes", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			Scopes:       []string{"repo"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"repo"}, p.DefaultScopes())
	})
}

func TestGitHubProvider_Endpoints(t *testing.T) {
	t.Parallel()
	p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	require.Equal(t, "https://github.com/login/oauth/authorize", p.AuthorizationEndpoint())
	require.Equal(t, "https://github.com/login/oauth/access_token", p.TokenEndpoint(nil))
	require.Equal(t, "https://api.github.com/user", p.ResourceOwnerEndpoint(oauth.AccessToken{Token: "t"}))
	require.Equal(t, map[string]string{
		"Authorization": "Bearer t",
		"Accept":        "application/vnd.github+json",
	}, p.AuthorizationHeaders(&oauth.AccessToken{Token: "t"}))
}

func TestGitHubProvider_ValidateResponse(t *testing.T) {
	t.Parallel()
	p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, p.ValidateResponse(&http.Response{StatusCode: http.StatusOK}, nil))
	})

	t.Run("api message", func(t *testing.T) {
		t.Parallel()
		err := p.ValidateResponse(&http.Response{StatusCode: http.StatusUnauthorized}, map[string]any{
			"message": "Bad credentials",
		})
		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "Bad credentials", perr.Message)
		require.Equal(t, 401, perr.Code)
	})

	t.Run("token error", func(t *testing.T) {
		t.Parallel()
		err := p.ValidateResponse(&http.Response{StatusCode: http.StatusBadRequest}, map[string]any{
			"error": "bad_verification_code",
		})
		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "bad_verification_code", perr.Message)
	})
}

func TestGitHubProvider_BuildResourceOwner(t *testing.T) {
	t.Parallel()
	p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	t.Run("full profile", func(t *testing.T) {
		t.Parallel()
		owner := p.BuildResourceOwner(map[string]any{
			"id":         json.Number("42"),
			"login":      "octocat",
			"name":       "Octocat",
			"email":      "octo@example.com",
			"avatar_url": "https://example.com/octocat.png",
		}, oauth.AccessToken{})

		u, ok := owner.(*oauth.GitHubUser)
		require.True(t, ok)
		require.Equal(t, "42", u.ID())
		require.Equal(t, "Octocat", u.Name())
		require.Equal(t, "octocat", u.Login())
		require.Equal(t, "octo@example.com", u.Email())
		require.Equal(t, "https://example.com/octocat.png", u.AvatarURL())
	})

	t.Run("name falls back to login", func(t *testing.T) {
		t.Parallel()
		owner := p.BuildResourceOwner(map[string]any{"id": float64(7), "login": "ghost"}, oauth.AccessToken{})
		require.Equal(t, "7", owner.ID())
		require.Equal(t, "ghost", owner.Name())
	})
}

func TestGitHubProvider_Flow(t *testing.T) {
	t.Parallel()

	t.Run("exchange and fetch user", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "gh-token",
				"token_type":   "bearer",
			})
		})
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer gh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"message": "Bad credentials"})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":    42,
				"login": "octocat",
				"name":  "Octocat",
			})
		})

		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{ClientID: "test-id", ClientSecret: "test-secret"})
		require.NoError(t, err)

		c, err := oauth.NewClient(p, oauth.WithHTTPClient(&http.Client{
			Transport: &githubRewriteTransport{base: http.DefaultTransport, handler: mux},
		}))
		require.NoError(t, err)

		token, err := c.Exchange(context.Background(), "code")
		require.NoError(t, err)
		require.Equal(t, "gh-token", token.String())

		owner, err := c.FetchResourceOwner(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, "42", owner.ID())
		require.Equal(t, "Octocat", owner.Name())
	})

	t.Run("user endpoint error", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "rate limited"})
		})

		p, err := oauth.NewGitHubProvider(oauth.GitHubConfig{ClientID: "test-id", ClientSecret: "test-secret"})
		require.NoError(t, err)

		c, err := oauth.NewClient(p, oauth.WithHTTPClient(&http.Client{
			Transport: &githubRewriteTransport{base: http.DefaultTransport, handler: mux},
		}))
		require.NoError(t, err)

		owner, err := c.FetchResourceOwner(context.Background(), oauth.AccessToken{Token: "t"})
		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "rate limited", perr.Message)
		require.Equal(t, 403, perr.Code)
		require.Nil(t, owner)
	})
}

// githubRewriteTransport intercepts requests to GitHub endpoints and routes them
// to a local handler instead.
type githubRewriteTransport struct {
	base    http.RoundTripper
	handler http.Handler
}

func (t *githubRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "github.com") {
		recorder := httptest.NewRecorder()
		t.handler.ServeHTTP(recorder, req)
		return recorder.Result(), nil
	}
	return t.base.RoundTrip(req)
}
