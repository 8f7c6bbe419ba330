package oauth_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

var _ oauth.Provider = (*oauth.BufferProvider)(nil)

func newBuffer(t *testing.T) *oauth.BufferProvider {
	t.Helper()
	p, err := oauth.NewBufferProvider(oauth.BufferConfig{
		ClientID:     "mock_client_id",
		ClientSecret: "mock_secret",
		RedirectURL:  "none",
	})
	require.NoError(t, err)
	return p
}

func TestNewBufferProvider(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewBufferProvider(oauth.BufferConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, p)
		require.Equal(t, "buffer", p.Name())
		require.Equal(t, oauth.Credentials{ClientID: "test-id", ClientSecret: "test-secret"}, p.Credentials())
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewBufferProvider(oauth.BufferConfig{ClientSecret: "test-secret"})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
		require.Nil(t, p)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewBufferProvider(oauth.BufferConfig{ClientID: "test-id"})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
		require.Nil(t, p)
	})
}

func TestBufferProvider_Endpoints(t *testing.T) {
	t.Parallel()
	p := newBuffer(t)

	t.Run("api url", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "https://api.bufferapp.com/1", p.APIURL())
	})

	t.Run("authorization endpoint ignores credentials", func(t *testing.T) {
		t.Parallel()
		other, err := oauth.NewBufferProvider(oauth.BufferConfig{ClientID: "a", ClientSecret: "b"})
		require.NoError(t, err)
		require.Equal(t, "https://bufferapp.com/oauth2/authorize", p.AuthorizationEndpoint())
		require.Equal(t, p.AuthorizationEndpoint(), other.AuthorizationEndpoint())
	})

	t.Run("token endpoint ignores params", func(t *testing.T) {
		t.Parallel()
		want := "https://api.bufferapp.com/1/oauth2/token.json"
		require.Equal(t, want, p.TokenEndpoint(nil))
		require.Equal(t, want, p.TokenEndpoint(map[string]string{}))
		require.Equal(t, want, p.TokenEndpoint(map[string]string{"grant_type": "refresh_token", "code": "x"}))
	})

	t.Run("resource owner endpoint carries the token", func(t *testing.T) {
		t.Parallel()
		got := p.ResourceOwnerEndpoint(oauth.AccessToken{Token: "abc"})
		require.Equal(t, p.APIURL()+"/user.json?access_token=abc", got)
	})

	t.Run("resource owner endpoint escapes the token", func(t *testing.T) {
		t.Parallel()
		got := p.ResourceOwnerEndpoint(oauth.AccessToken{Token: "a/b+c"})
		require.Equal(t, p.APIURL()+"/user.json?access_token=a%2Fb%2Bc", got)
	})
}

func TestBufferProvider_AuthorizationHeaders(t *testing.T) {
	t.Parallel()
	p := newBuffer(t)

	require.Equal(t, map[string]string{"Authorization": "Bearer xyz"}, p.AuthorizationHeaders(&oauth.AccessToken{Token: "xyz"}))
	require.Equal(t, map[string]string{"Authorization": "Bearer "}, p.AuthorizationHeaders(nil))
}

func TestBufferProvider_ValidateResponse(t *testing.T) {
	t.Parallel()
	p := newBuffer(t)

	t.Run("success status passes", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusOK}
		require.NoError(t, p.ValidateResponse(resp, map[string]any{"error": "ignored"}))
		require.NoError(t, p.ValidateResponse(resp, nil))
	})

	t.Run("redirect status passes", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, p.ValidateResponse(&http.Response{StatusCode: http.StatusFound}, nil))
	})

	t.Run("error without code uses status", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusBadRequest}
		err := p.ValidateResponse(resp, map[string]any{"error": "bad_request"})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.ErrorIs(t, err, oauth.ErrProviderResponse)
		require.Equal(t, "bad_request", perr.Message)
		require.Equal(t, 400, perr.Code)
		require.Equal(t, "buffer", perr.Provider)
		require.Same(t, resp, perr.Response)
		require.Equal(t, 400, perr.StatusCode())
	})

	t.Run("body code takes precedence", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusBadRequest}
		err := p.ValidateResponse(resp, map[string]any{"error": "bad_request", "code": float64(42)})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 42, perr.Code)
	})

	t.Run("numeric string code", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusForbidden}
		err := p.ValidateResponse(resp, map[string]any{"error": "denied", "code": "1003"})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1003, perr.Code)
	})

	t.Run("non-numeric code falls back to status", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusUnauthorized}
		err := p.ValidateResponse(resp, map[string]any{"error": "nope", "code": "abc"})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 401, perr.Code)
	})

	t.Run("fractional code falls back to status", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusUnauthorized}
		err := p.ValidateResponse(resp, map[string]any{"error": "nope", "code": 4.5})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 401, perr.Code)
	})

	t.Run("code forms", func(t *testing.T) {
		t.Parallel()
		for name, tc := range map[string]struct {
			code any
			want int
		}{
			"json integer":          {code: json.Number("42"), want: 42},
			"json integral decimal": {code: json.Number("42.0"), want: 42},
			"json exponent":         {code: json.Number("4.2e1"), want: 42},
			"json fraction":         {code: json.Number("4.25"), want: 400},
			"json out of range":     {code: json.Number("99999999999"), want: 400},
			"float out of range":    {code: float64(1e20), want: 400},
			"negative float":        {code: float64(-7), want: -7},
			"int64 out of range":    {code: int64(1) << 40, want: 400},
			"string out of range":   {code: "1099511627776", want: 400},
			"bool":                  {code: true, want: 400},
		} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				resp := &http.Response{StatusCode: http.StatusBadRequest}
				err := p.ValidateResponse(resp, map[string]any{"error": "bad", "code": tc.code})

				var perr *oauth.ProviderError
				require.ErrorAs(t, err, &perr)
				require.Equal(t, tc.want, perr.Code)
			})
		}
	})

	t.Run("missing error message falls back to status text", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusInternalServerError}
		err := p.ValidateResponse(resp, nil)

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "Internal Server Error", perr.Message)
		require.Equal(t, 500, perr.Code)
	})

	t.Run("unknown status without message", func(t *testing.T) {
		t.Parallel()
		err := p.ValidateResponse(&http.Response{StatusCode: 599}, map[string]any{})

		var perr *oauth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "unknown error", perr.Message)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		err := p.ValidateResponse(nil, nil)
		require.ErrorIs(t, err, oauth.ErrNilResponse)
		require.False(t, errors.Is(err, oauth.ErrProviderResponse))
	})
}

func TestBufferProvider_BuildResourceOwner(t *testing.T) {
	t.Parallel()
	p := newBuffer(t)

	t.Run("maps id and name", func(t *testing.T) {
		t.Parallel()
		raw := map[string]any{"id": "u1", "name": "Jane"}
		owner := p.BuildResourceOwner(raw, oauth.AccessToken{Token: "t"})

		require.Equal(t, "u1", owner.ID())
		require.Equal(t, "Jane", owner.Name())
		require.Equal(t, raw, owner.ToMap())

		u, ok := owner.(*oauth.BufferUser)
		require.True(t, ok)
		require.Empty(t, u.Timezone())
	})

	t.Run("extra attributes are kept", func(t *testing.T) {
		t.Parallel()
		raw := map[string]any{"id": "u2", "name": "Joe", "timezone": "Europe/Paris", "plan": "pro"}
		u := p.BuildResourceOwner(raw, oauth.AccessToken{}).(*oauth.BufferUser)

		require.Equal(t, "Europe/Paris", u.Timezone())
		require.Equal(t, "pro", u.Plan())
		require.Equal(t, raw, u.ToMap())
	})

	t.Run("absent fields are empty", func(t *testing.T) {
		t.Parallel()
		owner := p.BuildResourceOwner(map[string]any{}, oauth.AccessToken{})
		require.Empty(t, owner.ID())
		require.Empty(t, owner.Name())
	})

	t.Run("owner is detached from input", func(t *testing.T) {
		t.Parallel()
		raw := map[string]any{"id": "u3"}
		owner := p.BuildResourceOwner(raw, oauth.AccessToken{})
		raw["id"] = "changed"

		require.Equal(t, "u3", owner.ID())

		m := owner.ToMap()
		m["id"] = "changed again"
		require.Equal(t, "u3", owner.ID())
	})
}

func TestBufferProvider_DefaultScopes(t *testing.T) {
	t.Parallel()
	p := newBuffer(t)

	require.NotNil(t, p.DefaultScopes())
	require.Empty(t, p.DefaultScopes())
}

func TestBufferProvider_Deterministic(t *testing.T) {
	t.Parallel()
	a := newBuffer(t)
	b := newBuffer(t)
	token := oauth.AccessToken{Token: "abc"}
	raw := map[string]any{"id": "u1", "name": "Jane"}

	require.Equal(t, a.AuthorizationEndpoint(), b.AuthorizationEndpoint())
	require.Equal(t, a.TokenEndpoint(nil), b.TokenEndpoint(nil))
	require.Equal(t, a.ResourceOwnerEndpoint(token), b.ResourceOwnerEndpoint(token))
	require.Equal(t, a.AuthorizationHeaders(&token), b.AuthorizationHeaders(&token))
	require.Equal(t, a.DefaultScopes(), b.DefaultScopes())
	require.Equal(t, a.BuildResourceOwner(raw, token).ToMap(), b.BuildResourceOwner(raw, token).ToMap())

	resp := &http.Response{StatusCode: http.StatusBadRequest}
	body := map[string]any{"error": "bad_request"}
	require.Equal(t, a.ValidateResponse(resp, body), b.ValidateResponse(resp, body))
}
