package oauth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func TestNewAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("nil token", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, oauth.AccessToken{}, oauth.NewAccessToken(nil))
	})

	t.Run("copies fields", func(t *testing.T) {
		t.Parallel()
		exp := time.Now().Add(time.Hour)
		tok := (&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       exp,
		}).WithExtra(map[string]any{"resource_owner_id": float64(99)})

		at := oauth.NewAccessToken(tok)
		require.Equal(t, "access", at.String())
		require.Equal(t, "refresh", at.RefreshToken)
		require.Equal(t, exp, at.Expires)
		require.Equal(t, "99", at.ResourceOwnerID)
		require.False(t, at.HasExpired())
	})

	t.Run("round trip to oauth2", func(t *testing.T) {
		t.Parallel()
		at := oauth.AccessToken{Token: "access", RefreshToken: "refresh"}
		tok := at.OAuth2()
		require.Equal(t, "access", tok.AccessToken)
		require.Equal(t, "refresh", tok.RefreshToken)
		require.Equal(t, "Bearer", tok.Type())
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		at := oauth.AccessToken{Token: "x", Expires: time.Now().Add(-time.Minute)}
		require.True(t, at.HasExpired())
	})
}

func TestGenerateState(t *testing.T) {
	t.Parallel()

	a, err := oauth.GenerateState()
	require.NoError(t, err)
	b, err := oauth.GenerateState()
	require.NoError(t, err)

	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
}
