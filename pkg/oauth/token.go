package oauth

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// resourceOwnerIDKey is the token response field some providers use to name the owner.
const resourceOwnerIDKey = "resource_owner_id"

// AccessToken is the bearer credential issued by a provider.
// Providers treat it as opaque and only read it through String.
type AccessToken struct {
	Expires         time.Time // zero when the provider sent no expiry
	Token           string
	RefreshToken    string
	ResourceOwnerID string
}

// NewAccessToken converts a token returned by golang.org/x/oauth2.
func NewAccessToken(t *oauth2.Token) AccessToken {
	if t == nil {
		return AccessToken{}
	}

	at := AccessToken{
		Token:        t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expires:      t.Expiry,
	}

	switch v := t.Extra(resourceOwnerIDKey).(type) {
	case string:
		at.ResourceOwnerID = v
	case float64:
		at.ResourceOwnerID = fmt.Sprintf("%.0f", v)
	}

	return at
}

// String returns the raw token value, the form used in headers and query strings.
func (t AccessToken) String() string {
	return t.Token
}

// HasExpired reports whether the token has a known expiry in the past.
func (t AccessToken) HasExpired() bool {
	return !t.Expires.IsZero() && time.Now().After(t.Expires)
}

// OAuth2 converts the token back for use with golang.org/x/oauth2 helpers.
func (t AccessToken) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.Token,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expires,
	}
}
