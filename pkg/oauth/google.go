package oauth

import (
	"maps"
	"net/http"

	googleOAuth "golang.org/x/oauth2/google"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleProvider implements Provider for Google OAuth.
type GoogleProvider struct {
	creds  Credentials
	scopes []string
}

// NewGoogleProvider creates a new Google OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if err := validateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}

	return &GoogleProvider{
		creds: Credentials{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
		},
		scopes: scopes,
	}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

// Credentials returns the configured client credentials.
func (p *GoogleProvider) Credentials() Credentials {
	return p.creds
}

// AuthorizationEndpoint returns the Google authorization URL.
func (p *GoogleProvider) AuthorizationEndpoint() string {
	return googleOAuth.Endpoint.AuthURL
}

// TokenEndpoint returns the Google token URL.
func (p *GoogleProvider) TokenEndpoint(map[string]string) string {
	return googleOAuth.Endpoint.TokenURL
}

// ResourceOwnerEndpoint returns the userinfo URL.
func (p *GoogleProvider) ResourceOwnerEndpoint(AccessToken) string {
	return googleUserInfoURL
}

// AuthorizationHeaders returns a Bearer Authorization header.
func (p *GoogleProvider) AuthorizationHeaders(token *AccessToken) map[string]string {
	return bearerHeaders(token)
}

// ValidateResponse returns a *ProviderError for statuses >= 400.
// Google APIs nest failures as {"error": {"code", "message"}}, while the token
// endpoint uses flat {"error", "error_description"} fields.
func (p *GoogleProvider) ValidateResponse(resp *http.Response, data map[string]any) error {
	if resp == nil {
		return ErrNilResponse
	}
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	if nested, ok := data["error"].(map[string]any); ok {
		return newProviderError(GoogleProviderName, resp, stringField(nested, "message"), nested["code"])
	}

	msg := stringField(data, "error_description")
	if msg == "" {
		msg = stringField(data, "error")
	}
	return newProviderError(GoogleProviderName, resp, msg, nil)
}

// BuildResourceOwner wraps a Google userinfo payload.
func (p *GoogleProvider) BuildResourceOwner(data map[string]any, _ AccessToken) ResourceOwner {
	return &GoogleUser{data: maps.Clone(data)}
}

// DefaultScopes returns the configured scopes, GoogleDefaultScopes when none were set.
func (p *GoogleProvider) DefaultScopes() []string {
	return append([]string(nil), p.scopes...)
}

// GoogleUser is the resource owner returned by the userinfo endpoint.
type GoogleUser struct {
	data map[string]any
}

// ID returns the Google account id.
func (u *GoogleUser) ID() string {
	return idField(u.data, "id")
}

// Name returns the full name.
func (u *GoogleUser) Name() string {
	return stringField(u.data, "name")
}

// Email returns the primary email.
func (u *GoogleUser) Email() string {
	return stringField(u.data, "email")
}

// EmailVerified reports whether Google verified the email.
func (u *GoogleUser) EmailVerified() bool {
	v, _ := u.data["verified_email"].(bool)
	return v
}

// Picture returns the avatar URL.
func (u *GoogleUser) Picture() string {
	return stringField(u.data, "picture")
}

// ToMap returns a copy of the raw profile payload.
func (u *GoogleUser) ToMap() map[string]any {
	return maps.Clone(u.data)
}
