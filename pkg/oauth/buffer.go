package oauth

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
)

const (
	// BufferProviderName is the identifier for Buffer OAuth provider.
	BufferProviderName = "buffer"

	// BufferBaseURL is the Buffer web application host.
	BufferBaseURL = "https://bufferapp.com"

	// BufferAPIBaseURL is the Buffer API host.
	BufferAPIBaseURL = "https://api.bufferapp.com"

	// BufferAPIVersion is the API version segment of every API URL.
	BufferAPIVersion = 1
)

// BufferProvider implements Provider for Buffer.
type BufferProvider struct {
	creds Credentials
}

// NewBufferProvider creates a new Buffer OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewBufferProvider(cfg BufferConfig) (*BufferProvider, error) {
	if err := validateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	return &BufferProvider{
		creds: Credentials{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
		},
	}, nil
}

// Name returns the provider identifier.
func (p *BufferProvider) Name() string {
	return BufferProviderName
}

// Credentials returns the configured client credentials.
func (p *BufferProvider) Credentials() Credentials {
	return p.creds
}

// APIURL returns the versioned Buffer API root, e.g. https://api.bufferapp.com/1.
func (p *BufferProvider) APIURL() string {
	return fmt.Sprintf("%s/%d", BufferAPIBaseURL, BufferAPIVersion)
}

// AuthorizationEndpoint returns the Buffer authorization URL.
func (p *BufferProvider) AuthorizationEndpoint() string {
	return BufferBaseURL + "/oauth2/authorize"
}

// TokenEndpoint returns the Buffer token URL. Buffer uses one URL for every grant.
func (p *BufferProvider) TokenEndpoint(map[string]string) string {
	return p.APIURL() + "/oauth2/token.json"
}

// ResourceOwnerEndpoint returns the profile URL. Buffer expects the token in the query string.
func (p *BufferProvider) ResourceOwnerEndpoint(token AccessToken) string {
	return p.APIURL() + "/user.json?access_token=" + url.QueryEscape(token.String())
}

// AuthorizationHeaders returns a Bearer Authorization header.
// The header is always present, with an empty credential when token is nil.
func (p *BufferProvider) AuthorizationHeaders(token *AccessToken) map[string]string {
	return bearerHeaders(token)
}

// ValidateResponse returns a *ProviderError for statuses >= 400.
// The message comes from the "error" field and the code from "code" when numeric.
func (p *BufferProvider) ValidateResponse(resp *http.Response, data map[string]any) error {
	if resp == nil {
		return ErrNilResponse
	}
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	return newProviderError(BufferProviderName, resp, stringField(data, "error"), data["code"])
}

// BuildResourceOwner wraps a Buffer user payload.
func (p *BufferProvider) BuildResourceOwner(data map[string]any, _ AccessToken) ResourceOwner {
	return &BufferUser{data: maps.Clone(data)}
}

// DefaultScopes returns no scopes: Buffer grants full access without them.
func (p *BufferProvider) DefaultScopes() []string {
	return []string{}
}

// BufferUser is the resource owner returned by /user.json.
type BufferUser struct {
	data map[string]any
}

// ID returns the Buffer user id.
func (u *BufferUser) ID() string {
	return idField(u.data, "id")
}

// Name returns the user's display name.
func (u *BufferUser) Name() string {
	return stringField(u.data, "name")
}

// Timezone returns the user's configured timezone, if any.
func (u *BufferUser) Timezone() string {
	return stringField(u.data, "timezone")
}

// Plan returns the user's Buffer plan, if any.
func (u *BufferUser) Plan() string {
	return stringField(u.data, "plan")
}

// ToMap returns a copy of the raw profile payload.
func (u *BufferUser) ToMap() map[string]any {
	return maps.Clone(u.data)
}
