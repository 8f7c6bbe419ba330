package oauth

import (
	"net/http"
)

// Credentials holds the client side of a provider binding.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ResourceOwner is the authenticated user returned by a provider's profile endpoint.
type ResourceOwner interface {
	// ID returns the provider's unique user identifier.
	ID() string

	// Name returns the display name, or an empty string if the provider sent none.
	Name() string

	// ToMap returns the raw profile payload.
	ToMap() map[string]any
}

// Provider binds the generic authorization code flow to one identity platform.
// Implementations are immutable after construction and hold no per-request state,
// so a single value can be shared across goroutines.
//
// The Client drives the flow and depends only on this interface.
type Provider interface {
	// Name returns the provider identifier (e.g., "buffer", "github").
	Name() string

	// Credentials returns the configured client credentials.
	Credentials() Credentials

	// AuthorizationEndpoint returns the base URL users are redirected to.
	AuthorizationEndpoint() string

	// TokenEndpoint returns the URL the authorization code is exchanged at.
	// params are the grant parameters of the pending exchange.
	TokenEndpoint(params map[string]string) string

	// ResourceOwnerEndpoint returns the profile URL for the given token.
	ResourceOwnerEndpoint(token AccessToken) string

	// AuthorizationHeaders returns the headers that authenticate an API request.
	// token may be nil.
	AuthorizationHeaders(token *AccessToken) map[string]string

	// ValidateResponse inspects a provider response and its decoded JSON body.
	// It returns a *ProviderError when the response signals a failure.
	ValidateResponse(resp *http.Response, data map[string]any) error

	// BuildResourceOwner converts a decoded profile payload into a ResourceOwner.
	BuildResourceOwner(data map[string]any, token AccessToken) ResourceOwner

	// DefaultScopes returns the scopes requested when the caller sets none.
	DefaultScopes() []string
}

// bearerHeaders is the Authorization header shared by all built-in providers.
func bearerHeaders(token *AccessToken) map[string]string {
	var value string
	if token != nil {
		value = token.String()
	}
	return map[string]string{"Authorization": "Bearer " + value}
}
