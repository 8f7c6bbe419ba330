package oauth

import (
	"maps"
	"net/http"

	githubOAuth "golang.org/x/oauth2/github"
)

const (
	// GitHubProviderName is the identifier for GitHub OAuth provider.
	GitHubProviderName = "github"
	githubUserURL      = "https://api.github.com/user"
)

// GitHubDefaultScopes returns the default scopes for GitHub OAuth.
func GitHubDefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// GitHubProvider implements Provider for GitHub OAuth.
type GitHubProvider struct {
	creds  Credentials
	scopes []string
}

// NewGitHubProvider creates a new GitHub OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewGitHubProvider(cfg GitHubConfig) (*GitHubProvider, error) {
	if err := validateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GitHubDefaultScopes()
	}

	return &GitHubProvider{
		creds: Credentials{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
		},
		scopes: scopes,
	}, nil
}

// Name returns the provider identifier.
func (p *GitHubProvider) Name() string {
	return GitHubProviderName
}

// Credentials returns the configured client credentials.
func (p *GitHubProvider) Credentials() Credentials {
	return p.creds
}

// AuthorizationEndpoint returns the GitHub authorization URL.
func (p *GitHubProvider) AuthorizationEndpoint() string {
	return githubOAuth.Endpoint.AuthURL
}

// TokenEndpoint returns the GitHub token URL.
func (p *GitHubProvider) TokenEndpoint(map[string]string) string {
	return githubOAuth.Endpoint.TokenURL
}

// ResourceOwnerEndpoint returns the authenticated user URL.
func (p *GitHubProvider) ResourceOwnerEndpoint(AccessToken) string {
	return githubUserURL
}

// AuthorizationHeaders returns a Bearer header plus the GitHub media type.
func (p *GitHubProvider) AuthorizationHeaders(token *AccessToken) map[string]string {
	h := bearerHeaders(token)
	h["Accept"] = "application/vnd.github+json"
	return h
}

// ValidateResponse returns a *ProviderError for statuses >= 400.
// GitHub reports API failures in "message" and token failures in "error".
func (p *GitHubProvider) ValidateResponse(resp *http.Response, data map[string]any) error {
	if resp == nil {
		return ErrNilResponse
	}
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	msg := stringField(data, "message")
	if msg == "" {
		msg = stringField(data, "error_description")
	}
	if msg == "" {
		msg = stringField(data, "error")
	}
	return newProviderError(GitHubProviderName, resp, msg, nil)
}

// BuildResourceOwner wraps a GitHub user payload.
func (p *GitHubProvider) BuildResourceOwner(data map[string]any, _ AccessToken) ResourceOwner {
	return &GitHubUser{data: maps.Clone(data)}
}

// DefaultScopes returns the configured scopes, GitHubDefaultScopes when none were set.
func (p *GitHubProvider) DefaultScopes() []string {
	return append([]string(nil), p.scopes...)
}

// GitHubUser is the resource owner returned by the /user endpoint.
type GitHubUser struct {
	data map[string]any
}

// ID returns the numeric GitHub user id rendered as a string.
func (u *GitHubUser) ID() string {
	return idField(u.data, "id")
}

// Name returns the profile name, falling back to the login.
func (u *GitHubUser) Name() string {
	if name := stringField(u.data, "name"); name != "" {
		return name
	}
	return u.Login()
}

// Login returns the GitHub username.
func (u *GitHubUser) Login() string {
	return stringField(u.data, "login")
}

// Email returns the public email, which may be empty.
func (u *GitHubUser) Email() string {
	return stringField(u.data, "email")
}

// AvatarURL returns the avatar image URL.
func (u *GitHubUser) AvatarURL() string {
	return stringField(u.data, "avatar_url")
}

// ToMap returns a copy of the raw profile payload.
func (u *GitHubUser) ToMap() map[string]any {
	return maps.Clone(u.data)
}
