package oauth

// BufferConfig holds Buffer OAuth configuration.
type BufferConfig struct {
	ClientID     string `env:"BUFFER_OAUTH_CLIENT_ID,required"`
	ClientSecret string `env:"BUFFER_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string `env:"BUFFER_OAUTH_REDIRECT_URL" envDefault:""`
}

// GoogleConfig holds Google OAuth configuration.
// The provider is optional: leave ClientID empty to disable it.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}

// GitHubConfig holds GitHub OAuth configuration.
// The provider is optional: leave ClientID empty to disable it.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"GITHUB_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:","`
}

func validateCredentials(clientID, clientSecret string) error {
	if clientID == "" {
		return ErrMissingClientID
	}
	if clientSecret == "" {
		return ErrMissingClientSecret
	}
	return nil
}
