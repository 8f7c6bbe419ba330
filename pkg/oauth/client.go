package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 1 << 20

// Client runs the authorization code flow for a single Provider.
// It is safe for concurrent use.
type Client struct {
	provider   Provider
	httpClient *http.Client
	logger     *slog.Logger
	scopes     []string
}

// NewClient creates a flow client for the given provider.
func NewClient(p Provider, opts ...Option) (*Client, error) {
	if p == nil {
		return nil, ErrNilProvider
	}

	o := options{
		httpClient: http.DefaultClient,
		logger:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.DefaultClient
	}

	scopes := o.scopes
	if len(scopes) == 0 {
		scopes = p.DefaultScopes()
	}

	return &Client{
		provider:   p,
		httpClient: o.httpClient,
		logger:     o.logger.With(slog.String("provider", p.Name())),
		scopes:     scopes,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.provider.Name()
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Scopes returns the scopes requested during authorization.
func (c *Client) Scopes() []string {
	return append([]string(nil), c.scopes...)
}

// AuthCodeURL generates the authorization URL the user is redirected to.
// Pass oauth2.S256ChallengeOption to enable PKCE.
func (c *Client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.config(nil).AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for an access token.
// Pass oauth2.VerifierOption when the authorization request used PKCE.
func (c *Client) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (AccessToken, error) {
	if code == "" {
		return AccessToken{}, ErrMissingCode
	}

	params := map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.config(params).Exchange(ctx, code, opts...)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			if vErr := c.provider.ValidateResponse(rErr.Response, retrieveErrorData(rErr)); vErr != nil {
				c.logger.WarnContext(ctx, "token exchange rejected", slog.Any("error", vErr))
				return AccessToken{}, errors.Join(ErrExchangeFailed, vErr)
			}
		}
		c.logger.WarnContext(ctx, "token exchange failed", slog.Any("error", err))
		return AccessToken{}, errors.Join(ErrExchangeFailed, err)
	}

	c.logger.DebugContext(ctx, "token exchanged", slog.Bool("has_refresh_token", tok.RefreshToken != ""))
	return NewAccessToken(tok), nil
}

// FetchResourceOwner retrieves the profile of the user the token belongs to.
func (c *Client) FetchResourceOwner(ctx context.Context, token AccessToken) (ResourceOwner, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.provider.ResourceOwnerEndpoint(token), nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build request: %w", err))
	}
	for k, v := range c.provider.AuthorizationHeaders(&token) {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch resource owner: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from resource owner endpoint"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read resource owner: %w", err))
	}

	data, decodeErr := decodeObject(body)

	if err := c.provider.ValidateResponse(resp, data); err != nil {
		c.logger.WarnContext(ctx, "resource owner request rejected", slog.Any("error", err))
		return nil, err
	}
	if decodeErr != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode resource owner: %w", decodeErr))
	}

	owner := c.provider.BuildResourceOwner(data, token)
	c.logger.DebugContext(ctx, "resource owner fetched", slog.String("owner_id", owner.ID()))
	return owner, nil
}

// config assembles the golang.org/x/oauth2 configuration for one request.
// Providers may vary the token URL by grant parameters.
func (c *Client) config(params map[string]string) *oauth2.Config {
	creds := c.provider.Credentials()
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURL,
		Scopes:       c.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.provider.AuthorizationEndpoint(),
			TokenURL:  c.provider.TokenEndpoint(params),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// decodeObject parses a JSON object, keeping numbers as json.Number.
func decodeObject(body []byte) (map[string]any, error) {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// retrieveErrorData recovers the token endpoint error body, which may be JSON or form encoded.
func retrieveErrorData(rErr *oauth2.RetrieveError) map[string]any {
	data, err := decodeObject(rErr.Body)
	if err != nil {
		data = make(map[string]any)
		if values, qErr := url.ParseQuery(string(rErr.Body)); qErr == nil {
			for k := range values {
				data[k] = values.Get(k)
			}
		}
	}
	if _, ok := data["error"]; !ok && rErr.ErrorCode != "" {
		data["error"] = rErr.ErrorCode
	}
	return data
}
