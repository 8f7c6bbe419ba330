// Package oauth provides OAuth2 authorization code flow support for identity providers.
//
// The package separates two concerns. A Provider is a thin, immutable binding to one
// platform: its endpoint URLs, how requests are authenticated, how error responses map
// to a *ProviderError, and how a profile payload becomes a ResourceOwner. A Client is the
// engine that drives the flow for any Provider on top of golang.org/x/oauth2.
//
// # Providers
//
//   - Buffer (https://bufferapp.com), the token is sent both as a Bearer header and as
//     the access_token query parameter of /1/user.json
//   - GitHub
//   - Google
//
// # Usage
//
//	provider, err := oauth.NewBufferProvider(oauth.BufferConfig{
//		ClientID:     os.Getenv("BUFFER_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("BUFFER_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/buffer/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := oauth.NewClient(provider, oauth.WithLogger(log))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, _ := oauth.GenerateState()
//	http.Redirect(w, r, client.AuthCodeURL(state), http.StatusFound)
//
//	// In the callback handler, after checking state:
//	token, err := client.Exchange(ctx, r.URL.Query().Get("code"))
//	if err != nil {
//		// handle error
//	}
//
//	owner, err := client.FetchResourceOwner(ctx, token)
//	if err != nil {
//		// handle error
//	}
//
// # Custom Providers
//
// Implement the Provider interface to add another platform. The Client never depends
// on a concrete provider type.
//
// # Testing
//
// Use WithHTTPClient to inject a transport that routes provider hosts to a local handler:
//
//	client, err := oauth.NewClient(provider, oauth.WithHTTPClient(&http.Client{Transport: rt}))
//
// # Error Handling
//
// A response with status >= 400 becomes a *ProviderError carrying the provider's message,
// a numeric code (the body's code when it is a valid integer, the HTTP status otherwise)
// and the originating response. It matches ErrProviderResponse:
//
//	var perr *oauth.ProviderError
//	if errors.As(err, &perr) {
//		log.Printf("rejected: %s (%d)", perr.Message, perr.Code)
//	}
//
// Other failures are reported through sentinel errors: ErrMissingClientID,
// ErrMissingClientSecret, ErrMissingCode, ErrExchangeFailed, ErrFetchFailed,
// ErrNilResponse, ErrDecodeFailed.
//
// Nothing here retries, stores tokens or refreshes them. Those decisions belong to the caller.
package oauth
