// Package cookie manages short-lived HTTP cookies for browser redirect flows.
//
// Signed cookies (HMAC-SHA256, bound to the cookie name) keep values readable but
// tamper-evident, which suits an OAuth state value. Encrypted cookies (AES-GCM) hide
// the value from the client, which suits a PKCE code verifier.
//
//	m, err := cookie.New(os.Getenv("COOKIE_SECRET"), cookie.WithMaxAge(10*time.Minute))
//	if err != nil {
//		return err
//	}
//
//	m.SetSigned(w, "oauth_state_buffer", state)
//	got, err := m.GetSigned(r, "oauth_state_buffer")
//
// Cookies default to Secure, HttpOnly and SameSite=Lax.
package cookie
