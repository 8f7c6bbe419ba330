package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrNilProvider is returned when a Client is created without a provider.
	ErrNilProvider = errors.New("oauth: nil provider")

	// ErrMissingCode is returned when Exchange is called with an empty authorization code.
	ErrMissingCode = errors.New("oauth: missing authorization code")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrExchangeFailed is returned when the authorization code exchange fails.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrProviderResponse is matched by every *ProviderError.
	ErrProviderResponse = errors.New("oauth: provider rejected request")

	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("oauth: provider not found")

	// ErrDuplicateProvider is returned when a provider name is registered twice.
	ErrDuplicateProvider = errors.New("oauth: provider already registered")

	// ErrStateGeneration is returned when a random state value cannot be produced.
	ErrStateGeneration = errors.New("oauth: failed to generate state")
)

// ProviderError describes a request the provider rejected with a 4xx or 5xx status.
type ProviderError struct {
	// Response is the originating HTTP response. Its body has already been consumed.
	Response *http.Response
	Provider string
	Message  string
	Code     int
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("oauth: %s error %d: %s", e.Provider, e.Code, e.Message)
}

// Unwrap allows errors.Is(err, ErrProviderResponse).
func (e *ProviderError) Unwrap() error {
	return ErrProviderResponse
}

// StatusCode returns the HTTP status of the originating response, or 0 if unknown.
func (e *ProviderError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// newProviderError builds a ProviderError, falling back to the status text
// when the body carries no message and to the status when it carries no usable code.
func newProviderError(provider string, resp *http.Response, message string, code any) *ProviderError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if message == "" {
		message = "unknown error"
	}

	c, ok := intCode(code)
	if !ok {
		c = resp.StatusCode
	}

	return &ProviderError{
		Provider: provider,
		Message:  message,
		Code:     c,
		Response: resp,
	}
}

// intCode accepts integral JSON numbers and numeric strings within the int32 range.
func intCode(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return int64Code(int64(n))
	case int64:
		return int64Code(n)
	case float64:
		return floatCode(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64Code(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatCode(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return int64Code(i)
	default:
		return 0, false
	}
}

func int64Code(i int64) (int, bool) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int(i), true
}

// floatCode accepts whole values within the int32 range. NaN fails the Trunc comparison.
func floatCode(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// stringField returns data[key] when it is a string.
func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// idField renders an identifier that may arrive as a string or a JSON number.
func idField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
