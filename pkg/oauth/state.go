package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const stateSize = 32

// GenerateState returns a random, URL-safe value for the OAuth state parameter.
func GenerateState() (string, error) {
	b := make([]byte, stateSize)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrStateGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
