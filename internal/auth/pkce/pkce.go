// Package pkce generates the random material for one login attempt.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrEntropySource indicates the system random source failed. There is no
// weaker fallback; login cannot proceed without it.
var ErrEntropySource = errors.New("entropy source unavailable")

// entropyBytes is the raw entropy per generated value. 32 bytes keeps both
// state and verifier unguessable well beyond a login attempt's lifetime.
const entropyBytes = 32

func randomToken() (string, error) {
	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropySource, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewState returns a fresh anti-CSRF state value for one authorization
// redirect.
func NewState() (string, error) {
	return randomToken()
}

// NewCodeVerifier returns a fresh PKCE code verifier.
//
// CoinPost only supports the "plain" challenge method, so this same value is
// sent as the code challenge. That is a provider constraint, not a local
// shortcut; do not assume S256-level protection.
func NewCodeVerifier() (string, error) {
	return randomToken()
}
