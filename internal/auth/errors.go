package auth

import "errors"

// ErrStateMismatch indicates callback input failed the anti-forgery checks:
// missing code, missing or mismatched state, or a missing code verifier.
var ErrStateMismatch = errors.New("login state mismatch")

// ErrInvalidGrant indicates the provider rejected the authorization code.
var ErrInvalidGrant = errors.New("authorization code rejected")

// ErrProviderUnavailable indicates a transport or decode failure talking to
// the identity provider.
var ErrProviderUnavailable = errors.New("identity provider unavailable")
