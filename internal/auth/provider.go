package auth

import (
	"context"
	"net/url"
	"time"
)

// Tokens holds the provider credentials returned by a code exchange.
type Tokens struct {
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
}

// Identity is the profile a provider reports for the authenticated account.
//
// It is read-only and fetched fresh on every login; only ID and Name feed the
// local user record.
type Identity struct {
	ID             string
	Name           string
	Bio            string
	Tagline        string
	AvatarImageURL string
	Email          string
	Lang           string
}

// Provider is the capability contract an identity provider integration must
// satisfy. The orchestrator depends only on this interface, so adding a
// provider never touches the login flow.
type Provider interface {
	// AuthorizationURL deterministically builds the provider's authorization
	// endpoint URL for one attempt. No network call.
	AuthorizationURL(state, codeVerifier string) *url.URL

	// ExchangeCode trades an authorization code for tokens. A provider-
	// rejected code fails with ErrInvalidGrant; any transport or decode
	// failure fails with ErrProviderUnavailable.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (Tokens, error)

	// FetchProfile returns the identity behind an access token. Any failure
	// is ErrProviderUnavailable.
	FetchProfile(ctx context.Context, accessToken string) (Identity, error)
}
