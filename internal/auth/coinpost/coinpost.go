// Package coinpost implements the CoinPost identity provider client.
package coinpost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkaminski/coinfolio/internal/auth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL = "https://id.coinpost.dev"
	defaultTimeout = 10 * time.Second

	authorizePath = "/web/oauth/authorize"
	tokenPath     = "/oauth/token"
	profilePath   = "/users/me"
)

// defaultScopes is the fixed scope set coinfolio requests.
var defaultScopes = []string{"user.public"}

// Config describes a CoinPost OAuth application.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// BaseURL overrides the production CoinPost endpoint, primarily for tests.
	BaseURL string
	Scopes  []string
	// Timeout bounds each outbound provider call. Provider calls are never
	// retried; a failure surfaces immediately and the user re-initiates login.
	Timeout time.Duration
}

// Client talks to CoinPost's authorization, token, and profile endpoints.
type Client struct {
	config     Config
	base       *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
	clock      func() time.Time
}

// New builds a CoinPost client from config, applying production defaults.
func New(config Config) (*Client, error) {
	if strings.TrimSpace(config.ClientID) == "" || strings.TrimSpace(config.ClientSecret) == "" {
		return nil, fmt.Errorf("coinpost client credentials are required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if len(config.Scopes) == 0 {
		config.Scopes = defaultScopes
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse coinpost base url: %w", err)
	}
	return &Client{
		config:     config,
		base:       base,
		httpClient: &http.Client{Timeout: config.Timeout},
		tracer:     otel.Tracer("coinfolio/coinpost"),
		clock:      time.Now,
	}, nil
}

// AuthorizationURL builds the authorization redirect target for one attempt.
//
// CoinPost only supports the "plain" PKCE challenge method, so the verifier is
// sent verbatim as the challenge.
func (c *Client) AuthorizationURL(state, codeVerifier string) *url.URL {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", c.config.ClientID)
	query.Set("redirect_uri", c.config.RedirectURI)
	query.Set("scope", strings.Join(c.config.Scopes, " "))
	query.Set("state", state)
	query.Set("code_challenge", codeVerifier)
	query.Set("code_challenge_method", "plain")

	authorize := *c.base
	authorize.Path = strings.TrimSuffix(authorize.Path, "/") + authorizePath
	authorize.RawQuery = query.Encode()
	return &authorize
}

// ExchangeCode trades an authorization code for CoinPost tokens.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (auth.Tokens, error) {
	ctx, span := c.tracer.Start(ctx, "coinpost.exchange_code")
	defer span.End()

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(tokenPath), strings.NewReader(form.Encode()))
	if err != nil {
		return auth.Tokens{}, fmt.Errorf("%w: build token request: %v", auth.ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "token exchange transport failure")
		return auth.Tokens{}, fmt.Errorf("%w: token exchange: %v", auth.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if failure.Error == "invalid_grant" || failure.Error == "bad_verification_code" {
			return auth.Tokens{}, fmt.Errorf("%w: %s", auth.ErrInvalidGrant, failure.Error)
		}
		span.SetStatus(codes.Error, "token exchange rejected")
		return auth.Tokens{}, fmt.Errorf("%w: token endpoint returned %d", auth.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, "token response decode failure")
		return auth.Tokens{}, fmt.Errorf("%w: decode token response: %v", auth.ErrProviderUnavailable, err)
	}
	if payload.AccessToken == "" {
		return auth.Tokens{}, fmt.Errorf("%w: missing access token", auth.ErrProviderUnavailable)
	}

	return auth.Tokens{
		AccessToken:          payload.AccessToken,
		RefreshToken:         payload.RefreshToken,
		AccessTokenExpiresAt: c.clock().UTC().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// FetchProfile returns the CoinPost account behind an access token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (auth.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "coinpost.fetch_profile")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(profilePath), nil)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: build profile request: %v", auth.ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "profile transport failure")
		return auth.Identity{}, fmt.Errorf("%w: fetch profile: %v", auth.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		span.SetStatus(codes.Error, "profile request rejected")
		return auth.Identity{}, fmt.Errorf("%w: profile endpoint returned %d", auth.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload struct {
		Data struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			Bio            string `json:"bio"`
			Tagline        string `json:"tagline"`
			AvatarImageURL string `json:"avatar_image_url"`
			Email          string `json:"email"`
			Lang           string `json:"lang"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, "profile decode failure")
		return auth.Identity{}, fmt.Errorf("%w: decode profile response: %v", auth.ErrProviderUnavailable, err)
	}
	if payload.Data.ID == "" {
		return auth.Identity{}, fmt.Errorf("%w: profile missing account id", auth.ErrProviderUnavailable)
	}

	return auth.Identity{
		ID:             payload.Data.ID,
		Name:           payload.Data.Name,
		Bio:            payload.Data.Bio,
		Tagline:        payload.Data.Tagline,
		AvatarImageURL: payload.Data.AvatarImageURL,
		Email:          payload.Data.Email,
		Lang:           payload.Data.Lang,
	}, nil
}

func (c *Client) endpoint(path string) string {
	target := *c.base
	target.Path = strings.TrimSuffix(target.Path, "/") + path
	return target.String()
}
