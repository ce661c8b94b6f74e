package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/mkaminski/coinfolio/internal/auth/pkce"
	"github.com/mkaminski/coinfolio/internal/auth/session"
	"github.com/mkaminski/coinfolio/internal/platform/id"
	"github.com/mkaminski/coinfolio/internal/storage"
)

// Attempt is the transient anti-forgery material for one login round-trip.
//
// The caller's transport layer holds it (short-lived cookies) and surrenders
// it at the callback; it is single-use either way.
type Attempt struct {
	State        string
	CodeVerifier string
}

// CompleteInput carries the callback query parameters alongside the stored
// attempt material.
type CompleteInput struct {
	Code               string
	State              string
	StoredState        string
	StoredCodeVerifier string
}

// Service orchestrates the two-phase CoinPost login dance.
type Service struct {
	provider Provider
	users    storage.UserStore
	sessions *session.Manager

	newID       func() (string, error)
	newState    func() (string, error)
	newVerifier func() (string, error)
	clock       func() time.Time
}

// NewService builds a login orchestrator over the provider and stores.
func NewService(provider Provider, users storage.UserStore, sessions *session.Manager) *Service {
	return &Service{
		provider:    provider,
		users:       users,
		sessions:    sessions,
		newID:       id.NewID,
		newState:    pkce.NewState,
		newVerifier: pkce.NewCodeVerifier,
		clock:       time.Now,
	}
}

// Initiate starts a login attempt: fresh state and verifier, plus the
// authorization URL to redirect the user-agent to.
func (s *Service) Initiate() (Attempt, *url.URL, error) {
	state, err := s.newState()
	if err != nil {
		return Attempt{}, nil, err
	}
	verifier, err := s.newVerifier()
	if err != nil {
		return Attempt{}, nil, err
	}
	attempt := Attempt{State: state, CodeVerifier: verifier}
	return attempt, s.provider.AuthorizationURL(state, verifier), nil
}

// Complete finishes a login attempt from the provider callback.
//
// It verifies the anti-forgery material, exchanges the code, resolves the
// CoinPost identity to a local user (creating one on first login), and issues
// a session. No user or session is written when any provider step fails.
func (s *Service) Complete(ctx context.Context, in CompleteInput) (storage.Session, error) {
	if in.Code == "" || in.State == "" || in.StoredState == "" || in.State != in.StoredState {
		return storage.Session{}, ErrStateMismatch
	}
	if in.StoredCodeVerifier == "" {
		return storage.Session{}, ErrStateMismatch
	}

	tokens, err := s.provider.ExchangeCode(ctx, in.Code, in.StoredCodeVerifier)
	if err != nil {
		return storage.Session{}, err
	}
	identity, err := s.provider.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		return storage.Session{}, err
	}

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return storage.Session{}, err
	}

	created, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return storage.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// resolveUser links the CoinPost identity to a local user, creating one on
// first login. A uniqueness conflict means a concurrent first login won the
// insert; recovery is a single re-lookup.
func (s *Service) resolveUser(ctx context.Context, identity Identity) (storage.User, error) {
	existing, err := s.users.GetUserByCoinpostID(ctx, identity.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, fmt.Errorf("lookup user: %w", err)
	}

	userID, err := s.newID()
	if err != nil {
		return storage.User{}, fmt.Errorf("generate user id: %w", err)
	}
	created := storage.User{
		ID:         userID,
		CoinpostID: identity.ID,
		Username:   identity.Name,
		CreatedAt:  s.clock().UTC(),
	}
	err = s.users.CreateUser(ctx, created)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, storage.ErrConflict) {
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}

	winner, err := s.users.GetUserByCoinpostID(ctx, identity.ID)
	if err != nil {
		return storage.User{}, fmt.Errorf("resolve user after conflict: %w", err)
	}
	return winner, nil
}
