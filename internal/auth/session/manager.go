// Package session manages the durable session lifecycle: creation, sliding
// validation, and invalidation.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkaminski/coinfolio/internal/platform/id"
	"github.com/mkaminski/coinfolio/internal/storage"
)

// DefaultLifetime is the session lifetime applied when none is configured.
const DefaultLifetime = 30 * 24 * time.Hour

// Validation is the result of resolving a session identifier.
//
// Fresh is true only on the call that extended the session's expiry; callers
// use it as the signal to reissue the transport credential.
type Validation struct {
	User    storage.User
	Session storage.Session
	Fresh   bool
}

// Manager owns session lifetime policy over the backing stores.
type Manager struct {
	users    storage.UserStore
	sessions storage.SessionStore
	lifetime time.Duration
	clock    func() time.Time
	newID    func() (string, error)
}

// NewManager builds a session manager with the given lifetime.
func NewManager(users storage.UserStore, sessions storage.SessionStore, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Manager{
		users:    users,
		sessions: sessions,
		lifetime: lifetime,
		clock:    time.Now,
		newID:    id.NewID,
	}
}

// Create persists a new session for the user with a full lifetime.
func (m *Manager) Create(ctx context.Context, userID string) (storage.Session, error) {
	sessionID, err := m.newID()
	if err != nil {
		return storage.Session{}, fmt.Errorf("generate session id: %w", err)
	}
	session := storage.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: m.clock().UTC().Add(m.lifetime),
	}
	if err := m.sessions.PutSession(ctx, session); err != nil {
		return storage.Session{}, fmt.Errorf("put session: %w", err)
	}
	return session, nil
}

// Validate resolves a session identifier.
//
// An unknown or expired session reports found=false; expired rows are deleted
// on detection so an expired identifier is never returned as valid. When less
// than half the lifetime remains, the expiry is extended from now and Fresh is
// set, which keeps active users signed in without a write on every request.
func (m *Manager) Validate(ctx context.Context, sessionID string) (Validation, bool, error) {
	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Validation{}, false, nil
		}
		return Validation{}, false, fmt.Errorf("get session: %w", err)
	}

	now := m.clock().UTC()
	if !session.ExpiresAt.After(now) {
		if err := m.sessions.DeleteSession(ctx, sessionID); err != nil {
			return Validation{}, false, fmt.Errorf("delete expired session: %w", err)
		}
		return Validation{}, false, nil
	}

	fresh := false
	if session.ExpiresAt.Sub(now) < m.lifetime/2 {
		session.ExpiresAt = now.Add(m.lifetime)
		err := m.sessions.ExtendSession(ctx, sessionID, session.ExpiresAt)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return Validation{}, false, fmt.Errorf("extend session: %w", err)
		}
		// A concurrent extension losing this update only costs an extra
		// renewal, so ErrNotFound from a racing logout is treated as absent.
		if errors.Is(err, storage.ErrNotFound) {
			return Validation{}, false, nil
		}
		fresh = true
	}

	user, err := m.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = m.sessions.DeleteSession(ctx, sessionID)
			return Validation{}, false, nil
		}
		return Validation{}, false, fmt.Errorf("get session user: %w", err)
	}

	return Validation{User: user, Session: session, Fresh: fresh}, true, nil
}

// Invalidate deletes a session. Invalidating an absent session is a no-op.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) error {
	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session row.
func (m *Manager) PurgeExpired(ctx context.Context) error {
	return m.sessions.DeleteExpiredSessions(ctx, m.clock().UTC())
}

// StartCleanup starts periodic expiry cleanup for session rows.
//
// Expired sessions are also deleted lazily on validation; the ticker keeps
// rows for abandoned sessions from accumulating.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if m == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = m.PurgeExpired(ctx)
			}
		}
	}()
}
