// Package storage defines persistence contracts for coinfolio identity data.
//
// These interfaces exist so the login flow and session lifecycle can depend on
// stable domain semantics without coupling to SQLite schema details.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates an insert violated a uniqueness constraint.
var ErrConflict = errors.New("record already exists")

// User is a local account linked one-to-one with a CoinPost account.
//
// Users are created exactly once, on the first successful login for a given
// CoinPost id, and keep the username observed at that moment.
type User struct {
	ID         string
	CoinpostID string
	Username   string
	CreatedAt  time.Time
}

// Session is a durable authenticated session owned by a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// UserStore persists local user records.
type UserStore interface {
	// CreateUser inserts a new user. It returns ErrConflict when another
	// user already claims the same CoinPost id.
	CreateUser(ctx context.Context, u User) error
	// GetUser returns a user by local id, or ErrNotFound.
	GetUser(ctx context.Context, userID string) (User, error)
	// GetUserByCoinpostID returns the user linked to a CoinPost account,
	// or ErrNotFound.
	GetUserByCoinpostID(ctx context.Context, coinpostID string) (User, error)
}

// SessionStore persists session records.
type SessionStore interface {
	// PutSession inserts a new session row.
	PutSession(ctx context.Context, s Session) error
	// GetSession returns a session by id, or ErrNotFound. Expiry is not
	// interpreted here; the session manager owns lifetime policy.
	GetSession(ctx context.Context, sessionID string) (Session, error)
	// ExtendSession moves a session's expiry as a single-row update.
	// A missing row returns ErrNotFound.
	ExtendSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	// DeleteSession removes a session. Deleting an absent session is not
	// an error.
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteExpiredSessions removes every session whose expiry is at or
	// before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}
