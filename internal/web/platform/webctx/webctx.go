// Package webctx provides shared web request context helpers.
package webctx

import (
	"context"

	"github.com/mkaminski/coinfolio/internal/auth/session"
)

type sessionKey struct{}

type sessionEntry struct {
	validation session.Validation
	ok         bool
}

// WithSession stores the session validation result resolved for this request.
//
// The session middleware resolves the cookie exactly once per inbound request
// and handlers read the memoized result; the cache lives and dies with the
// request context.
func WithSession(ctx context.Context, validation session.Validation, ok bool) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionEntry{validation: validation, ok: ok})
}

// SessionFrom returns the request's resolved session, if any.
func SessionFrom(ctx context.Context) (session.Validation, bool) {
	entry, ok := ctx.Value(sessionKey{}).(sessionEntry)
	if !ok {
		return session.Validation{}, false
	}
	return entry.validation, entry.ok
}
