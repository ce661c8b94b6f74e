package webctx

import (
	"context"
	"testing"

	"github.com/mkaminski/coinfolio/internal/auth/session"
	"github.com/mkaminski/coinfolio/internal/storage"
)

func TestSessionFromEmptyContext(t *testing.T) {
	t.Parallel()

	if _, ok := SessionFrom(context.Background()); ok {
		t.Fatal("expected no session on empty context")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	validation := session.Validation{
		User:    storage.User{ID: "user-1", Username: "alice"},
		Session: storage.Session{ID: "sess-1", UserID: "user-1"},
		Fresh:   true,
	}
	ctx := WithSession(context.Background(), validation, true)

	got, ok := SessionFrom(ctx)
	if !ok {
		t.Fatal("expected session to be present")
	}
	if got.User.ID != "user-1" || got.Session.ID != "sess-1" || !got.Fresh {
		t.Fatalf("validation = %+v", got)
	}
}

func TestSessionAnonymousResult(t *testing.T) {
	t.Parallel()

	// An anonymous request still memoizes the "no session" outcome.
	ctx := WithSession(context.Background(), session.Validation{}, false)
	if _, ok := SessionFrom(ctx); ok {
		t.Fatal("expected anonymous result")
	}
}
