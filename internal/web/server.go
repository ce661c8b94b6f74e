// Package web hosts coinfolio's HTTP surface: the pages, the CoinPost login
// flow, and session cookie handling.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mkaminski/coinfolio/internal/auth"
	"github.com/mkaminski/coinfolio/internal/auth/session"
	"github.com/mkaminski/coinfolio/internal/web/platform/requestmeta"
)

const defaultAttemptTTL = 10 * time.Minute

// Options tunes the web surface.
type Options struct {
	// AttemptTTL bounds how long login attempt cookies live.
	AttemptTTL time.Duration
	// TrustForwardedProto enables X-Forwarded-Proto when resolving the
	// request scheme behind a TLS-terminating proxy.
	TrustForwardedProto bool
}

// Server wires the login orchestrator and session manager to HTTP routes.
type Server struct {
	auth       *auth.Service
	sessions   *session.Manager
	attemptTTL time.Duration
	policy     requestmeta.SchemePolicy
}

// NewServer builds the web server over its collaborators.
func NewServer(authService *auth.Service, sessions *session.Manager, opts Options) *Server {
	if opts.AttemptTTL <= 0 {
		opts.AttemptTTL = defaultAttemptTTL
	}
	return &Server{
		auth:       authService,
		sessions:   sessions,
		attemptTTL: opts.AttemptTTL,
		policy:     requestmeta.SchemePolicy{TrustForwardedProto: opts.TrustForwardedProto},
	}
}

// Handler returns the route mux for the web surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.withSession(s.handleHome))
	mux.HandleFunc("/login", s.withSession(s.handleLogin))
	mux.HandleFunc("/login/coinpost", s.handleLoginStart)
	mux.HandleFunc("/login/coinpost/callback", s.handleLoginCallback)
	mux.HandleFunc("/logout", s.withSession(s.handleLogout))
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Run serves the web surface until the context ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
