package web

import (
	"errors"
	"net/http"

	"github.com/mkaminski/coinfolio/internal/auth"
	"github.com/mkaminski/coinfolio/internal/auth/session"
	"github.com/mkaminski/coinfolio/internal/web/platform/logincookie"
	"github.com/mkaminski/coinfolio/internal/web/platform/requestmeta"
	"github.com/mkaminski/coinfolio/internal/web/platform/sessioncookie"
	"github.com/mkaminski/coinfolio/internal/web/platform/webctx"
	"github.com/rs/zerolog/log"
)

// withSession resolves the session cookie exactly once per request and stores
// the result in the request context for handlers to read.
//
// A fresh validation reissues the cookie with the extended expiry; an absent
// or expired session issues a blank cookie so the client stops presenting it.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessioncookie.Read(r)
		if !ok {
			next(w, r.WithContext(webctx.WithSession(r.Context(), session.Validation{}, false)))
			return
		}

		validation, found, err := s.sessions.Validate(r.Context(), sessionID)
		if err != nil {
			log.Error().Err(err).Msg("session validation failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !found {
			sessioncookie.Clear(w, r, s.policy)
		} else if validation.Fresh {
			sessioncookie.Write(w, r, validation.Session.ID, validation.Session.ExpiresAt, s.policy)
		}
		next(w, r.WithContext(webctx.WithSession(r.Context(), validation, found)))
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	validation, ok := webctx.SessionFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	err := templates.ExecuteTemplate(w, "home.html", map[string]string{
		"Username": validation.User.Username,
		"UserID":   validation.User.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("render home page")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := webctx.SessionFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := templates.ExecuteTemplate(w, "login.html", nil); err != nil {
		log.Error().Err(err).Msg("render login page")
	}
}

func (s *Server) handleLoginStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	attempt, authorizeURL, err := s.auth.Initiate()
	if err != nil {
		log.Error().Err(err).Msg("initiate login")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	logincookie.Write(w, r, attempt.State, attempt.CodeVerifier, s.attemptTTL, s.policy)
	http.Redirect(w, r, authorizeURL.String(), http.StatusFound)
}

func (s *Server) handleLoginCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	storedState, storedVerifier := logincookie.Read(r)
	// Attempt material is single-use: cleared on every outcome so a replayed
	// callback fails the state check.
	logincookie.Clear(w, r, s.policy)

	created, err := s.auth.Complete(r.Context(), auth.CompleteInput{
		Code:               r.URL.Query().Get("code"),
		State:              r.URL.Query().Get("state"),
		StoredState:        storedState,
		StoredCodeVerifier: storedVerifier,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrStateMismatch), errors.Is(err, auth.ErrInvalidGrant):
			log.Warn().Err(err).Msg("login callback rejected")
			http.Error(w, "login request rejected", http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("login callback failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	sessioncookie.Write(w, r, created.ID, created.ExpiresAt, s.policy)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requestmeta.HasSameOriginProof(r, s.policy) {
		http.Error(w, "cross-origin request rejected", http.StatusForbidden)
		return
	}
	validation, ok := webctx.SessionFrom(r.Context())
	if !ok {
		sessioncookie.Clear(w, r, s.policy)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := s.sessions.Invalidate(r.Context(), validation.Session.ID); err != nil {
		log.Error().Err(err).Msg("invalidate session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sessioncookie.Clear(w, r, s.policy)
	http.Redirect(w, r, "/login", http.StatusFound)
}
