// Package logincookie manages the transient cookies that carry one login
// attempt's anti-forgery material between initiation and callback.
package logincookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/mkaminski/coinfolio/internal/web/platform/requestmeta"
)

// Cookie names match the CoinPost attempt material they carry.
const (
	StateName    = "coinpost_oauth_state"
	VerifierName = "coinpost_code_verifier"
)

// Write stores attempt material for at most ttl. Writing a new attempt
// overwrites the previous one; only one attempt is current per client.
func Write(w http.ResponseWriter, r *http.Request, state, codeVerifier string, ttl time.Duration, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	secure := requestmeta.IsHTTPS(r, policy)
	maxAge := int(ttl / time.Second)
	for name, value := range map[string]string{
		StateName:    state,
		VerifierName: codeVerifier,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Read returns the stored attempt material, trimmed, empty when absent.
func Read(r *http.Request) (state, codeVerifier string) {
	return cookieValue(r, StateName), cookieValue(r, VerifierName)
}

// Clear expires both attempt cookies. The callback always clears them so an
// attempt cannot be replayed.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	secure := requestmeta.IsHTTPS(r, policy)
	for _, name := range []string{StateName, VerifierName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
