package coinpost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkaminski/coinfolio/internal/auth"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/login/coinpost/callback",
		BaseURL:      baseURL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{ClientID: "only-id"}); err == nil {
		t.Fatal("expected error for missing client secret")
	}
	if _, err := New(Config{ClientSecret: "only-secret"}); err == nil {
		t.Fatal("expected error for missing client id")
	}
}

func TestAuthorizationURL(t *testing.T) {
	client := testClient(t, "https://id.coinpost.dev")

	u := client.AuthorizationURL("state-1", "verifier-1")
	if u.Host != "id.coinpost.dev" {
		t.Errorf("host = %q", u.Host)
	}
	if u.Path != "/web/oauth/authorize" {
		t.Errorf("path = %q", u.Path)
	}

	query := u.Query()
	for key, want := range map[string]string{
		"response_type":         "code",
		"client_id":             "client-id",
		"redirect_uri":          "http://localhost:8080/login/coinpost/callback",
		"scope":                 "user.public",
		"state":                 "state-1",
		"code_challenge":        "verifier-1",
		"code_challenge_method": "plain",
	} {
		if got := query.Get(key); got != want {
			t.Errorf("query[%s] = %q, want %q", key, got, want)
		}
	}
}

func TestExchangeCodeSuccess(t *testing.T) {
	var gotForm map[string]string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("path = %q, want /oauth/token", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"grant_type":    r.PostFormValue("grant_type"),
			"code":          r.PostFormValue("code"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"code_verifier": r.PostFormValue("code_verifier"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`))
	}))
	defer provider.Close()

	client := testClient(t, provider.URL)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	client.clock = func() time.Time { return now }

	tokens, err := client.ExchangeCode(context.Background(), "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("exchange code: %v", err)
	}
	if tokens.AccessToken != "at-1" || tokens.RefreshToken != "rt-1" {
		t.Errorf("tokens = %+v", tokens)
	}
	if want := now.Add(time.Hour); !tokens.AccessTokenExpiresAt.Equal(want) {
		t.Errorf("access token expiry = %v, want %v", tokens.AccessTokenExpiresAt, want)
	}
	for key, want := range map[string]string{
		"grant_type":    "authorization_code",
		"code":          "code-1",
		"client_id":     "client-id",
		"client_secret": "client-secret",
		"code_verifier": "verifier-1",
	} {
		if gotForm[key] != want {
			t.Errorf("form[%s] = %q, want %q", key, gotForm[key], want)
		}
	}
}

func TestExchangeCodeInvalidGrant(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer provider.Close()

	client := testClient(t, provider.URL)
	_, err := client.ExchangeCode(context.Background(), "stale-code", "verifier-1")
	if !errors.Is(err, auth.ErrInvalidGrant) {
		t.Fatalf("err = %v, want ErrInvalidGrant", err)
	}
}

func TestExchangeCodeProviderFailure(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer provider.Close()

		client := testClient(t, provider.URL)
		if _, err := client.ExchangeCode(context.Background(), "code", "verifier"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer provider.Close()

		client := testClient(t, provider.URL)
		if _, err := client.ExchangeCode(context.Background(), "code", "verifier"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("missing access token", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_in":3600}`))
		}))
		defer provider.Close()

		client := testClient(t, provider.URL)
		if _, err := client.ExchangeCode(context.Background(), "code", "verifier"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := testClient(t, "http://127.0.0.1:1")
		if _, err := client.ExchangeCode(context.Background(), "code", "verifier"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})
}

func TestFetchProfile(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("path = %q, want /users/me", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"p1","name":"alice","bio":"hodler","tagline":"gm","avatar_image_url":"https://img.example/a.png","email":"alice@example.com","lang":"en"}}`))
	}))
	defer provider.Close()

	client := testClient(t, provider.URL)
	identity, err := client.FetchProfile(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if identity.ID != "p1" || identity.Name != "alice" {
		t.Errorf("identity = %+v", identity)
	}
	if identity.Email != "alice@example.com" || identity.Lang != "en" {
		t.Errorf("identity attributes = %+v", identity)
	}
}

func TestFetchProfileFailures(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer provider.Close()

		client := testClient(t, provider.URL)
		if _, err := client.FetchProfile(context.Background(), "at"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("missing account id", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{}}`))
		}))
		defer provider.Close()

		client := testClient(t, provider.URL)
		if _, err := client.FetchProfile(context.Background(), "at"); !errors.Is(err, auth.ErrProviderUnavailable) {
			t.Fatalf("err = %v, want ErrProviderUnavailable", err)
		}
	})
}
