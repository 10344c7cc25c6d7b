package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/zdx/internal/shared"
)

func testConfig(tokenURL string) *shared.Config {
	config := shared.DefaultConfig()
	config.Zoom.AccountID = "acct_123"
	config.Zoom.ClientID = "client_123"
	config.Zoom.ClientSecret = "secret_123"
	config.Zoom.TokenURL = tokenURL
	return config
}

func newTokenServer(t *testing.T, exchanges *int, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*exchanges++

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client_123" || pass != "secret_123" {
			t.Errorf("expected basic auth with client credentials, got %s:%s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("account_id"); got != "acct_123" {
			t.Errorf("expected account_id acct_123, got %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok_abc","token_type":"bearer","expires_in":%d}`, expiresIn)
	}))
}

func TestTokenReuse(t *testing.T) {
	exchanges := 0
	server := newTokenServer(t, &exchanges, 3600)
	defer server.Close()

	manager := NewTokenManager(TokenManagerOpts{
		Config:     testConfig(server.URL),
		HTTPClient: server.Client(),
	})

	ctx := context.Background()
	first, err := manager.Token(ctx)
	if err != nil {
		t.Fatalf("first Token() failed: %v", err)
	}
	second, err := manager.Token(ctx)
	if err != nil {
		t.Fatalf("second Token() failed: %v", err)
	}

	if exchanges != 1 {
		t.Errorf("expected exactly 1 token exchange, got %d", exchanges)
	}
	if first.AccessToken != "tok_abc" || second.AccessToken != "tok_abc" {
		t.Errorf("expected cached token tok_abc, got %q and %q", first.AccessToken, second.AccessToken)
	}
}

func TestTokenSafetyMargin(t *testing.T) {
	exchanges := 0
	server := newTokenServer(t, &exchanges, 3600)
	defer server.Close()

	manager := NewTokenManager(TokenManagerOpts{
		Config:     testConfig(server.URL),
		HTTPClient: server.Client(),
	})

	cred, err := manager.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}

	// Advertised expiry is 3600s; the stored deadline must be ~300s
	// earlier.
	want := time.Now().Add(3600*time.Second - tokenSafetyMargin)
	if diff := cred.ExpiresAt.Sub(want); diff < -30*time.Second || diff > 30*time.Second {
		t.Errorf("expected expiry near %v, got %v", want, cred.ExpiresAt)
	}
}

func TestTokenRefreshAfterExpiry(t *testing.T) {
	exchanges := 0
	// expires_in below the safety margin means the credential is stored
	// already expired, so each call exchanges again.
	server := newTokenServer(t, &exchanges, 60)
	defer server.Close()

	manager := NewTokenManager(TokenManagerOpts{
		Config:     testConfig(server.URL),
		HTTPClient: server.Client(),
	})

	ctx := context.Background()
	if _, err := manager.Token(ctx); err != nil {
		t.Fatalf("first Token() failed: %v", err)
	}
	if _, err := manager.Token(ctx); err != nil {
		t.Fatalf("second Token() failed: %v", err)
	}

	if exchanges != 2 {
		t.Errorf("expected 2 exchanges for an expired credential, got %d", exchanges)
	}
}

func TestTokenExchangeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"Invalid client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	manager := NewTokenManager(TokenManagerOpts{
		Config:     testConfig(server.URL),
		HTTPClient: server.Client(),
	})

	_, err := manager.Token(context.Background())
	if !errors.Is(err, shared.ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}
