package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthURL(t *testing.T) {
	g := NewGoogle("client-id", "client-secret", "http://localhost:3000/auth/google/callback")

	u := g.AuthURL("state-123")

	for _, want := range []string{
		"state=state-123",
		"access_type=offline",
		"prompt=consent",
		"client_id=client-id",
		"gmail.send",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("AuthURL() missing %q: %s", want, u)
		}
	}
}

func TestRefresh(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse token request: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		if got := r.FormValue("refresh_token"); got != "refresh-1" {
			t.Errorf("refresh_token = %q, want refresh-1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	g := NewGoogle("client-id", "client-secret", "http://localhost/cb")
	g.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	token, err := g.Refresh(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if token.AccessToken != "fresh-access" {
		t.Errorf("AccessToken = %q, want fresh-access", token.AccessToken)
	}
	if calls != 1 {
		t.Errorf("token endpoint called %d times, want exactly 1", calls)
	}
}

func TestRefresh_FailureIsSingleShot(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer srv.Close()

	g := NewGoogle("client-id", "client-secret", "http://localhost/cb")
	g.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	if _, err := g.Refresh(context.Background(), "revoked"); err == nil {
		t.Fatal("Refresh() should fail for a revoked token")
	}
	if calls != 1 {
		t.Errorf("token endpoint called %d times, want exactly 1 (no retries)", calls)
	}
}

func TestGenerateState(t *testing.T) {
	a, b := GenerateState(), GenerateState()
	if a == b {
		t.Error("GenerateState() returned identical values")
	}
	if len(a) < 32 {
		t.Errorf("state too short: %d chars", len(a))
	}
}
