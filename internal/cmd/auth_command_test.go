package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

func TestAuthLoginStoresToken(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "-o", "json", "auth", "login", "--token", "secret_flag_token", "--database", "db-login")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if len(env.gotTokens) != 1 || env.gotTokens[0] != "secret_flag_token" {
		t.Fatalf("expected token verified once, got %v", env.gotTokens)
	}

	tok, err := env.store.GetToken(defaultProfile)
	if err != nil {
		t.Fatalf("token not stored: %v", err)
	}
	if tok.APIToken != "secret_flag_token" || tok.DatabaseID != "db-login" || tok.CreatedAt.IsZero() {
		t.Fatalf("unexpected stored token: %+v", tok)
	}
	if env.store.defaultAccount != defaultProfile {
		t.Fatalf("default account = %q", env.store.defaultAccount)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v (%q)", err, out)
	}
	if result["status"] != "authenticated" || result["bot"] != "Docs Bot" {
		t.Fatalf("unexpected output: %v", result)
	}
}

func TestAuthLoginPromptsOnStdin(t *testing.T) {
	env := newCLIEnv(t)
	env.stdin = "secret_piped\n"

	out, _, err := env.run(t, "-o", "text", "auth", "login")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok, _ := env.store.GetToken(defaultProfile); tok.APIToken != "secret_piped" {
		t.Fatalf("expected piped token stored, got %q", tok.APIToken)
	}
	if !strings.Contains(out, "Authenticated successfully!") || !strings.Contains(out, "Integration: Docs Bot") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAuthLoginRejectedToken(t *testing.T) {
	env := newCLIEnv(t)
	env.env["NOTION_API_TOKEN"] = "secret_bad"
	env.client.MeFunc = func() (json.RawMessage, error) {
		return nil, api.AuthenticationError{Message: "invalid API token"}
	}

	_, _, err := env.run(t, "auth", "login")
	var authErr api.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if _, err := env.store.GetToken(defaultProfile); !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("rejected token must not be stored, got %v", err)
	}
}

func TestAuthLoginStoresTokenWhenVerifyIsUnavailable(t *testing.T) {
	env := newCLIEnv(t)
	env.env["NOTION_API_TOKEN"] = "secret_env"
	env.client.MeFunc = func() (json.RawMessage, error) {
		return nil, api.ServerError{Status: 503, Message: "service unavailable"}
	}

	_, stderr, err := env.run(t, "-o", "text", "auth", "login")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(stderr, "could not verify token") {
		t.Fatalf("expected warning, got %q", stderr)
	}
	if tok, _ := env.store.GetToken(defaultProfile); tok.APIToken != "secret_env" {
		t.Fatal("token should be stored despite verification failure")
	}
}

func TestAuthStatus(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "-o", "json", "auth", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var status map[string]interface{}
	if err := json.Unmarshal([]byte(out), &status); err != nil || status["authenticated"] != false || len(status) != 1 {
		t.Fatalf("unexpected unauthenticated output: %q", out)
	}

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_ = env.store.SetToken(defaultProfile, secrets.Token{APIToken: "secret_abcdefghijkl", DatabaseID: "db1", CreatedAt: created})

	out, _, err = env.run(t, "-o", "json", "auth", "status", "--verify")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v (%q)", err, out)
	}
	want := map[string]interface{}{
		"authenticated":    true,
		"profile":          defaultProfile,
		"token_preview":    "secr...ijkl",
		"database":         "db1",
		"authenticated_at": "2024-05-01T12:00:00Z",
		"verified":         true,
		"bot":              "Docs Bot",
	}
	for k, v := range want {
		if result[k] != v {
			t.Errorf("%s = %v, want %v", k, result[k], v)
		}
	}
}

func TestAuthLogout(t *testing.T) {
	env := newCLIEnv(t)
	_ = env.store.SetToken(defaultProfile, secrets.Token{APIToken: "secret_abc"})

	out, _, err := env.run(t, "-o", "text", "auth", "logout")
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !strings.Contains(out, "Logged out") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := env.store.GetToken(defaultProfile); !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("expected token removed, got %v", err)
	}

	if _, _, err := env.run(t, "auth", "logout"); err != nil {
		t.Fatalf("second logout should succeed, got %v", err)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token, want string
	}{
		{"", ""},
		{"short", "****"},
		{"secret_abcdef", "secr...cdef"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
