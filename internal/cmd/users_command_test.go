package cmd

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/salmonumbrella/notion-cli/internal/api"
)

const workspaceUsers = `[
  {"object":"user","id":"u1","type":"person","name":"Ada","person":{"email":"ada@example.com"}},
  {"object":"user","id":"u2","type":"bot","name":"Docs Bot","bot":{}}
]`

func TestUsersListTable(t *testing.T) {
	env := newCLIEnv(t)
	env.env["NOTION_API_TOKEN"] = "secret_env"
	env.client.ListUsersFunc = func() (json.RawMessage, error) {
		return json.RawMessage(workspaceUsers), nil
	}

	out, _, err := env.run(t, "-o", "text", "users", "list")
	if err != nil {
		t.Fatalf("users list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out)
	}
	if got := tableCells(lines[0]); strings.Join(got, "|") != "ID|NAME|TYPE|EMAIL" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if got := tableCells(lines[1]); strings.Join(got, "|") != "u1|Ada|person|ada@example.com" {
		t.Errorf("unexpected person row: %q", lines[1])
	}
	if got := tableCells(lines[2]); strings.Join(got, "|") != "u2|Docs Bot|bot" {
		t.Errorf("unexpected bot row: %q", lines[2])
	}
}

func TestUsersFind(t *testing.T) {
	env := newCLIEnv(t)
	env.env["NOTION_API_TOKEN"] = "secret_env"
	env.client.FindUserByEmailFunc = func(email string) (json.RawMessage, error) {
		if email != "ada@example.com" {
			return nil, api.NotFoundError{Message: "no user with email " + email}
		}
		return json.RawMessage(`{"object":"user","id":"u1","type":"person","name":"Ada","person":{"email":"ada@example.com"}}`), nil
	}

	out, _, err := env.run(t, "-o", "json", "--query", ".id", "users", "find", "ada@example.com")
	if err != nil {
		t.Fatalf("users find failed: %v", err)
	}
	if strings.TrimSpace(out) != `"u1"` {
		t.Fatalf("unexpected output: %q", out)
	}

	_, stderr, err := env.run(t, "-o", "json", "users", "find", "bob@example.com")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if !strings.Contains(stderr, `"type":"not_found"`) {
		t.Fatalf("expected not_found envelope, got %q", stderr)
	}
}

var columnGap = regexp.MustCompile(`\s{2,}`)

// tableCells splits a tabwriter row on its column padding. Trailing empty
// cells are dropped.
func tableCells(line string) []string {
	return columnGap.Split(strings.TrimSpace(line), -1)
}
