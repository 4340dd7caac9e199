package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/config"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

func TestFlagChanged_NilCmd(t *testing.T) {
	if flagChanged(nil, "output") {
		t.Error("expected false for nil cmd")
	}
}

func TestFlagChanged_SetFlag(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", "text", "")
	if flagChanged(cmd, "output") {
		t.Error("expected false for unset flag")
	}
	if err := cmd.Flags().Set("output", "json"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if !flagChanged(cmd, "output") {
		t.Error("expected true for set flag")
	}
}

func TestFlagChanged_InheritedFlag(t *testing.T) {
	parent := &cobra.Command{}
	parent.PersistentFlags().String("database", "", "")
	child := &cobra.Command{}
	parent.AddCommand(child)

	if err := parent.PersistentFlags().Set("database", "db"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if !flagChanged(child, "database") {
		t.Error("expected true for inherited flag")
	}
}

func TestClientOptionsFromConfig(t *testing.T) {
	if got := len(clientOptionsFromConfig(nil)); got != 1 {
		t.Errorf("nil config: expected logger option only, got %d options", got)
	}
	if got := len(clientOptionsFromConfig(&config.Config{BaseURL: "   "})); got != 1 {
		t.Errorf("blank base_url: expected logger option only, got %d options", got)
	}
	full := &config.Config{BaseURL: "http://localhost:9999", NotionVersion: "2025-09-03"}
	if got := len(clientOptionsFromConfig(full)); got != 3 {
		t.Errorf("expected 3 options, got %d", got)
	}
}

func TestFormatConfigLoadError(t *testing.T) {
	if formatConfigLoadError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	err := formatConfigLoadError(errors.New("file not found"))
	if err.Error() != "load config: file not found" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestTitleProperty(t *testing.T) {
	prevCfg := cfg
	defer func() { cfg = prevCfg }()

	cfg = nil
	if got := titleProperty(""); got != "Name" {
		t.Errorf("default title property = %q, want Name", got)
	}
	cfg = &config.Config{TitleProperty: "Task"}
	if got := titleProperty(""); got != "Task" {
		t.Errorf("config title property = %q, want Task", got)
	}
	if got := titleProperty(" Title "); got != "Title" {
		t.Errorf("flag title property = %q, want Title", got)
	}
}

// resolveWith runs resolveCredentials against the given env, keyring and
// config. Flags are applied to a command carrying the global flags.
func resolveWith(t *testing.T, env map[string]string, store secrets.Store, cfgFile *config.Config, flags map[string]string) (string, string) {
	t.Helper()
	prevEnv, prevStore := envGet, openSecretsStore
	prevToken, prevDB := apiToken, databaseID
	t.Cleanup(func() {
		envGet, openSecretsStore = prevEnv, prevStore
		apiToken, databaseID = prevToken, prevDB
	})

	envGet = func(key string) string { return env[key] }
	openSecretsStore = func() (secrets.Store, error) {
		if store == nil {
			return nil, errors.New("keyring unavailable")
		}
		return store, nil
	}

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&apiToken, "token", "", "")
	cmd.Flags().StringVar(&databaseID, "database", "", "")
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	token, database, err := resolveCredentials(cmd, cfgFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token, database
}

func TestResolveCredentials_FromEnv(t *testing.T) {
	env := map[string]string{"NOTION_API_TOKEN": "env-token", "NOTION_DATABASE_ID": "env-db"}
	token, database := resolveWith(t, env, nil, nil, nil)
	if token != "env-token" || database != "env-db" {
		t.Errorf("got %q %q, want env-token env-db", token, database)
	}
}

func TestResolveCredentials_FromKeyring(t *testing.T) {
	store := newMemStore()
	_ = store.SetToken("work", secrets.Token{APIToken: "keyring-token", DatabaseID: "keyring-db"})
	_ = store.SetDefaultAccount("work")

	token, database := resolveWith(t, nil, store, nil, nil)
	if token != "keyring-token" || database != "keyring-db" {
		t.Errorf("got %q %q, want keyring-token keyring-db", token, database)
	}
}

func TestResolveCredentials_FromConfig(t *testing.T) {
	cfgFile := &config.Config{Token: "config-token", DatabaseID: "config-db"}
	token, database := resolveWith(t, nil, nil, cfgFile, nil)
	if token != "config-token" || database != "config-db" {
		t.Errorf("got %q %q, want config-token config-db", token, database)
	}
}

func TestResolveCredentials_FullPrecedenceChain(t *testing.T) {
	store := newMemStore()
	_ = store.SetToken(defaultProfile, secrets.Token{APIToken: "keyring-token", DatabaseID: "keyring-db"})
	cfgFile := &config.Config{Token: "config-token", DatabaseID: "config-db"}

	// Flags beat everything.
	token, database := resolveWith(t,
		map[string]string{"NOTION_API_TOKEN": "env-token", "NOTION_DATABASE_ID": "env-db"},
		store, cfgFile,
		map[string]string{"token": "flag-token", "database": "flag-db"})
	if token != "flag-token" || database != "flag-db" {
		t.Errorf("flags: got %q %q", token, database)
	}

	// Env beats keyring, and the keyring fills what env leaves out.
	token, database = resolveWith(t, map[string]string{"NOTION_API_TOKEN": "env-token"}, store, cfgFile, nil)
	if token != "env-token" || database != "keyring-db" {
		t.Errorf("env+keyring: got %q %q", token, database)
	}

	// Keyring beats config.
	token, database = resolveWith(t, nil, store, cfgFile, nil)
	if token != "keyring-token" || database != "keyring-db" {
		t.Errorf("keyring: got %q %q", token, database)
	}
}

func TestNewExporterUsesConfiguredBatchSize(t *testing.T) {
	prevCfg, prevClient := cfg, client
	defer func() { cfg, client = prevCfg, prevClient }()

	fake := &fakeNotion{}
	client = fake
	cfg = &config.Config{BatchSize: 2}

	result, err := newExporter().Append(context.Background(), "target", paragraphs(5))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(fake.appended) != 3 || result.Batches != 3 {
		t.Fatalf("expected 3 batches of at most 2, got %d appends", len(fake.appended))
	}
}

var _ api.NotionAPI = (*fakeNotion)(nil)
