package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/config"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

const (
	// defaultProfile is the keyring profile used when none is recorded
	defaultProfile = "default"
	// defaultTitleProperty is the title column of a new Notion database
	defaultTitleProperty = "Name"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveCredentials resolves the token and database ID with precedence:
// flags > env > keyring > config.
func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (string, string, error) {
	token := ""
	database := ""
	if flagChanged(cmd, "token") {
		token = strings.TrimSpace(apiToken)
	}
	if flagChanged(cmd, "database") {
		database = strings.TrimSpace(databaseID)
	}

	if token == "" {
		token = strings.TrimSpace(envGet("NOTION_API_TOKEN"))
	}
	if database == "" {
		database = strings.TrimSpace(envGet("NOTION_DATABASE_ID"))
	}

	if token == "" || database == "" {
		if tok, ok := storedToken(); ok {
			if token == "" {
				token = strings.TrimSpace(tok.APIToken)
			}
			if database == "" {
				database = strings.TrimSpace(tok.DatabaseID)
			}
		}
	}

	if token == "" && cfg != nil {
		token = strings.TrimSpace(cfg.Token)
	}
	if database == "" && cfg != nil {
		database = strings.TrimSpace(cfg.DatabaseID)
	}

	return token, database, nil
}

// storedToken loads the default profile's token from the keyring. A
// keyring that cannot be opened is treated as empty.
func storedToken() (secrets.Token, bool) {
	store, err := openSecretsStore()
	if err != nil {
		cliLog.Debug().Err(err).Msg("keyring unavailable")
		return secrets.Token{}, false
	}
	tok, err := store.GetToken(activeProfile(store))
	if err != nil {
		return secrets.Token{}, false
	}
	return tok, true
}

func activeProfile(store secrets.Store) string {
	if profile, err := store.GetDefaultAccount(); err == nil && strings.TrimSpace(profile) != "" {
		return profile
	}
	return defaultProfile
}

// clientOptionsFromConfig builds API client options from config.
func clientOptionsFromConfig(cfg *config.Config) []api.ClientOption {
	opts := []api.ClientOption{api.WithLogger(cliLog)}
	if cfg == nil {
		return opts
	}
	if v := strings.TrimSpace(cfg.BaseURL); v != "" {
		opts = append(opts, api.WithBaseURL(v))
	}
	if v := strings.TrimSpace(cfg.NotionVersion); v != "" {
		opts = append(opts, api.WithNotionVersion(v))
	}
	return opts
}

// newExporter builds an exporter over the shared client using the configured
// batch size.
func newExporter() *api.Exporter {
	opts := []api.ExporterOption{api.WithExportLogger(cliLog)}
	if cfg != nil && cfg.BatchSize > 0 {
		opts = append(opts, api.WithBatchSize(cfg.BatchSize))
	}
	return api.NewExporter(GetClient(), opts...)
}

// titleProperty returns the database title column: the flag, then config,
// then Notion's default.
func titleProperty(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if cfg != nil && strings.TrimSpace(cfg.TitleProperty) != "" {
		return strings.TrimSpace(cfg.TitleProperty)
	}
	return defaultTitleProperty
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
