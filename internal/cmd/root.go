package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/config"
	"github.com/salmonumbrella/notion-cli/internal/logger"
	"github.com/salmonumbrella/notion-cli/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// skipClientAnnotation marks commands that run without a shared API client:
// they work offline or build their own.
const skipClientAnnotation = "skip-client"

var skipClient = map[string]string{skipClientAnnotation: "true"}

// Global flags
var (
	apiToken   string
	databaseID string
	outputFmt  string
	outputType output.Format
	debug      bool
	configFile string
	queryExpr  string
	queryFile  string
	errorFmt   string
	quietFlag  bool
)

var (
	// client is the shared API client
	client api.NotionAPI
	// cfg is the loaded config file; nil for config subcommands
	cfg *config.Config
	// cliLog receives request and export progress logs on stderr
	cliLog = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "notion",
	Short: "Convert markdown to Notion blocks and publish it",
	Long: `notion compiles markdown documents into Notion block trees and
publishes them to Notion databases.

Environment Variables:
  NOTION_API_TOKEN     Integration token for authentication
  NOTION_DATABASE_ID   Default database for new pages`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		cfg = nil
		if !isConfigCommand(cmd) {
			loaded, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loaded
		}

		// Output format selection: --output > config > non-terminal json > text
		formatStr := outputFmt
		if !flagChanged(cmd, "output") {
			switch {
			case cfg != nil && strings.TrimSpace(cfg.OutputFormat) != "":
				formatStr = strings.TrimSpace(cfg.OutputFormat)
			case !isTerminal(cmd.OutOrStdout()):
				formatStr = string(output.FormatJSON)
			}
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		if queryExpr != "" && queryFile != "" {
			return fmt.Errorf("use only one of --query or --query-file")
		}
		if queryFile != "" {
			loaded, err := readInputSource(queryFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			queryExpr = strings.TrimSpace(loaded)
		}

		// Default quiet mode for non-interactive structured output
		if !flagChanged(cmd, "quiet") && !isTerminal(cmd.OutOrStdout()) && output.IsStructured(outputType) {
			quietFlag = true
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithQuiet(ctx, quietFlag)
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		if effectiveErrorFormat(ctx) != "text" {
			cmd.SilenceUsage = true
		}

		cliLog = logger.New(cmd.ErrOrStderr(), logLevel(cfg))

		if !requiresClient(cmd) {
			return nil
		}

		token, database, err := resolveCredentials(cmd, cfg)
		if err != nil {
			return err
		}
		apiToken = token
		databaseID = database

		if apiToken == "" {
			return api.AuthenticationError{Message: "API token required. Set NOTION_API_TOKEN or use --token flag.\nRun 'notion auth login' to configure authentication."}
		}

		client, err = newClientFromCredsFunc(apiToken, clientOptionsFromConfig(cfg)...)
		if err != nil {
			return fmt.Errorf("failed to create API client: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	executed, err := rootCmd.ExecuteC()
	if err != nil {
		ctx := rootCmd.Context()
		if executed != nil && executed.Context() != nil {
			ctx = executed.Context()
		}
		printCommandError(ctx, err)
		return err
	}
	return nil
}

// GetClient returns the initialized API client
func GetClient() api.NotionAPI {
	return client
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("notion version %s (commit: %s, built: %s)\n", version, commit, date))

	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Integration token (env: NOTION_API_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&databaseID, "database", "d", "", "Database ID (env: NOTION_DATABASE_ID)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|json|ndjson|table|yaml)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log API requests to stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/notion/config.yaml)")
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// requiresClient reports whether cmd needs the shared API client. Commands
// annotated with skipClient, help and completion run without credentials.
func requiresClient(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipClientAnnotation] == "true" {
			return false
		}
	}
	return cmd.Runnable()
}

// logLevel picks the log level: --debug, then --quiet, then config.
func logLevel(cfg *config.Config) string {
	switch {
	case debug:
		return zerolog.LevelDebugValue
	case quietFlag:
		return zerolog.LevelWarnValue
	case cfg != nil && strings.TrimSpace(cfg.LogLevel) != "":
		return cfg.LogLevel
	}
	return zerolog.LevelInfoValue
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func requireDatabase() error {
	if strings.TrimSpace(databaseID) != "" {
		return nil
	}
	return errors.New("database ID required. Set NOTION_DATABASE_ID, use --database, or run 'notion config set database_id <id>'")
}
