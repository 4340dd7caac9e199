package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/term"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
	Long: `Manage the Notion integration token.

Credentials are stored in your system keychain (macOS Keychain, Windows
Credential Manager, Secret Service, or an encrypted file).

Examples:
  notion auth login --token secret_xxx --database DB_ID
  notion auth login  # prompts for the token
  notion auth status --verify
  notion auth logout`,
	Annotations: skipClient,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an integration token",
	Long: `Store an integration token and an optional default database.

To obtain a token:
  1. Open https://www.notion.so/my-integrations
  2. Create an internal integration
  3. Share your database with the integration

The token is verified against the API before it is stored.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var verifyAuth bool

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(authCmd)

	statusCmd.Flags().BoolVar(&verifyAuth, "verify", false, "Verify the token with the API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	structured := structuredOutputRequested()

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	token := strings.TrimSpace(apiToken)
	if !flagChanged(cmd, "token") {
		token = strings.TrimSpace(envGet("NOTION_API_TOKEN"))
	}
	if token == "" {
		token, err = promptSecret(ctx, "Enter integration token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}
	if token == "" {
		return fmt.Errorf("integration token is required")
	}

	database := strings.TrimSpace(databaseID)
	if !flagChanged(cmd, "database") {
		database = strings.TrimSpace(envGet("NOTION_DATABASE_ID"))
	}

	notef(ctx, "Verifying token...\n")
	bot, err := verifyToken(ctx, token)
	if err != nil {
		var authErr api.AuthenticationError
		if errors.As(err, &authErr) {
			return fmt.Errorf("authentication failed: %w", err)
		}
		// Anything but a rejected token (rate limit, network) still lets
		// the token be stored.
		notef(ctx, "Warning: could not verify token: %v\n", err)
	}

	tok := secrets.Token{
		APIToken:   token,
		DatabaseID: database,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SetToken(defaultProfile, tok); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	if err := store.SetDefaultAccount(defaultProfile); err != nil {
		return fmt.Errorf("failed to set default account: %w", err)
	}

	if structured {
		return printStructured(ctx, map[string]interface{}{
			"status":   "authenticated",
			"profile":  defaultProfile,
			"bot":      bot,
			"database": database,
		})
	}

	out := stdoutFromContext(ctx)
	fmt.Fprintln(out, "Authenticated successfully!")
	if bot != "" {
		fmt.Fprintf(out, "Integration: %s\n", bot)
	}
	if database != "" {
		fmt.Fprintf(out, "Default database: %s\n", database)
	}
	return nil
}

// verifyToken calls the API as token and returns the integration's name.
func verifyToken(ctx context.Context, token string) (string, error) {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return "", formatConfigLoadError(err)
	}
	c, err := newClientFromCredsFunc(token, clientOptionsFromConfig(cfg)...)
	if err != nil {
		return "", err
	}
	me, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(me, "name").String(), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	profile := activeProfile(store)
	if err := store.DeleteToken(profile); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status":  "logged_out",
			"profile": profile,
		})
	}

	fmt.Fprintln(stdoutFromContext(ctx), "Logged out. Credentials have been removed from the keychain.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	structured := structuredOutputRequested()
	out := stdoutFromContext(ctx)

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	tok, err := store.GetToken(activeProfile(store))
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("failed to read credentials: %w", err)
		}
		if structured {
			return printStructured(ctx, map[string]interface{}{"authenticated": false})
		}
		fmt.Fprintln(out, "Status: Not authenticated")
		fmt.Fprintln(out, "\nRun 'notion auth login' to authenticate.")
		return nil
	}

	result := map[string]interface{}{
		"authenticated": true,
		"profile":       tok.Profile,
		"token_preview": maskToken(tok.APIToken),
		"database":      tok.DatabaseID,
	}
	if !tok.CreatedAt.IsZero() {
		result["authenticated_at"] = tok.CreatedAt.Format(time.RFC3339)
	}
	if verifyAuth {
		bot, err := verifyToken(ctx, tok.APIToken)
		result["verified"] = err == nil
		if err != nil {
			result["verify_error"] = err.Error()
		} else {
			result["bot"] = bot
		}
	}

	if structured {
		return printStructured(ctx, result)
	}

	fmt.Fprintln(out, "Status: Authenticated")
	fmt.Fprintf(out, "Profile: %s\n", tok.Profile)
	if !tok.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Authenticated at: %s\n", result["authenticated_at"])
	}
	if tok.DatabaseID != "" {
		fmt.Fprintf(out, "Default database: %s\n", tok.DatabaseID)
	} else {
		fmt.Fprintln(out, "Default database: Not configured")
	}
	fmt.Fprintf(out, "Token: %s\n", maskToken(tok.APIToken))
	if verifyAuth {
		if msg, failed := result["verify_error"]; failed {
			fmt.Fprintf(out, "Verification: FAILED - %v\n", msg)
		} else {
			fmt.Fprintf(out, "Verification: OK (%s)\n", result["bot"])
		}
	}
	return nil
}

// promptSecret prompts for a secret input (no echo on a terminal)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(stderrFromContext(ctx))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	// Piped input
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
