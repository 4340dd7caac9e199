package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/salmonumbrella/notion-cli/internal/output"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and find workspace users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user in the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw, err := GetClient().ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if structuredOutputRequested() {
			return printRawStructured(ctx, raw)
		}
		return printUsers(ctx, gjson.ParseBytes(raw).Array())
	},
}

var usersFindCmd = &cobra.Command{
	Use:   "find <email>",
	Short: "Find a person by email",
	Long: `Find a workspace member by email. The match ignores case.

Examples:
  notion users find ada@example.com
  notion users find ada@example.com -o json --query .id`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw, err := GetClient().FindUserByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printRawStructured(ctx, raw)
		}
		return printUsers(ctx, []gjson.Result{gjson.ParseBytes(raw)})
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersFindCmd)
	rootCmd.AddCommand(usersCmd)
}

func printUsers(ctx context.Context, users []gjson.Result) error {
	table := output.Table{Headers: []string{"ID", "NAME", "TYPE", "EMAIL"}}
	for _, u := range users {
		table.Rows = append(table.Rows, []string{
			u.Get("id").String(),
			u.Get("name").String(),
			u.Get("type").String(),
			u.Get("person.email").String(),
		})
	}
	return output.NewPrinter(stdoutFromContext(ctx), output.FormatTable).Print(ctx, table)
}
