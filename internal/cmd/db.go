package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/salmonumbrella/notion-cli/internal/output"
)

var dbCmd = &cobra.Command{
	Use:     "db",
	Aliases: []string{"database"},
	Short:   "Query Notion databases",
}

var (
	dbQueryFilter     string
	dbQueryFilterFile string
)

// pageRow is one database page in text and table output.
type pageRow struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	LastEdited string `json:"last_edited_time"`
	URL        string `json:"url"`
}

var dbQueryCmd = &cobra.Command{
	Use:   "query [database-id]",
	Short: "List the pages of a database",
	Long: `List every page of a database, following pagination.

The database defaults to --database, NOTION_DATABASE_ID or the configured
database_id. A Notion filter object narrows the result.

Examples:
  notion db query DB_ID
  notion db query --filter '{"property":"Status","status":{"equals":"Done"}}'
  notion db query DB_ID -o json --query '.[].id'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			databaseID = args[0]
		}
		if err := requireDatabase(); err != nil {
			return err
		}

		filter, err := readFilter(cmd)
		if err != nil {
			return err
		}

		raw, err := GetClient().QueryDatabase(ctx, databaseID, filter)
		if err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
		if structuredOutputRequested() {
			return printRawStructured(ctx, raw)
		}
		return printPageRows(ctx, raw)
	},
}

func init() {
	dbQueryCmd.Flags().StringVar(&dbQueryFilter, "filter", "", "Notion filter object as JSON")
	dbQueryCmd.Flags().StringVar(&dbQueryFilterFile, "filter-file", "", "Read the filter from file (use - for stdin)")

	dbCmd.AddCommand(dbQueryCmd)
	rootCmd.AddCommand(dbCmd)
}

func readFilter(cmd *cobra.Command) (json.RawMessage, error) {
	if dbQueryFilter != "" && dbQueryFilterFile != "" {
		return nil, fmt.Errorf("use only one of --filter or --filter-file")
	}
	filter := dbQueryFilter
	if dbQueryFilterFile != "" {
		loaded, err := readInputSource(dbQueryFilterFile, stdinFromContext(cmd.Context()))
		if err != nil {
			return nil, err
		}
		filter = loaded
	}
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	return json.RawMessage(filter), nil
}

func printPageRows(ctx context.Context, raw []byte) error {
	var rows []pageRow
	gjson.ParseBytes(raw).ForEach(func(_, page gjson.Result) bool {
		rows = append(rows, pageRow{
			ID:         page.Get("id").String(),
			Title:      pageTitle(page),
			LastEdited: page.Get("last_edited_time").String(),
			URL:        page.Get("url").String(),
		})
		return true
	})
	if len(rows) == 0 {
		fmt.Fprintln(stdoutFromContext(ctx), "No pages found.")
		return nil
	}
	return output.NewPrinter(stdoutFromContext(ctx), output.FormatTable).Print(ctx, rows)
}

// pageTitle joins the plain text of a page's title property, whatever the
// property is named.
func pageTitle(page gjson.Result) string {
	var title string
	page.Get("properties").ForEach(func(_, prop gjson.Result) bool {
		if prop.Get("type").String() != "title" {
			return true
		}
		var sb strings.Builder
		for _, run := range prop.Get("title").Array() {
			sb.WriteString(run.Get("plain_text").String())
		}
		title = sb.String()
		return false
	})
	return title
}
