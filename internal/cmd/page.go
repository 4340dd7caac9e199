package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/blocks"
	"github.com/salmonumbrella/notion-cli/internal/property"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Create pages and manage their blocks",
	Long: `Create database pages from markdown, append markdown to existing pages,
and read a page's blocks back.`,
}

var (
	pageCreateMarkdown markdownFlags
	pageCreateTitle    string
	pageCreateTitleKey string
	pageCreateProps    []string

	pageAppendMarkdown markdownFlags

	pageBlocksRender string
)

var pageCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a database page from markdown",
	Long: `Create a page in a database. The markdown document becomes the page
body; documents over 100 top-level blocks are sent in batches.

Properties are given as Name=type:value. Types: title, status, text,
checkbox, select, multi_select, url, date, people. Lists are comma
separated, date ranges are start/end, and people may be user IDs or emails.

Examples:
  notion page create --database DB_ID --title "Weekly notes" --markdown-file notes.md
  notion page create --title "Bug" --property Status=status:Open --property Tags=multi_select:ui,urgent
  cat report.md | notion page create --title "Report" --property Owner=people:ada@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := requireDatabase(); err != nil {
			return err
		}
		if strings.TrimSpace(pageCreateTitle) == "" {
			return fmt.Errorf("--title is required")
		}

		props, err := pageProperties(ctx, pageCreateTitle, pageCreateTitleKey, pageCreateProps)
		if err != nil {
			return err
		}

		markdown, err := pageCreateMarkdown.read(stdinFromContext(ctx), false)
		if err != nil {
			return err
		}
		// A page without a body gets no blocks rather than one empty paragraph.
		var doc []blocks.Block
		if strings.TrimSpace(markdown) != "" {
			if doc, err = blocks.FromMarkdown(markdown); err != nil {
				return err
			}
		}

		result, err := newExporter().Export(ctx, databaseID, property.Format(props...), doc)
		if err != nil {
			if result != nil {
				return fmt.Errorf("page %s created but its content is incomplete: %w", result.Page.ID, err)
			}
			return fmt.Errorf("failed to create page: %w", err)
		}
		return printExportResult(ctx, "created", result)
	},
}

var pageAppendCmd = &cobra.Command{
	Use:   "append <page-id>",
	Short: "Append markdown to a page or block",
	Long: `Append a markdown document to the end of an existing page or block.

Examples:
  notion page append PAGE_ID --markdown "- one more item"
  notion page append PAGE_ID --markdown-file addendum.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		markdown, err := pageAppendMarkdown.read(stdinFromContext(ctx), true)
		if err != nil {
			return err
		}
		doc, err := blocks.FromMarkdown(markdown)
		if err != nil {
			return err
		}

		result, err := newExporter().Append(ctx, args[0], doc)
		if err != nil {
			if result != nil && result.Batches > 0 {
				return fmt.Errorf("appended %d of the blocks before failing: %w", result.Blocks, err)
			}
			return fmt.Errorf("failed to append blocks: %w", err)
		}
		return printExportResult(ctx, "appended", result)
	},
}

var pageBlocksCmd = &cobra.Command{
	Use:   "blocks <page-id>",
	Short: "Fetch a page's blocks",
	Long: `Fetch every block of a page, following nested children.

The blocks can be rendered in different formats:
- markdown: renders the blocks back to markdown (default)
- raw: shows the block records as JSON

Examples:
  notion page blocks PAGE_ID
  notion page blocks PAGE_ID --render raw
  notion page blocks PAGE_ID -o json --query '.[].type'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw, err := GetClient().GetAllBlocks(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get blocks: %w", err)
		}

		if structuredOutputRequested() {
			return printRawStructured(ctx, raw)
		}

		out := stdoutFromContext(ctx)
		switch pageBlocksRender {
		case "raw":
			var records interface{}
			if err := json.Unmarshal(raw, &records); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return printRecords(ctx, records)
		case "markdown", "":
			fmt.Fprint(out, blocks.RenderMarkdown(raw))
			return nil
		}
		return fmt.Errorf("invalid --render %q (expected markdown|raw)", pageBlocksRender)
	},
}

func init() {
	pageCreateMarkdown.register(pageCreateCmd)
	pageCreateCmd.Flags().StringVar(&pageCreateTitle, "title", "", "Page title")
	pageCreateCmd.Flags().StringVar(&pageCreateTitleKey, "title-property", "", "Name of the database title property (default: config title_property or Name)")
	pageCreateCmd.Flags().StringArrayVar(&pageCreateProps, "property", nil, "Property as Name=type:value (repeatable)")

	pageAppendMarkdown.register(pageAppendCmd)

	pageBlocksCmd.Flags().StringVar(&pageBlocksRender, "render", "markdown", "Render format for text output (markdown|raw)")

	pageCmd.AddCommand(pageCreateCmd)
	pageCmd.AddCommand(pageAppendCmd)
	pageCmd.AddCommand(pageBlocksCmd)
	rootCmd.AddCommand(pageCmd)
}

// pageProperties builds the title property plus any --property values.
// People given by email are resolved to user IDs.
func pageProperties(ctx context.Context, title, titleKey string, flags []string) ([]property.Property, error) {
	props := []property.Property{property.Title{Name: titleProperty(titleKey), Content: title}}
	for _, raw := range flags {
		p, err := property.ParseFlag(raw)
		if err != nil {
			return nil, err
		}
		if people, ok := p.(property.People); ok {
			if p, err = resolvePeople(ctx, people); err != nil {
				return nil, err
			}
		}
		props = append(props, p)
	}
	return props, nil
}

func resolvePeople(ctx context.Context, people property.People) (property.People, error) {
	ids := make([]string, 0, len(people.UserIDs))
	for _, id := range people.UserIDs {
		if !strings.Contains(id, "@") {
			ids = append(ids, id)
			continue
		}
		user, err := GetClient().FindUserByEmail(ctx, id)
		if err != nil {
			return people, fmt.Errorf("property %s: %w", people.Name, err)
		}
		ids = append(ids, gjson.GetBytes(user, "id").String())
	}
	people.UserIDs = ids
	return people, nil
}

func printExportResult(ctx context.Context, status string, result *api.ExportResult) error {
	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status":  status,
			"id":      result.Page.ID,
			"url":     result.Page.URL,
			"batches": result.Batches,
			"blocks":  result.Blocks,
		})
	}

	out := stdoutFromContext(ctx)
	switch status {
	case "created":
		fmt.Fprintf(out, "Created page %s\n", result.Page.ID)
	default:
		fmt.Fprintf(out, "Appended to %s\n", result.Page.ID)
	}
	if result.Page.URL != "" {
		fmt.Fprintf(out, "URL: %s\n", result.Page.URL)
	}
	fmt.Fprintf(out, "Blocks: %d in %d request(s)\n", result.Blocks, result.Batches)
	return nil
}
