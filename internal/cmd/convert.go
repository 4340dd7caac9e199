package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

var convertMarkdown markdownFlags

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert markdown to Notion block records",
	Long: `Convert a markdown document to the block records Notion's API accepts.

Nothing is sent to Notion. The output is the JSON array that page create
and page append would send, before batching.

Examples:
  notion convert --markdown "# Title"
  notion convert --markdown-file notes.md
  cat notes.md | notion convert --query '.[].type'`,
	Args:        cobra.NoArgs,
	Annotations: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		markdown, err := convertMarkdown.read(stdinFromContext(ctx), true)
		if err != nil {
			return err
		}

		doc, err := blocks.FromMarkdown(markdown)
		if err != nil {
			return err
		}
		cliLog.Debug().Int("top_level", len(doc)).Int("total", blocks.Count(doc)).Msg("converted markdown")
		return printRecords(ctx, blocks.Format(doc))
	},
}

func init() {
	convertMarkdown.register(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
