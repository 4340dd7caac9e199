package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-cli/internal/notebook"
	"github.com/salmonumbrella/notion-cli/internal/output"
	"github.com/salmonumbrella/notion-cli/internal/property"
)

var notebookCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Publish Jupyter notebooks",
	Long: `Publish the part of a Jupyter notebook that follows a markdown cell
containing exactly "` + notebook.Marker + `".

Markdown cells are converted like any markdown document. Text outputs of
code cells become code blocks captioned "` + notebook.OutputCaption + `". Image outputs are
skipped.`,
}

var (
	notebookTitle    string
	notebookTitleKey string
	notebookProps    []string
)

var notebookCellsCmd = &cobra.Command{
	Use:   "cells <file.ipynb>",
	Short: "List the cells that would be exported",
	Args:  cobra.ExactArgs(1),
	// Reads the notebook only.
	Annotations: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cells, err := readNotebook(args[0])
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(ctx, cells)
		}
		if len(cells) == 0 {
			fmt.Fprintf(stdoutFromContext(ctx), "No cells after a %q marker.\n", notebook.Marker)
			return nil
		}
		table := output.Table{Headers: []string{"#", "TYPE", "MIME", "PREVIEW"}}
		for i, cell := range cells {
			table.Rows = append(table.Rows, []string{
				fmt.Sprint(i + 1),
				string(cell.Type),
				cell.MIMEType,
				preview(cell),
			})
		}
		return output.NewPrinter(stdoutFromContext(ctx), output.FormatTable).Print(ctx, table)
	},
}

var notebookExportCmd = &cobra.Command{
	Use:   "export <file.ipynb>",
	Short: "Create a database page from a notebook",
	Long: `Create a database page whose body is the exported part of a notebook.

Examples:
  notion notebook export analysis.ipynb --database DB_ID --title "Q3 analysis"
  notion notebook export analysis.ipynb --title "Run 42" --property Status=status:Draft`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := requireDatabase(); err != nil {
			return err
		}
		title := strings.TrimSpace(notebookTitle)
		if title == "" {
			return fmt.Errorf("--title is required")
		}

		cells, err := readNotebook(args[0])
		if err != nil {
			return err
		}
		if len(cells) == 0 {
			notef(ctx, "No cells after a %q marker; the page will be empty.\n", notebook.Marker)
		}
		doc, err := notebook.ToBlocks(cells, cliLog)
		if err != nil {
			return err
		}

		props, err := pageProperties(ctx, title, notebookTitleKey, notebookProps)
		if err != nil {
			return err
		}
		result, err := newExporter().Export(ctx, databaseID, property.Format(props...), doc)
		if err != nil {
			if result != nil {
				return fmt.Errorf("page %s created but its content is incomplete: %w", result.Page.ID, err)
			}
			return fmt.Errorf("failed to export notebook: %w", err)
		}
		return printExportResult(ctx, "created", result)
	},
}

func init() {
	notebookExportCmd.Flags().StringVar(&notebookTitle, "title", "", "Page title")
	notebookExportCmd.Flags().StringVar(&notebookTitleKey, "title-property", "", "Name of the database title property (default: config title_property or Name)")
	notebookExportCmd.Flags().StringArrayVar(&notebookProps, "property", nil, "Property as Name=type:value (repeatable)")

	notebookCmd.AddCommand(notebookCellsCmd)
	notebookCmd.AddCommand(notebookExportCmd)
	rootCmd.AddCommand(notebookCmd)
}

func readNotebook(path string) ([]notebook.Cell, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cells, err := notebook.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cells, nil
}

func preview(cell notebook.Cell) string {
	if cell.IsImage() {
		return "(image, skipped)"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(cell.Text), "\n")
	if runes := []rune(line); len(runes) > 48 {
		return string(runes[:45]) + "..."
	}
	return line
}

