package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/salmonumbrella/notion-cli/internal/output"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

func printStructured(ctx context.Context, data interface{}) error {
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

// printRecords prints wire records. Records are JSON by nature, so text
// output falls back to indented JSON.
func printRecords(ctx context.Context, data interface{}) error {
	format := GetOutputFormat()
	if format == output.FormatText {
		format = output.FormatJSON
	}
	return output.NewPrinter(stdoutFromContext(ctx), format).Print(ctx, data)
}

func printRawStructured(ctx context.Context, raw []byte) error {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return printStructured(ctx, data)
}

// notef writes a progress note to stderr unless --quiet is set.
func notef(ctx context.Context, format string, args ...interface{}) {
	if output.QuietFromContext(ctx) {
		return
	}
	fmt.Fprintf(stderrFromContext(ctx), format, args...)
}
