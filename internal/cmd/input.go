package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var errMarkdownRequired = errors.New("markdown content required (use --markdown, --markdown-file, or stdin)")

// readInputSource reads a file path, or stdin when source is "-". Content is
// returned as read; leading indentation is significant for markdown.
func readInputSource(source string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", fmt.Errorf("empty input source")
	}

	if trimmed != "-" {
		data, err := readFile(trimmed)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		return string(data), nil
	}

	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// inputHasData reports whether r is piped or redirected rather than an
// interactive terminal.
func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	if file, ok := r.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	return true
}

// markdownFlags is the --markdown/--markdown-file pair shared by commands
// that take a document.
type markdownFlags struct {
	content string
	file    string
}

func (f *markdownFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.content, "markdown", "", "Markdown content")
	cmd.Flags().StringVar(&f.file, "markdown-file", "", "Read markdown from file (use - for stdin)")
}

// read returns the document from --markdown, --markdown-file or piped stdin,
// in that order. When required is false a missing document is returned as "".
func (f *markdownFlags) read(stdin io.Reader, required bool) (string, error) {
	if f.content != "" && strings.TrimSpace(f.file) != "" {
		return "", fmt.Errorf("use only one of --markdown or --markdown-file")
	}

	var (
		markdown string
		err      error
	)
	switch {
	case f.content != "":
		markdown = f.content
	case strings.TrimSpace(f.file) != "":
		markdown, err = readInputSource(f.file, stdin)
	case inputHasData(stdin):
		markdown, err = readInputSource("-", stdin)
	}
	if err != nil {
		return "", err
	}

	if required && strings.TrimSpace(markdown) == "" {
		return "", errMarkdownRequired
	}
	return markdown, nil
}
