package notebook

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

func readSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.ipynb"))
	require.NoError(t, err)
	return data
}

func TestExtract(t *testing.T) {
	cells, err := Extract(readSample(t))
	require.NoError(t, err)

	want := []Cell{
		{Type: CellMarkdown, MIMEType: "text/markdown", Text: "## Results\n- accuracy `0.93`"},
		{Type: CellOutput, MIMEType: "text/plain", Text: "hi\nthere\n"},
		{Type: CellOutput, MIMEType: "text/plain", Text: "42"},
		{Type: CellOutput, MIMEType: "image/png", Data: "iVBORw0KGgo="},
		{Type: CellOutput, MIMEType: "image/jpeg", Data: "/9j/4AAQ"},
		{Type: CellMarkdown, MIMEType: "text/markdown", Text: "plain string source"},
	}
	assert.Equal(t, want, cells)
}

func TestExtractWithoutMarker(t *testing.T) {
	cells, err := Extract([]byte(`{"cells":[{"cell_type":"markdown","source":["# Title"]}]}`))
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestExtractRejectsInvalidInput(t *testing.T) {
	_, err := Extract([]byte(`{"cells": [`))
	assert.ErrorIs(t, err, ErrInvalidNotebook)

	_, err = Extract([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrInvalidNotebook)
}

func TestToBlocks(t *testing.T) {
	cells, err := Extract(readSample(t))
	require.NoError(t, err)

	var logs bytes.Buffer
	out, err := ToBlocks(cells, zerolog.New(&logs))
	require.NoError(t, err)

	var types []string
	for _, b := range out {
		types = append(types, b.Type())
	}
	assert.Equal(t, []string{"heading_2", "bulleted_list_item", "code", "code", "paragraph"}, types)

	code, ok := out[2].(*blocks.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "hi\nthere\n", code.Content)
	assert.Equal(t, OutputLanguage, code.Language)
	assert.Equal(t, OutputCaption, code.Caption)

	assert.Equal(t, 1, strings.Count(logs.String(), "image outputs are not uploaded"), "the warning is logged once")
}
