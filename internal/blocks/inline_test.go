package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizePlainText(t *testing.T) {
	runs := Tokenize("nothing special here")

	require.Len(t, runs, 1)
	assert.Equal(t, RunText, runs[0].Kind())
	assert.Equal(t, "nothing special here", runs[0].Content())
	assert.Equal(t, Annotations{}, runs[0].Annotations())
}

func TestTokenizeEmptyText(t *testing.T) {
	runs := Tokenize("")

	require.Len(t, runs, 1)
	assert.Equal(t, "", runs[0].Content())
}

func TestTokenizeInlineCode(t *testing.T) {
	runs := Tokenize("set `x=1` now")

	require.Len(t, runs, 3)
	assert.Equal(t, "set ", runs[0].Content())
	assert.Equal(t, "x=1", runs[1].Content())
	assert.Equal(t, Annotations{Code: true, Color: ColorRed}, runs[1].Annotations())
	assert.Equal(t, " now", runs[2].Content())
}

func TestTokenizeLink(t *testing.T) {
	runs := Tokenize("see [docs](https://example.com/docs) for more")

	require.Len(t, runs, 3)
	assert.Equal(t, "docs", runs[1].Content())
	assert.Equal(t, "https://example.com/docs", runs[1].URL())
	assert.Equal(t, " for more", runs[2].Content())
}

func TestTokenizePageMention(t *testing.T) {
	runs := Tokenize("[Roadmap: 0123456789abcdef0123456789abcdef]")

	require.Len(t, runs, 1, "a span covering the whole text leaves no plain runs")
	m, ok := runs[0].Mention()
	require.True(t, ok)
	assert.Equal(t, MentionPage, m.Kind)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", m.ID)
}

func TestTokenizeInlineEquation(t *testing.T) {
	runs := Tokenize("area is $\\pi r^2$.")

	require.Len(t, runs, 3)
	assert.Equal(t, RunEquation, runs[1].Kind())
	assert.Equal(t, "\\pi r^2", runs[1].Content())
	assert.Equal(t, ".", runs[2].Content())
}

func TestTokenizeMixedSpansKeepTextOrder(t *testing.T) {
	text := "a `b` c [d](http://e) f $g$ h"
	runs := Tokenize(text)

	var kinds []RunKind
	var plain string
	for _, r := range runs {
		kinds = append(kinds, r.Kind())
		plain += r.PlainText()
	}
	assert.Equal(t, []RunKind{RunText, RunText, RunText, RunText, RunText, RunEquation, RunText}, kinds)
	assert.Equal(t, "a b c d f g h", plain)
}

func TestTokenizeOverlapEarliestWins(t *testing.T) {
	// The code span starts first, so the equation inside it is discarded.
	runs := Tokenize("`$x$` end")

	require.Len(t, runs, 2)
	assert.True(t, runs[0].Annotations().Code)
	assert.Equal(t, "$x$", runs[0].Content())
	assert.Equal(t, " end", runs[1].Content())
}

func TestTokenizeLinkBeatsMentionAtSameStart(t *testing.T) {
	runs := Tokenize("[a:b](http://c)")

	require.Len(t, runs, 1)
	assert.Equal(t, RunText, runs[0].Kind())
	assert.Equal(t, "a:b", runs[0].Content())
	assert.Equal(t, "http://c", runs[0].URL())
}

func TestTokenizeUnclosedMarkersStayPlain(t *testing.T) {
	runs := Tokenize("price is $5 and `open")

	require.Len(t, runs, 1)
	assert.Equal(t, "price is $5 and `open", runs[0].Content())
}
