package blocks

import (
	"regexp"
	"strings"
)

// IndentUnit is the number of leading spaces that make one nesting level.
// A tab counts as one full unit.
const IndentUnit = 2

var (
	headingPattern  = regexp.MustCompile(`^(#+) `)
	bulletPattern   = regexp.MustCompile(`^[-*] `)
	numberedPattern = regexp.MustCompile(`^\d+\. `)
)

const (
	equationFence = "$$"
	codeFence     = "```"
)

// RawLine is one classified line (or one collapsed fenced region).
type RawLine struct {
	Kind        Kind
	IndentLevel int
	Text        string
}

// fence tracks an open code or equation region.
type fence struct {
	kind   Kind
	indent int
	prefix int // leading whitespace of the opening fence, removed from content lines
	lines  []string
}

func (f *fence) flush() RawLine {
	return RawLine{Kind: f.kind, IndentLevel: f.indent, Text: strings.Join(f.lines, "\n")}
}

// Classify scans markdown line by line and returns a flat sequence of
// classified lines. Fenced code and equation regions collapse into a single
// line holding their content without the fences. A fence still open at the
// end of input is flushed as if it had been closed.
//
// A trailing newline does not produce an extra empty paragraph; every other
// blank line does.
func Classify(markdown string) []RawLine {
	physical := strings.Split(markdown, "\n")
	if n := len(physical); n > 1 && physical[n-1] == "" {
		physical = physical[:n-1]
	}

	lines := make([]RawLine, 0, len(physical))
	var open *fence

	for _, line := range physical {
		line = strings.TrimSuffix(line, "\r")
		width := leadingWidth(line)
		indent := width / IndentUnit
		stripped := strings.TrimSpace(line)

		if open != nil {
			if closesFence(open.kind, stripped) {
				lines = append(lines, open.flush())
				open = nil
				continue
			}
			open.lines = append(open.lines, dedent(line, open.prefix))
			continue
		}

		switch {
		case headingPattern.MatchString(stripped):
			marks := headingPattern.FindStringSubmatch(stripped)[1]
			text := strings.TrimSpace(strings.TrimLeft(stripped, "#"))
			lines = append(lines, RawLine{Kind: headingKind(len(marks)), IndentLevel: indent, Text: text})
		case bulletPattern.MatchString(stripped):
			lines = append(lines, RawLine{Kind: KindBulletedListItem, IndentLevel: indent, Text: strings.TrimSpace(stripped[2:])})
		case numberedPattern.MatchString(stripped):
			end := numberedPattern.FindStringIndex(stripped)[1]
			lines = append(lines, RawLine{Kind: KindNumberedListItem, IndentLevel: indent, Text: strings.TrimSpace(stripped[end:])})
		case strings.HasPrefix(stripped, equationFence):
			if expr, ok := inlineDisplayEquation(stripped); ok {
				lines = append(lines, RawLine{Kind: KindEquation, IndentLevel: indent, Text: expr})
				continue
			}
			open = &fence{kind: KindEquation, indent: indent, prefix: width}
		case strings.HasPrefix(stripped, codeFence):
			open = &fence{kind: KindCode, indent: indent, prefix: width}
		default:
			lines = append(lines, RawLine{Kind: KindParagraph, IndentLevel: indent, Text: stripped})
		}
	}

	if open != nil {
		lines = append(lines, open.flush())
	}
	return lines
}

// closesFence reports whether a stripped line ends the open region.
// Only the delimiter that opened the region can close it.
func closesFence(kind Kind, stripped string) bool {
	if kind == KindEquation {
		return strings.HasPrefix(stripped, equationFence)
	}
	return strings.HasPrefix(stripped, codeFence)
}

// inlineDisplayEquation handles "$$expr$$" written on a single line.
func inlineDisplayEquation(stripped string) (string, bool) {
	if len(stripped) <= 2*len(equationFence) || !strings.HasSuffix(stripped, equationFence) {
		return "", false
	}
	return strings.TrimSpace(stripped[len(equationFence) : len(stripped)-len(equationFence)]), true
}

// leadingWidth counts leading whitespace in columns, a tab being one indent unit.
func leadingWidth(line string) int {
	width := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			width++
		case '\t':
			width += IndentUnit
		default:
			return width
		}
	}
	return width
}

// dedent removes up to width columns of leading whitespace.
func dedent(line string, width int) string {
	i := 0
	for i < len(line) && width > 0 {
		switch line[i] {
		case ' ':
			width--
		case '\t':
			width -= IndentUnit
		default:
			return line[i:]
		}
		i++
	}
	return line[i:]
}
