package blocks

import (
	"regexp"
	"sort"
	"strings"
)

type spanKind int

const (
	spanLink spanKind = iota
	spanCode
	spanMention
	spanEquation
)

var (
	linkPattern     = regexp.MustCompile(`\[([^\[\]]+?)\]\(([^\s\)]+?)\)`)
	codePattern     = regexp.MustCompile("`(.+?)`")
	mentionPattern  = regexp.MustCompile(`\[([^\[\]:]+?):([^\[\]]+?)\]`)
	equationPattern = regexp.MustCompile(`\$(.+?)\$`)
)

// span is one candidate match; groups holds submatch byte offsets.
type span struct {
	kind       spanKind
	start, end int
	groups     []int
}

func (s span) group(text string, n int) string {
	lo, hi := s.groups[2*n], s.groups[2*n+1]
	if lo < 0 {
		return ""
	}
	return text[lo:hi]
}

// Tokenize splits inline text into runs. Links, inline code, page mentions
// ("[label:page-id]") and inline equations are matched independently, then
// ordered by start offset. Where candidates overlap, the earliest wins and a
// longer match wins a tie; a candidate starting inside an accepted one is
// discarded. Gaps between accepted spans become plain runs. Text with no
// spans yields a single plain run.
func Tokenize(text string) []RichText {
	spans := resolveOverlaps(findSpans(text))
	if len(spans) == 0 {
		return []RichText{Text(text)}
	}

	runs := make([]RichText, 0, 2*len(spans)+1)
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			runs = append(runs, Text(text[pos:s.start]))
		}
		runs = append(runs, s.run(text))
		pos = s.end
	}
	if pos < len(text) {
		runs = append(runs, Text(text[pos:]))
	}
	return runs
}

func findSpans(text string) []span {
	var spans []span
	collect := func(kind spanKind, re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			spans = append(spans, span{kind: kind, start: m[0], end: m[1], groups: m})
		}
	}
	collect(spanLink, linkPattern)
	collect(spanCode, codePattern)
	collect(spanMention, mentionPattern)
	collect(spanEquation, equationPattern)
	return spans
}

func resolveOverlaps(spans []span) []span {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	accepted := spans[:0]
	end := 0
	for _, s := range spans {
		if s.start < end {
			continue
		}
		accepted = append(accepted, s)
		end = s.end
	}
	return accepted
}

func (s span) run(text string) RichText {
	switch s.kind {
	case spanLink:
		return Link(s.group(text, 1), s.group(text, 2))
	case spanCode:
		return InlineCode(s.group(text, 1))
	case spanMention:
		return PageMentionRun(strings.TrimSpace(s.group(text, 2)))
	default:
		return InlineEquation(s.group(text, 1))
	}
}
