package blocks

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Color is a text or background color name.
type Color string

const (
	ColorDefault Color = "default"
	ColorGray    Color = "gray"
	ColorBrown   Color = "brown"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorRed     Color = "red"
)

// Background returns the background variant of a foreground color.
func (c Color) Background() Color {
	if c == "" || c == ColorDefault || strings.HasSuffix(string(c), "_background") {
		return c
	}
	return c + "_background"
}

// ParseColor validates a color name, foreground or background.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return ColorDefault, nil
	}
	base := Color(strings.TrimSuffix(string(c), "_background"))
	switch base {
	case ColorGray, ColorBrown, ColorOrange, ColorYellow,
		ColorGreen, ColorBlue, ColorPurple, ColorPink, ColorRed:
		return c, nil
	case ColorDefault:
		if c == ColorDefault {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", s)
}

func (c Color) orDefault() Color {
	if c == "" {
		return ColorDefault
	}
	return c
}

// Annotations is the style applied to a text run.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Color         Color
}

func (a Annotations) format() map[string]interface{} {
	return map[string]interface{}{
		"bold":          a.Bold,
		"italic":        a.Italic,
		"strikethrough": a.Strikethrough,
		"underline":     a.Underline,
		"code":          a.Code,
		"color":         string(a.Color.orDefault()),
	}
}

// RunKind tags which payload a RichText carries.
type RunKind int

const (
	RunText RunKind = iota
	RunMention
	RunEquation
)

func (k RunKind) String() string {
	switch k {
	case RunText:
		return "text"
	case RunMention:
		return "mention"
	case RunEquation:
		return "equation"
	default:
		return fmt.Sprintf("run(%d)", int(k))
	}
}

// MentionKind is the kind of entity a mention points at.
type MentionKind string

const (
	MentionPage        MentionKind = "page"
	MentionUser        MentionKind = "user"
	MentionDate        MentionKind = "date"
	MentionDatabase    MentionKind = "database"
	MentionLinkPreview MentionKind = "link_preview"
)

// Mention is an inline reference to another entity.
type Mention struct {
	Kind MentionKind
	// ID identifies the page, user or database.
	ID string
	// Start and End bound a date mention; End is optional.
	Start string
	End   string
	// URL is the target of a link preview.
	URL string
}

func (m Mention) format() map[string]interface{} {
	var body map[string]interface{}
	switch m.Kind {
	case MentionUser:
		body = map[string]interface{}{"object": "user", "id": m.ID}
	case MentionDate:
		body = map[string]interface{}{"start": m.Start}
		if m.End != "" {
			body["end"] = m.End
		}
	case MentionLinkPreview:
		body = map[string]interface{}{"url": m.URL}
	default:
		body = map[string]interface{}{"id": m.ID}
	}
	return map[string]interface{}{
		"type":         string(m.Kind),
		string(m.Kind): body,
	}
}

// RichText is one run of inline content. Exactly one payload is set,
// selected by Kind; runs are built with the constructors below.
type RichText struct {
	kind        RunKind
	content     string
	link        string
	mention     Mention
	annotations Annotations
}

// Text returns a plain text run.
func Text(content string) RichText {
	return RichText{kind: RunText, content: content}
}

// StyledText returns a text run with the given style.
func StyledText(content string, style Annotations) RichText {
	return RichText{kind: RunText, content: content, annotations: style}
}

// Link returns a text run that links to url.
func Link(content, url string) RichText {
	return RichText{kind: RunText, content: content, link: url}
}

// InlineCode returns a code-styled run.
func InlineCode(content string) RichText {
	return RichText{kind: RunText, content: content, annotations: Annotations{Code: true, Color: ColorRed}}
}

// MentionRun returns a mention run.
func MentionRun(m Mention) RichText {
	if m.Kind == MentionPage || m.Kind == MentionUser || m.Kind == MentionDatabase {
		m.ID = NormalizeID(m.ID)
	}
	return RichText{kind: RunMention, mention: m}
}

// PageMentionRun returns a mention of the page with the given ID.
func PageMentionRun(pageID string) RichText {
	return MentionRun(Mention{Kind: MentionPage, ID: pageID})
}

// InlineEquation returns an equation run.
func InlineEquation(expression string) RichText {
	return RichText{kind: RunEquation, content: expression}
}

// Kind reports which payload the run carries.
func (r RichText) Kind() RunKind { return r.kind }

// Content is the text of a text run or the expression of an equation run.
func (r RichText) Content() string { return r.content }

// URL is the link target of a text run, empty when unlinked.
func (r RichText) URL() string { return r.link }

// Mention returns the mention payload and whether the run is a mention.
func (r RichText) Mention() (Mention, bool) { return r.mention, r.kind == RunMention }

// Annotations returns the style of a text run.
func (r RichText) Annotations() Annotations { return r.annotations }

// PlainText is the visible text of the run.
func (r RichText) PlainText() string {
	if r.kind == RunMention {
		switch r.mention.Kind {
		case MentionDate:
			return r.mention.Start
		case MentionLinkPreview:
			return r.mention.URL
		default:
			return r.mention.ID
		}
	}
	return r.content
}

// Format returns the wire record of the run.
func (r RichText) Format() map[string]interface{} {
	switch r.kind {
	case RunMention:
		return map[string]interface{}{
			"type":    "mention",
			"mention": r.mention.format(),
		}
	case RunEquation:
		return map[string]interface{}{
			"type":     "equation",
			"equation": map[string]interface{}{"expression": r.content},
		}
	default:
		text := map[string]interface{}{"content": r.content}
		if r.link != "" {
			text["link"] = map[string]interface{}{"url": r.link}
		}
		return map[string]interface{}{
			"type":        "text",
			"text":        text,
			"annotations": r.annotations.format(),
		}
	}
}

// FormatRuns formats a run sequence, never returning nil.
func FormatRuns(runs []RichText) []interface{} {
	out := make([]interface{}, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Format())
	}
	return out
}

// NormalizeID rewrites a 32-hex or dashed ID, or a URL ending in one, into
// the canonical dashed form. Anything else is returned trimmed and unchanged.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	candidate := id
	if i := strings.IndexAny(candidate, "?#"); i >= 0 {
		candidate = candidate[:i]
	}
	candidate = strings.TrimRight(candidate, "/")
	if len(candidate) >= 32 {
		if parsed, err := uuid.Parse(candidate[len(candidate)-32:]); err == nil {
			return parsed.String()
		}
	}
	return id
}
