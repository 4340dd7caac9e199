package blocks

// Block is one typed document block. The set of implementations is closed;
// each formats its own variant fields.
type Block interface {
	// Type is the variant name used as the wire tag.
	Type() string
	fields() map[string]interface{}
}

// Parent is implemented by container variants, the only blocks that may
// carry children.
type Parent interface {
	Block
	Children() []Block
}

// Text content shared by the container variants.
type textContent struct {
	RichText []RichText
	Color    Color
	Nested   []Block
}

func (t textContent) Children() []Block { return t.Nested }

func (t textContent) baseFields() map[string]interface{} {
	return map[string]interface{}{
		"rich_text": FormatRuns(t.RichText),
		"color":     string(t.Color.orDefault()),
	}
}

// ParagraphBlock is a paragraph.
type ParagraphBlock struct{ textContent }

func (b *ParagraphBlock) Type() string                   { return "paragraph" }
func (b *ParagraphBlock) fields() map[string]interface{} { return b.baseFields() }

// BulletedListItemBlock is a bulleted list item.
type BulletedListItemBlock struct{ textContent }

func (b *BulletedListItemBlock) Type() string                   { return "bulleted_list_item" }
func (b *BulletedListItemBlock) fields() map[string]interface{} { return b.baseFields() }

// NumberedListItemBlock is a numbered list item.
type NumberedListItemBlock struct{ textContent }

func (b *NumberedListItemBlock) Type() string                   { return "numbered_list_item" }
func (b *NumberedListItemBlock) fields() map[string]interface{} { return b.baseFields() }

// QuoteBlock is a block quote.
type QuoteBlock struct{ textContent }

func (b *QuoteBlock) Type() string                   { return "quote" }
func (b *QuoteBlock) fields() map[string]interface{} { return b.baseFields() }

// ToggleBlock is a collapsible block.
type ToggleBlock struct{ textContent }

func (b *ToggleBlock) Type() string                   { return "toggle" }
func (b *ToggleBlock) fields() map[string]interface{} { return b.baseFields() }

// ToDoBlock is a checklist item.
type ToDoBlock struct {
	textContent
	Checked bool
}

func (b *ToDoBlock) Type() string { return "to_do" }
func (b *ToDoBlock) fields() map[string]interface{} {
	f := b.baseFields()
	f["checked"] = b.Checked
	return f
}

// HeadingBlock is a heading of level 1 to 3.
type HeadingBlock struct {
	Level      int
	RichText   []RichText
	Color      Color
	Toggleable *bool
}

func (b *HeadingBlock) Type() string {
	switch b.Level {
	case 1:
		return "heading_1"
	case 2:
		return "heading_2"
	default:
		return "heading_3"
	}
}

func (b *HeadingBlock) fields() map[string]interface{} {
	f := map[string]interface{}{
		"rich_text": FormatRuns(b.RichText),
		"color":     string(b.Color.orDefault()),
	}
	if b.Toggleable != nil {
		f["is_toggleable"] = *b.Toggleable
	}
	return f
}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Content  string
	Language string
	Caption  string
}

func (b *CodeBlock) Type() string { return "code" }
func (b *CodeBlock) fields() map[string]interface{} {
	f := map[string]interface{}{
		"rich_text": FormatRuns([]RichText{Text(b.Content)}),
		"language":  b.Language,
	}
	if b.Caption != "" {
		f["caption"] = FormatRuns([]RichText{Text(b.Caption)})
	}
	return f
}

// EquationBlock is a display equation.
type EquationBlock struct{ Expression string }

func (b *EquationBlock) Type() string { return "equation" }
func (b *EquationBlock) fields() map[string]interface{} {
	return map[string]interface{}{"expression": b.Expression}
}

// BookmarkBlock is a link bookmark.
type BookmarkBlock struct {
	URL     string
	Caption string
}

func (b *BookmarkBlock) Type() string { return "bookmark" }
func (b *BookmarkBlock) fields() map[string]interface{} {
	f := map[string]interface{}{"url": b.URL}
	if b.Caption != "" {
		f["caption"] = FormatRuns([]RichText{Text(b.Caption)})
	}
	return f
}

// EmbedBlock embeds external content by URL.
type EmbedBlock struct{ URL string }

func (b *EmbedBlock) Type() string { return "embed" }
func (b *EmbedBlock) fields() map[string]interface{} {
	return map[string]interface{}{"url": b.URL}
}

// FileBlock attaches a file, either hosted or linked externally.
type FileBlock struct {
	URL      string
	External bool
	Name     string
}

func (b *FileBlock) Type() string { return "file" }
func (b *FileBlock) fields() map[string]interface{} {
	source := "file"
	if b.External {
		source = "external"
	}
	f := map[string]interface{}{
		"type": source,
		source: map[string]interface{}{"url": b.URL},
	}
	if b.Name != "" {
		f["name"] = b.Name
	}
	return f
}

// DividerBlock is a horizontal rule.
type DividerBlock struct{}

func (b *DividerBlock) Type() string                   { return "divider" }
func (b *DividerBlock) fields() map[string]interface{} { return map[string]interface{}{} }

// BreadcrumbBlock shows the page's ancestry.
type BreadcrumbBlock struct{}

func (b *BreadcrumbBlock) Type() string                   { return "breadcrumb" }
func (b *BreadcrumbBlock) fields() map[string]interface{} { return map[string]interface{}{} }

var (
	_ Parent = (*ParagraphBlock)(nil)
	_ Parent = (*BulletedListItemBlock)(nil)
	_ Parent = (*NumberedListItemBlock)(nil)
	_ Parent = (*QuoteBlock)(nil)
	_ Parent = (*ToggleBlock)(nil)
	_ Parent = (*ToDoBlock)(nil)
)
