package blocks

// Option configures a block built by one of the constructors below.
// Options that do not apply to a variant are ignored.
type Option func(*options)

type options struct {
	children   []Block
	color      Color
	style      Annotations
	link       string
	toggleable *bool
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithChildren nests blocks under a container block.
func WithChildren(children ...Block) Option {
	return func(o *options) { o.children = append(o.children, children...) }
}

// WithColor sets the block color.
func WithColor(c Color) Option {
	return func(o *options) { o.color = c }
}

// WithStyle styles the single run of a plain-content constructor.
func WithStyle(style Annotations) Option {
	return func(o *options) { o.style = style }
}

// WithLink links the single run of a plain-content constructor.
func WithLink(url string) Option {
	return func(o *options) { o.link = url }
}

// Toggleable marks a heading as collapsible.
func Toggleable(v bool) Option {
	return func(o *options) { o.toggleable = &v }
}

func (o options) plainRun(content string) []RichText {
	r := StyledText(content, o.style)
	r.link = o.link
	return []RichText{r}
}

func (o options) text(runs []RichText) textContent {
	return textContent{RichText: runs, Color: o.color, Nested: o.children}
}

// Paragraph builds a paragraph holding one plain run.
func Paragraph(content string, opts ...Option) *ParagraphBlock {
	o := buildOptions(opts)
	return &ParagraphBlock{o.text(o.plainRun(content))}
}

// ParagraphRich builds a paragraph from prepared runs.
func ParagraphRich(runs []RichText, opts ...Option) *ParagraphBlock {
	return &ParagraphBlock{buildOptions(opts).text(runs)}
}

// BulletedListItem builds a bulleted list item holding one plain run.
func BulletedListItem(content string, opts ...Option) *BulletedListItemBlock {
	o := buildOptions(opts)
	return &BulletedListItemBlock{o.text(o.plainRun(content))}
}

// BulletedListItemRich builds a bulleted list item from prepared runs.
func BulletedListItemRich(runs []RichText, opts ...Option) *BulletedListItemBlock {
	return &BulletedListItemBlock{buildOptions(opts).text(runs)}
}

// NumberedListItem builds a numbered list item holding one plain run.
func NumberedListItem(content string, opts ...Option) *NumberedListItemBlock {
	o := buildOptions(opts)
	return &NumberedListItemBlock{o.text(o.plainRun(content))}
}

// NumberedListItemRich builds a numbered list item from prepared runs.
func NumberedListItemRich(runs []RichText, opts ...Option) *NumberedListItemBlock {
	return &NumberedListItemBlock{buildOptions(opts).text(runs)}
}

// Quote builds a quote holding one plain run.
func Quote(content string, opts ...Option) *QuoteBlock {
	o := buildOptions(opts)
	return &QuoteBlock{o.text(o.plainRun(content))}
}

// ToDo builds a checklist item holding one plain run.
func ToDo(content string, checked bool, opts ...Option) *ToDoBlock {
	o := buildOptions(opts)
	return &ToDoBlock{textContent: o.text(o.plainRun(content)), Checked: checked}
}

// Toggle builds a toggle holding one plain run.
func Toggle(content string, opts ...Option) *ToggleBlock {
	o := buildOptions(opts)
	return &ToggleBlock{o.text(o.plainRun(content))}
}

// Heading builds a heading of the given level (clamped to 1..3) holding
// one unstyled run.
func Heading(level int, content string, opts ...Option) *HeadingBlock {
	o := buildOptions(opts)
	switch {
	case level < 1:
		level = 1
	case level > 3:
		level = 3
	}
	return &HeadingBlock{Level: level, RichText: []RichText{Text(content)}, Color: o.color, Toggleable: o.toggleable}
}

// Heading1 builds a top-level heading.
func Heading1(content string, opts ...Option) *HeadingBlock { return Heading(1, content, opts...) }

// Heading2 builds a second-level heading.
func Heading2(content string, opts ...Option) *HeadingBlock { return Heading(2, content, opts...) }

// Heading3 builds a third-level heading.
func Heading3(content string, opts ...Option) *HeadingBlock { return Heading(3, content, opts...) }

// Code builds a code block. caption may be empty.
func Code(content, language, caption string) *CodeBlock {
	return &CodeBlock{Content: content, Language: language, Caption: caption}
}

// Equation builds a display equation.
func Equation(expression string) *EquationBlock {
	return &EquationBlock{Expression: expression}
}

// Bookmark builds a bookmark. caption may be empty.
func Bookmark(url, caption string) *BookmarkBlock {
	return &BookmarkBlock{URL: url, Caption: caption}
}

// Embed builds an embed.
func Embed(url string) *EmbedBlock {
	return &EmbedBlock{URL: url}
}

// File attaches a hosted file.
func File(url, name string) *FileBlock {
	return &FileBlock{URL: url, Name: name}
}

// ExternalFile attaches a file by external URL.
func ExternalFile(url, name string) *FileBlock {
	return &FileBlock{URL: url, External: true, Name: name}
}

// Divider builds a divider.
func Divider() *DividerBlock { return &DividerBlock{} }

// Breadcrumb builds a breadcrumb.
func Breadcrumb() *BreadcrumbBlock { return &BreadcrumbBlock{} }

// PageMention builds a paragraph that mentions a page.
func PageMention(pageID string) *ParagraphBlock {
	return ParagraphRich([]RichText{PageMentionRun(pageID)})
}

// UserMention builds a paragraph that mentions a user.
func UserMention(userID string) *ParagraphBlock {
	return ParagraphRich([]RichText{MentionRun(Mention{Kind: MentionUser, ID: userID})})
}

// DateMention builds a paragraph that mentions a date (YYYY-MM-DD).
func DateMention(date string) *ParagraphBlock {
	return ParagraphRich([]RichText{MentionRun(Mention{Kind: MentionDate, Start: date})})
}
