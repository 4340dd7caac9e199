package blocks

import (
	"errors"
	"fmt"
	"strings"
)

// CodeLanguage is the language tag given to fenced code from markdown.
const CodeLanguage = "python"

var (
	// ErrUnknownKind is returned for a node whose kind has no block variant.
	ErrUnknownKind = errors.New("unknown block kind")
	// ErrLeafWithChildren is returned when lines are nested under a kind
	// that cannot hold children (headings, code, equations).
	ErrLeafWithChildren = errors.New("block kind cannot have children")
)

// Materialize converts a tree node into a block, children first. Nodes with
// children become rich container blocks whose text is tokenized; leaves use
// the simple constructors.
func Materialize(node *BlockGroup) (Block, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: nil node", ErrUnknownKind)
	}
	if !node.Kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, node.Kind)
	}

	if len(node.Children) > 0 {
		return materializeContainer(node)
	}

	switch node.Kind {
	case KindHeading1:
		return Heading1(node.Text), nil
	case KindHeading2:
		return Heading2(node.Text), nil
	case KindHeading3:
		return Heading3(node.Text), nil
	case KindEquation:
		return Equation(strings.TrimSpace(node.Text)), nil
	case KindCode:
		return Code(strings.TrimSpace(node.Text), CodeLanguage, ""), nil
	case KindParagraph:
		return ParagraphRich(Tokenize(node.Text)), nil
	case KindBulletedListItem:
		return BulletedListItemRich(Tokenize(node.Text)), nil
	case KindNumberedListItem:
		return NumberedListItemRich(Tokenize(node.Text)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, node.Kind)
}

func materializeContainer(node *BlockGroup) (Block, error) {
	switch node.Kind {
	case KindParagraph, KindBulletedListItem, KindNumberedListItem:
	case KindHeading1, KindHeading2, KindHeading3, KindCode, KindEquation:
		return nil, fmt.Errorf("%w: %s %q has %d nested line(s)", ErrLeafWithChildren, node.Kind, node.Text, len(node.Children))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, node.Kind)
	}

	children := make([]Block, 0, len(node.Children))
	for _, child := range node.Children {
		block, err := Materialize(child)
		if err != nil {
			return nil, err
		}
		children = append(children, block)
	}

	runs := Tokenize(node.Text)
	switch node.Kind {
	case KindBulletedListItem:
		return BulletedListItemRich(runs, WithChildren(children...)), nil
	case KindNumberedListItem:
		return NumberedListItemRich(runs, WithChildren(children...)), nil
	default:
		return ParagraphRich(runs, WithChildren(children...)), nil
	}
}

// FromMarkdown compiles markdown into top-level blocks. Conversion is all or
// nothing: the first failing tree aborts it.
func FromMarkdown(markdown string) ([]Block, error) {
	trees := Parse(markdown)
	out := make([]Block, 0, len(trees))
	for i, tree := range trees {
		block, err := Materialize(tree)
		if err != nil {
			return nil, fmt.Errorf("top-level block %d: %w", i+1, err)
		}
		out = append(out, block)
	}
	return out, nil
}
