package blocks

import "fmt"

// Kind is the block kind a markdown line is classified as.
type Kind int

const (
	KindHeading1 Kind = iota + 1
	KindHeading2
	KindHeading3
	KindBulletedListItem
	KindNumberedListItem
	KindParagraph
	KindCode
	KindEquation
)

var kindNames = map[Kind]string{
	KindHeading1:         "heading_1",
	KindHeading2:         "heading_2",
	KindHeading3:         "heading_3",
	KindBulletedListItem: "bulleted_list_item",
	KindNumberedListItem: "numbered_list_item",
	KindParagraph:        "paragraph",
	KindCode:             "code",
	KindEquation:         "equation",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the kinds the classifier produces.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText encodes the kind by name so trees dump readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// headingKind maps a count of '#' markers to a heading kind.
// Levels deeper than three are clamped to heading_3.
func headingKind(level int) Kind {
	switch {
	case level <= 1:
		return KindHeading1
	case level == 2:
		return KindHeading2
	default:
		return KindHeading3
	}
}
