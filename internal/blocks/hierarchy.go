package blocks

// Group is a contiguous run of lines that starts at a top-level line and
// holds every deeper line that follows it.
type Group []RawLine

// BlockGroup is one node of the tree built from a group.
type BlockGroup struct {
	Kind        Kind          `json:"kind"`
	Text        string        `json:"text"`
	IndentLevel int           `json:"indent_level"`
	Children    []*BlockGroup `json:"children,omitempty"`
}

// GroupLines splits classified lines into top-level groups. Every line at
// indent level 0 starts a new group. When the input opens with indented
// lines, the first of them starts a group of its own so nothing is dropped.
func GroupLines(lines []RawLine) []Group {
	var groups []Group
	var current Group

	for _, line := range lines {
		if line.IndentLevel == 0 || current == nil {
			if current != nil {
				groups = append(groups, current)
			}
			current = Group{line}
			continue
		}
		current = append(current, line)
	}
	if current != nil {
		groups = append(groups, current)
	}
	return groups
}

type stackEntry struct {
	indent int
	node   *BlockGroup
}

// BuildHierarchy turns a group into a tree rooted at the group's first line.
//
// The stack holds the current chain of ancestors. Entries at the same or a
// deeper indent than the incoming line are popped, so a line only nests under
// a strictly shallower one and equal-indent lines become siblings. The root
// is never popped: a later line that is not deeper than the root (possible
// only in a group that opened with indentation) is attached to the root.
func BuildHierarchy(group Group) *BlockGroup {
	if len(group) == 0 {
		return nil
	}

	root := &BlockGroup{Kind: group[0].Kind, Text: group[0].Text, IndentLevel: group[0].IndentLevel}
	stack := []stackEntry{{indent: root.IndentLevel, node: root}}

	for _, line := range group[1:] {
		node := &BlockGroup{Kind: line.Kind, Text: line.Text, IndentLevel: line.IndentLevel}

		for len(stack) > 1 && stack[len(stack)-1].indent >= line.IndentLevel {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{indent: line.IndentLevel, node: node})
	}

	return root
}

// Parse runs classification, grouping and tree building and returns one tree
// per top-level group.
func Parse(markdown string) []*BlockGroup {
	groups := GroupLines(Classify(markdown))
	trees := make([]*BlockGroup, 0, len(groups))
	for _, group := range groups {
		trees = append(trees, BuildHierarchy(group))
	}
	return trees
}
