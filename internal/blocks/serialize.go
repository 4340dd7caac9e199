package blocks

// ChildrenKey is the variant field that holds nested blocks.
const ChildrenKey = "children"

// FormatBlock returns the wire record of a block and, recursively, of its
// children. The children key is written only for containers that have
// children; leaf variants never carry it.
func FormatBlock(b Block) map[string]interface{} {
	content := b.fields()
	if p, ok := b.(Parent); ok {
		if children := p.Children(); len(children) > 0 {
			content[ChildrenKey] = Format(children)
		}
	}
	return map[string]interface{}{
		"object": "block",
		"type":   b.Type(),
		b.Type(): content,
	}
}

// Format returns the wire records of blocks in order, never nil.
func Format(blocks []Block) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, FormatBlock(b))
	}
	return out
}

// Count returns the number of blocks including all descendants.
func Count(blocks []Block) int {
	n := len(blocks)
	for _, b := range blocks {
		if p, ok := b.(Parent); ok {
			n += Count(p.Children())
		}
	}
	return n
}
