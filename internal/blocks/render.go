package blocks

import (
	"strings"

	"github.com/tidwall/gjson"
)

// RenderMarkdown converts a JSON array of block records back into markdown.
// Children are read from a record's top-level "children" (as fetched
// recursively from the API) or from its variant content (as produced by
// Format). Unsupported variants are skipped along with their subtree.
func RenderMarkdown(records []byte) string {
	var sb strings.Builder
	gjson.ParseBytes(records).ForEach(func(_, block gjson.Result) bool {
		renderBlock(&sb, block, 0)
		return true
	})
	return sb.String()
}

func renderBlock(sb *strings.Builder, block gjson.Result, depth int) {
	kind := block.Get("type").String()
	content := block.Get(kind)
	indent := strings.Repeat("  ", depth)
	text := renderRuns(content.Get("rich_text"))

	switch kind {
	case "heading_1":
		writeLine(sb, indent, "# "+text)
	case "heading_2":
		writeLine(sb, indent, "## "+text)
	case "heading_3":
		writeLine(sb, indent, "### "+text)
	case "paragraph":
		writeLine(sb, indent, text)
	case "bulleted_list_item":
		writeLine(sb, indent, "- "+text)
	case "numbered_list_item":
		writeLine(sb, indent, "1. "+text)
	case "to_do":
		box := "[ ]"
		if content.Get("checked").Bool() {
			box = "[x]"
		}
		writeLine(sb, indent, "- "+box+" "+text)
	case "quote":
		writeLine(sb, indent, "> "+text)
	case "toggle":
		writeLine(sb, indent, "<details>")
		writeLine(sb, indent, "<summary>"+text+"</summary>")
	case "code":
		writeLine(sb, indent, "```"+content.Get("language").String())
		for _, line := range strings.Split(plainRuns(content.Get("rich_text")), "\n") {
			writeLine(sb, indent, line)
		}
		writeLine(sb, indent, "```")
	case "equation":
		writeLine(sb, indent, "$$")
		writeLine(sb, indent, content.Get("expression").String())
		writeLine(sb, indent, "$$")
	case "bookmark":
		writeLine(sb, indent, "[bookmark]("+content.Get("url").String()+")")
	case "embed":
		writeLine(sb, indent, "[embed]("+content.Get("url").String()+")")
	case "divider":
		writeLine(sb, indent, "---")
	default:
		return
	}

	children := block.Get(ChildrenKey)
	if !children.Exists() {
		children = content.Get(ChildrenKey)
	}
	children.ForEach(func(_, child gjson.Result) bool {
		renderBlock(sb, child, depth+1)
		return true
	})

	if kind == "toggle" {
		writeLine(sb, indent, "</details>")
	}
	if depth == 0 {
		sb.WriteString("\n")
	}
}

func writeLine(sb *strings.Builder, indent, line string) {
	if line != "" {
		sb.WriteString(indent)
	}
	sb.WriteString(line)
	sb.WriteString("\n")
}

// renderRuns turns runs back into the inline markdown dialect.
func renderRuns(runs gjson.Result) string {
	var sb strings.Builder
	runs.ForEach(func(_, run gjson.Result) bool {
		switch run.Get("type").String() {
		case "mention":
			mention := run.Get("mention")
			switch mention.Get("type").String() {
			case "page":
				sb.WriteString("[page_mention:" + mention.Get("page.id").String() + "]")
			case "link_preview":
				sb.WriteString("[link_preview](" + mention.Get("link_preview.url").String() + ")")
			default:
				sb.WriteString(runPlainText(run))
			}
		case "equation":
			sb.WriteString("$" + run.Get("equation.expression").String() + "$")
		default:
			content := runPlainText(run)
			switch {
			case run.Get("annotations.code").Bool():
				sb.WriteString("`" + content + "`")
			case run.Get("text.link.url").String() != "":
				sb.WriteString("[" + content + "](" + run.Get("text.link.url").String() + ")")
			default:
				sb.WriteString(content)
			}
		}
		return true
	})
	return sb.String()
}

func plainRuns(runs gjson.Result) string {
	var sb strings.Builder
	runs.ForEach(func(_, run gjson.Result) bool {
		sb.WriteString(runPlainText(run))
		return true
	})
	return sb.String()
}

// runPlainText prefers the server-computed plain_text and falls back to
// the payload of locally formatted runs.
func runPlainText(run gjson.Result) string {
	if pt := run.Get("plain_text"); pt.Exists() {
		return pt.String()
	}
	switch run.Get("type").String() {
	case "equation":
		return run.Get("equation.expression").String()
	case "mention":
		m := run.Get("mention")
		kind := m.Get("type").String()
		switch kind {
		case "date":
			return m.Get("date.start").String()
		case "link_preview":
			return m.Get("link_preview.url").String()
		default:
			return m.Get(kind + ".id").String()
		}
	default:
		return run.Get("text.content").String()
	}
}
