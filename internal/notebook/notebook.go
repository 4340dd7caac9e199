// Package notebook pulls exportable cells out of a Jupyter notebook.
package notebook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

// Marker is the source of the markdown cell that starts the exported part
// of a notebook. Cells before it are ignored.
const Marker = "# ToNotion"

// OutputLanguage and OutputCaption label code blocks made from cell output.
const (
	OutputLanguage = "plain text"
	OutputCaption  = "output"
)

// ErrInvalidNotebook is returned when the input is not notebook JSON.
var ErrInvalidNotebook = errors.New("invalid notebook")

// CellType is the origin of an extracted cell.
type CellType string

const (
	CellMarkdown CellType = "markdown"
	CellOutput   CellType = "output"
)

// Cell is one exportable piece of a notebook.
type Cell struct {
	Type     CellType `json:"type"`
	MIMEType string   `json:"mime_type"`
	// Text holds markdown or text output.
	Text string `json:"text,omitempty"`
	// Data holds base64 image data for image outputs.
	Data string `json:"-"`
}

// IsImage reports whether the cell is an image output.
func (c Cell) IsImage() bool {
	return c.Type == CellOutput && strings.HasPrefix(c.MIMEType, "image/")
}

// Extract returns the markdown cells and code outputs that follow the
// marker cell. A notebook without the marker yields no cells.
func Extract(data []byte) ([]Cell, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidNotebook)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidNotebook)
	}

	var cells []Cell
	started := false
	doc.Get("cells").ForEach(func(_, cell gjson.Result) bool {
		switch cell.Get("cell_type").String() {
		case "markdown":
			source := joinText(cell.Get("source"))
			if source == "" {
				return true
			}
			if !started {
				started = source == Marker
				return true
			}
			cells = append(cells, Cell{Type: CellMarkdown, MIMEType: "text/markdown", Text: source})
		case "code":
			if !started {
				return true
			}
			cell.Get("outputs").ForEach(func(_, output gjson.Result) bool {
				if c, ok := outputCell(output); ok {
					cells = append(cells, c)
				}
				return true
			})
		}
		return true
	})
	return cells, nil
}

// outputCell picks the content of one code output. Images are preferred
// over text for execute results; display data only carries images.
func outputCell(output gjson.Result) (Cell, bool) {
	data := output.Get("data")
	var c Cell
	switch output.Get("output_type").String() {
	case "stream":
		c = Cell{Type: CellOutput, MIMEType: "text/plain", Text: joinText(output.Get("text"))}
	case "execute_result":
		mime, ok := firstImage(data)
		if ok {
			c = Cell{Type: CellOutput, MIMEType: mime, Data: joinText(data.Get(mime))}
		} else {
			c = Cell{Type: CellOutput, MIMEType: "text/plain", Text: joinText(data.Get("text/plain"))}
		}
	case "display_data":
		mime, ok := firstImage(data)
		if !ok {
			return Cell{}, false
		}
		c = Cell{Type: CellOutput, MIMEType: mime, Data: joinText(data.Get(mime))}
	default:
		return Cell{}, false
	}
	if c.Text == "" && c.Data == "" {
		return Cell{}, false
	}
	return c, true
}

func firstImage(data gjson.Result) (string, bool) {
	for _, mime := range []string{"image/jpeg", "image/png"} {
		if data.Get(mime).Exists() {
			return mime, true
		}
	}
	return "", false
}

// joinText accepts the notebook's multiline form (a list of strings) or a
// plain string.
func joinText(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var sb strings.Builder
	for _, part := range v.Array() {
		sb.WriteString(part.String())
	}
	return sb.String()
}

// ToBlocks converts cells into blocks. Markdown goes through the compiler,
// text output becomes a captioned code block, and images are skipped with a
// single warning since there is nowhere to upload them.
func ToBlocks(cells []Cell, log zerolog.Logger) ([]blocks.Block, error) {
	var out []blocks.Block
	warned := false
	for i, cell := range cells {
		switch {
		case cell.Type == CellMarkdown:
			compiled, err := blocks.FromMarkdown(cell.Text)
			if err != nil {
				return nil, fmt.Errorf("cell %d: %w", i+1, err)
			}
			out = append(out, compiled...)
		case cell.IsImage():
			if !warned {
				log.Warn().Str("mime_type", cell.MIMEType).Msg("image outputs are not uploaded and will be skipped")
				warned = true
			}
		default:
			out = append(out, blocks.Code(cell.Text, OutputLanguage, OutputCaption))
		}
	}
	return out, nil
}
