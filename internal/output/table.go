package output

import (
	"fmt"
	"reflect"
	"sort"
	"text/tabwriter"
)

// Table is a pre-rendered table. Commands build one when the natural
// columns of their data are not the fields of a struct.
type Table struct {
	Headers []string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (p *Printer) printTable(data interface{}) error {
	if table, ok := data.(Table); ok {
		return p.writeTable(table.Headers, table.Rows)
	}

	v := indirect(reflect.ValueOf(data))
	if !v.IsValid() {
		return nil
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Errorf("table format requires a list of items")
	}
	if v.Len() == 0 {
		return nil
	}

	headers, rows := buildTable(v)
	return p.writeTable(headers, rows)
}

func (p *Printer) writeTable(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	writeRow(w, headers)
	for _, row := range rows {
		writeRow(w, row)
	}
	return w.Flush()
}

func writeRow(w *tabwriter.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

// buildTable derives columns from the first item: struct fields in
// declaration order, or sorted keys for string-keyed maps. Anything else
// gets a single value column.
func buildTable(v reflect.Value) ([]string, [][]string) {
	first := indirect(v.Index(0))
	rows := make([][]string, 0, v.Len())

	switch {
	case first.Kind() == reflect.Struct:
		fields := structFields(first.Type())
		headers := make([]string, len(fields))
		for i, f := range fields {
			headers[i] = f.name
		}
		for i := 0; i < v.Len(); i++ {
			item := indirect(v.Index(i))
			row := make([]string, len(fields))
			if item.Kind() == reflect.Struct && item.Type() == first.Type() {
				for j, f := range fields {
					row[j] = textValue(item.Field(f.index))
				}
			}
			rows = append(rows, row)
		}
		return headers, rows

	case first.Kind() == reflect.Map && first.Type().Key().Kind() == reflect.String:
		headers := make([]string, 0, first.Len())
		for _, k := range first.MapKeys() {
			headers = append(headers, k.String())
		}
		sort.Strings(headers)
		for i := 0; i < v.Len(); i++ {
			item := indirect(v.Index(i))
			row := make([]string, len(headers))
			if item.Kind() == reflect.Map {
				for j, h := range headers {
					if cell := item.MapIndex(reflect.ValueOf(h)); cell.IsValid() {
						row[j] = textValue(cell)
					}
				}
			}
			rows = append(rows, row)
		}
		return headers, rows
	}

	for i := 0; i < v.Len(); i++ {
		rows = append(rows, []string{textValue(v.Index(i))})
	}
	return []string{"value"}, rows
}
