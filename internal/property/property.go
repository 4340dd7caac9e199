// Package property builds the property values sent with a new database page.
package property

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

// ErrInvalidProperty is returned when a property flag cannot be parsed.
var ErrInvalidProperty = errors.New("invalid property")

// Property is one named database property value.
type Property interface {
	// Key is the property name in the database schema.
	Key() string
	// Value is the typed value record, e.g. {"checkbox": true}.
	Value() map[string]interface{}
}

// Title is the page title property.
type Title struct {
	Name    string
	Content string
}

func (p Title) Key() string { return p.Name }
func (p Title) Value() map[string]interface{} {
	return map[string]interface{}{"title": blocks.FormatRuns([]blocks.RichText{blocks.Text(p.Content)})}
}

// Status selects a status option by name.
type Status struct {
	Name   string
	Option string
}

func (p Status) Key() string { return p.Name }
func (p Status) Value() map[string]interface{} {
	return map[string]interface{}{"status": map[string]interface{}{"name": p.Option}}
}

// Description is a rich text property. Its text goes through the inline
// tokenizer, so links, code and mentions are kept.
type Description struct {
	Name    string
	Content string
}

func (p Description) Key() string { return p.Name }
func (p Description) Value() map[string]interface{} {
	return map[string]interface{}{"rich_text": blocks.FormatRuns(blocks.Tokenize(p.Content))}
}

// Checkbox is a boolean property.
type Checkbox struct {
	Name    string
	Checked bool
}

func (p Checkbox) Key() string { return p.Name }
func (p Checkbox) Value() map[string]interface{} {
	return map[string]interface{}{"checkbox": p.Checked}
}

// Select picks one option by name.
type Select struct {
	Name   string
	Option string
}

func (p Select) Key() string { return p.Name }
func (p Select) Value() map[string]interface{} {
	return map[string]interface{}{"select": map[string]interface{}{"name": p.Option}}
}

// MultiSelect picks any number of options by name.
type MultiSelect struct {
	Name    string
	Options []string
}

func (p MultiSelect) Key() string { return p.Name }
func (p MultiSelect) Value() map[string]interface{} {
	options := make([]interface{}, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, map[string]interface{}{"name": o})
	}
	return map[string]interface{}{"multi_select": options}
}

// URL is a link property.
type URL struct {
	Name string
	Link string
}

func (p URL) Key() string { return p.Name }
func (p URL) Value() map[string]interface{} {
	return map[string]interface{}{"url": p.Link}
}

// Date is a date or date range. End is optional.
type Date struct {
	Name  string
	Start string
	End   string
}

func (p Date) Key() string { return p.Name }
func (p Date) Value() map[string]interface{} {
	date := map[string]interface{}{"start": p.Start}
	if p.End != "" {
		date["end"] = p.End
	}
	return map[string]interface{}{"date": date}
}

// People references workspace users by ID.
type People struct {
	Name    string
	UserIDs []string
}

func (p People) Key() string { return p.Name }
func (p People) Value() map[string]interface{} {
	people := make([]interface{}, 0, len(p.UserIDs))
	for _, id := range p.UserIDs {
		people = append(people, map[string]interface{}{"object": "user", "id": blocks.NormalizeID(id)})
	}
	return map[string]interface{}{"people": people}
}

// Format merges properties into the name-keyed map expected by page
// creation. A later property with the same name replaces an earlier one.
func Format(props ...Property) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for _, p := range props {
		out[p.Key()] = p.Value()
	}
	return out
}

// Types lists the type names accepted by ParseFlag.
var Types = []string{"title", "status", "text", "checkbox", "select", "multi_select", "url", "date", "people"}

// ParseFlag parses "Name=type:value". Lists (multi_select, people) are
// comma separated and a date range is written "start/end".
func ParseFlag(raw string) (Property, error) {
	name, rest, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w %q: expected Name=type:value", ErrInvalidProperty, raw)
	}
	kind, value, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("%w %q: missing type (one of %s)", ErrInvalidProperty, raw, strings.Join(Types, ", "))
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "title":
		return Title{Name: name, Content: value}, nil
	case "status":
		return Status{Name: name, Option: value}, nil
	case "text", "rich_text", "description":
		return Description{Name: name, Content: value}, nil
	case "checkbox":
		checked, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w %q: checkbox wants true or false", ErrInvalidProperty, raw)
		}
		return Checkbox{Name: name, Checked: checked}, nil
	case "select":
		return Select{Name: name, Option: value}, nil
	case "multi_select":
		return MultiSelect{Name: name, Options: splitList(value)}, nil
	case "url":
		return URL{Name: name, Link: value}, nil
	case "date":
		start, end, _ := strings.Cut(value, "/")
		if start == "" {
			return nil, fmt.Errorf("%w %q: date needs a start", ErrInvalidProperty, raw)
		}
		return Date{Name: name, Start: start, End: end}, nil
	case "people":
		return People{Name: name, UserIDs: splitList(value)}, nil
	}
	return nil, fmt.Errorf("%w %q: unknown type %q", ErrInvalidProperty, raw, kind)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
