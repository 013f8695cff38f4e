package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"
)

// Formatter writes command results in one output format
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data any) error
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact enables compact output (no indentation for JSON/YAML)
	Compact bool
	// JSONKeys makes the YAML formatter name keys after json tags, for
	// types such as job payloads that carry no yaml tags.
	JSONKeys bool
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{Writer: os.Stdout}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "text", "":
		return &TextFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data any) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data any) error {
	if f.opts.JSONKeys {
		generic, err := viaJSON(data)
		if err != nil {
			return err
		}
		data = generic
	}

	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter formats output as human-readable text. Strings and
// Stringers print as is; structs and maps print as a FIELD/VALUE table of
// their non-empty JSON fields.
type TextFormatter struct {
	opts *FormatterOptions
}

// Format writes data as formatted text
func (f *TextFormatter) Format(data any) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	}

	if !isRecord(data) {
		return fmt.Errorf("text formatter requires a string, a fmt.Stringer, a struct or a map, got %T", data)
	}
	table, err := FieldTable(data)
	if err != nil {
		return err
	}
	table.NoColor = f.opts.NoColor
	_, err = fmt.Fprintln(f.opts.Writer, table)
	return err
}

func isRecord(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

// FieldTable renders the top-level JSON fields of v, sorted by name
func FieldTable(v any) (*Table, error) {
	generic, err := viaJSON(v)
	if err != nil {
		return nil, err
	}
	fields, ok := generic.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot render %T as fields", v)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	table := NewTable("FIELD", "VALUE")
	for _, k := range keys {
		table.AddRow(k, fmt.Sprint(fields[k]))
	}
	return table, nil
}

func viaJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
