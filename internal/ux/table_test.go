package ux

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_String(t *testing.T) {
	table := NewTable("FILE TYPE", "COUNT")
	table.NoColor = true
	table.AddRow("rendered_document", "12")
	table.AddRow("seed_prompt", "1")
	table.AddRow("short")

	got := table.String()
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), got)
	}

	if lines[0] != "FILE TYPE          COUNT" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "─────────────────") {
		t.Errorf("rule = %q", lines[1])
	}
	if lines[2] != "rendered_document  12" {
		t.Errorf("row = %q", lines[2])
	}
	if lines[4] != "short" {
		t.Errorf("missing cells should render empty, got %q", lines[4])
	}
}

func TestTable_Title(t *testing.T) {
	table := &Table{Title: "Summary", Headers: []string{"A"}, NoColor: true}
	if !strings.HasPrefix(table.String(), "Summary\n\nA") {
		t.Errorf("title not rendered: %q", table.String())
	}
}

func TestTable_TextFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	table := NewTable("KEY")
	table.NoColor = true
	table.AddRow("value")
	if err := formatter.Format(table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "value") {
		t.Errorf("table row missing from output: %q", buf.String())
	}
}
