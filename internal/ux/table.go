package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Table is a column-aligned text table. It implements fmt.Stringer so the
// text formatter can print it.
type Table struct {
	Headers []string
	Rows    [][]string
	// Title is printed above the table when set
	Title   string
	NoColor bool
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// String renders the table
func (t *Table) String() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.style(headerStyle, t.Title))
		b.WriteString("\n\n")
	}

	b.WriteString(t.line(t.Headers, widths, headerStyle))
	b.WriteString("\n")

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	b.WriteString(t.line(rule, widths, mutedStyle))

	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(t.line(row, widths, lipgloss.NewStyle()))
	}
	return b.String()
}

func (t *Table) line(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		padded := cell + strings.Repeat(" ", w-lipgloss.Width(cell))
		parts[i] = t.style(style, padded)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func (t *Table) style(s lipgloss.Style, text string) string {
	if t.NoColor {
		return text
	}
	return s.Render(text)
}

// ErrorText renders text in the error color unless noColor is set
func ErrorText(text string, noColor bool) string {
	if noColor {
		return text
	}
	return errorStyle.Render(text)
}
