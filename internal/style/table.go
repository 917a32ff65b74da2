// Package style provides terminal output styling shared by the CLI
// commands: lipgloss styles and a fixed-width table renderer.
package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Alignment controls horizontal placement of a cell value in its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Column describes one table column.
type Column struct {
	Name  string
	Width int
	Align Alignment
}

// Table renders rows of fixed-width columns with an optional header
// separator. Values wider than the column are truncated with an ellipsis.
type Table struct {
	columns   []Column
	rows      [][]string
	indent    string
	headerSep bool
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{
		columns:   columns,
		indent:    "  ",
		headerSep: true,
	}
}

// SetIndent sets the prefix prepended to every rendered line.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// SetHeaderSeparator controls whether a rule is drawn under the header.
func (t *Table) SetHeaderSeparator(on bool) *Table {
	t.headerSep = on
	return t
}

// AddRow appends a row. Missing trailing values are padded with empty
// strings; extra values are dropped.
func (t *Table) AddRow(values ...string) *Table {
	row := make([]string, len(t.columns))
	for i := range t.columns {
		if i < len(values) {
			row[i] = values[i]
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// Render returns the formatted table, one line per row, each line
// newline-terminated. Returns "" when the table has no columns.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(t.indent)
	for i, col := range t.columns {
		if i > 0 {
			b.WriteString("  ")
		}
		name := col.Name
		if ColorEnabled() {
			name = headerStyle.Render(name)
		}
		b.WriteString(t.pad(name, col.Name, col.Width, col.Align))
	}
	b.WriteString("\n")

	if t.headerSep {
		b.WriteString(t.indent)
		for i, col := range t.columns {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(strings.Repeat("─", col.Width))
		}
		b.WriteString("\n")
	}

	for _, row := range t.rows {
		b.WriteString(t.indent)
		for i, col := range t.columns {
			if i > 0 {
				b.WriteString("  ")
			}
			val := truncate(row[i], col.Width)
			b.WriteString(t.pad(val, val, col.Width, col.Align))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// pad aligns styled within width using the plain (unstyled) text to
// measure. When the plain text already fills the column, styled is
// returned unchanged.
func (t *Table) pad(styled, plain string, width int, align Alignment) string {
	gap := width - len(plain)
	if gap <= 0 {
		return styled
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + styled
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + styled + strings.Repeat(" ", gap-left)
	default:
		return styled + strings.Repeat(" ", gap)
	}
}

// truncate shortens s to fit width, appending "..." when cut.
func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripAnsi removes SGR escape sequences for width measurement in tests.
func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
