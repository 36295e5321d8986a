// Package render prints reports as terminal tables, tab-separated text and
// JSON or YAML documents.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	BoldCyan   = color.New(color.FgCyan, color.Bold)
	BoldYellow = color.New(color.FgYellow, color.Bold)
	Yellow     = color.New(color.FgYellow)
	Red        = color.New(color.FgRed)
)

// SetColor turns ANSI colours on or off for all output.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Alignment defines text alignment in table cells
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table is a formatted table. Each row may carry a colour.
type Table struct {
	Headers []string
	Rows    [][]string
	Colors  []*color.Color
	Align   []Alignment
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		Headers: headers,
		Align:   make([]Alignment, len(headers)),
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.AddColoredRow(nil, cells...)
}

// AddColoredRow adds a row printed in c.
func (t *Table) AddColoredRow(c *color.Color, cells ...string) {
	t.Rows = append(t.Rows, cells)
	t.Colors = append(t.Colors, c)
}

// SetColumnAlignment sets alignment for a specific column
func (t *Table) SetColumnAlignment(col int, align Alignment) {
	if col >= 0 && col < len(t.Align) {
		t.Align[col] = align
	}
}

// Fprint writes the table without borders: a bold header, a rule, then rows.
func (t *Table) Fprint(w io.Writer) {
	if len(t.Headers) == 0 {
		return
	}
	widths := t.columnWidths()

	for i, h := range t.Headers {
		BoldCyan.Fprint(w, pad(h, widths[i], t.Align[i]))
		if i < len(t.Headers)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		fmt.Fprint(w, strings.Repeat("─", width))
		if i < len(widths)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for i, row := range t.Rows {
		line := make([]string, 0, len(widths))
		for j := range widths {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			line = append(line, pad(cell, widths[j], t.Align[j]))
		}
		text := strings.TrimRight(strings.Join(line, "  "), " ")
		if c := t.Colors[i]; c != nil {
			c.Fprintln(w, text)
		} else {
			fmt.Fprintln(w, text)
		}
	}
}

// TSV returns the table as tab-separated text, header first.
func (t *Table) TSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, "\t"))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	return widths
}

func pad(cell string, width int, align Alignment) string {
	n := width - utf8.RuneCountInString(cell)
	if n <= 0 {
		return cell
	}
	if align == AlignRight {
		return strings.Repeat(" ", n) + cell
	}
	return cell + strings.Repeat(" ", n)
}

// Section is a titled table.
type Section struct {
	Title string
	Table *Table
}

// PrintSections writes each non-empty section under its title.
func PrintSections(w io.Writer, sections ...Section) {
	for i, s := range sections {
		if s.Table == nil || len(s.Table.Rows) == 0 {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		if s.Title != "" {
			BoldYellow.Fprintln(w, s.Title)
		}
		s.Table.Fprint(w)
	}
}

// SectionsTSV joins the sections as tab-separated text, separated by blank lines.
func SectionsTSV(sections ...Section) string {
	var parts []string
	for _, s := range sections {
		if s.Table == nil || len(s.Table.Rows) == 0 {
			continue
		}
		text := s.Table.TSV()
		if s.Title != "" {
			text = s.Title + "\n" + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}
