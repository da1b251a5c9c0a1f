package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Tabler is implemented by results that can be shown as a table.
type Tabler interface {
	Table() *Table
}

// TableFormatter formats data as an aligned table.
type TableFormatter struct {
	NoHeaders bool
}

// Format renders a *Table, a Table or a Tabler.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return v.RenderWithOptions(w, f.NoHeaders)
	case Tabler:
		return v.Table().RenderWithOptions(w, f.NoHeaders)
	default:
		return fmt.Errorf("table output is not supported for %T", data)
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
	// Footer lines are printed after the rows, outside the columns.
	Footer []string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// AddFooter appends a line printed below the table.
func (t *Table) AddFooter(line string) {
	t.Footer = append(t.Footer, line)
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(t.Footer) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", strings.Join(t.Footer, "\n")); err != nil {
			return err
		}
	}
	return nil
}
