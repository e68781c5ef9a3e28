// Package dataset reads and writes the tabular feedback files every command
// works on: CSV, TSV and XLSX on local disk or in S3.
package dataset

import (
	"fmt"
	"strings"
)

// Table is a header plus rows of string cells. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable builds a table, padding or trimming rows to the header width
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows}
	t.normalize()
	return t
}

func (t *Table) normalize() {
	for i, row := range t.Rows {
		if len(row) < len(t.Header) {
			padded := make([]string, len(t.Header))
			copy(padded, row)
			t.Rows[i] = padded
		} else if len(row) > len(t.Header) {
			t.Rows[i] = row[:len(t.Header)]
		}
	}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of a column, matched case-insensitively, or -1
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// MustColumn is Column with an error for missing columns
func (t *Table) MustColumn(name string) (int, error) {
	idx := t.Column(name)
	if idx < 0 {
		return -1, fmt.Errorf("column %q not found (available: %s)", name, strings.Join(t.Header, ", "))
	}
	return idx, nil
}

// EnsureColumn returns the index of a column, appending an empty one if needed
func (t *Table) EnsureColumn(name string) int {
	if idx := t.Column(name); idx >= 0 {
		return idx
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1
}

// Cell returns the value at row, col; out-of-range columns read as empty
func (t *Table) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes a cell value
func (t *Table) Set(row, col int, value string) {
	t.Rows[row][col] = value
}

// Filter returns a new table holding the rows keep returns true for
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Select returns a new table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, err := t.MustColumn(name)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	out := &Table{Header: append([]string(nil), names...), Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, col := range idx {
			cells[i] = row[col]
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// IsMissing reports whether a cell holds no value. pandas writes NaN as an
// empty field, and some exports spell it out.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null")
}
