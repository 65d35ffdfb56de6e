// Package table provides the ordered-column tabular values passed between
// the planner, workers, and reducer, plus CSV and XLSX persistence.
package table

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tealeg/xlsx/v3"
)

// Table is an in-memory table with a stable column order. Cells are stored
// as strings, matching the CSV files the pipeline reads and writes. The zero
// value is an empty table with no columns.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates a Table with the given column order.
func New(cols ...string) *Table {
	t := &Table{}
	for _, c := range cols {
		t.ensureColumn(c)
	}
	return t
}

// Columns returns the column names in order. The returned slice must not be
// modified.
func (t *Table) Columns() []string {
	return t.cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.rows) == 0
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	if t.index == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

func (t *Table) ensureColumn(name string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	i := len(t.cols)
	t.cols = append(t.cols, name)
	t.index[name] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], "")
	}
	return i
}

// AppendRow adds one row. The record must have one value per column.
func (t *Table) AppendRow(record []string) error {
	if len(record) != len(t.cols) {
		return fmt.Errorf("append row: got %d values, table has %d columns", len(record), len(t.cols))
	}
	t.rows = append(t.rows, append([]string(nil), record...))
	return nil
}

// AppendMap adds one row from a column-name to value mapping. Columns absent
// from the map are left empty; unknown columns are created.
func (t *Table) AppendMap(values map[string]string) {
	row := make([]string, len(t.cols))
	for name, v := range values {
		i := t.ensureColumn(name)
		if i >= len(row) {
			grown := make([]string, len(t.cols))
			copy(grown, row)
			row = grown
		}
		row[i] = v
	}
	if len(row) < len(t.cols) {
		grown := make([]string, len(t.cols))
		copy(grown, row)
		row = grown
	}
	t.rows = append(t.rows, row)
}

// Cell returns the value at the given row for the named column. Missing
// columns read as the empty string.
func (t *Table) Cell(row int, col string) string {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][i]
}

// Row returns a copy of the row at i aligned with Columns.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Concat appends all rows of other to t, forming the union of both column
// sets. Cells for columns the other table lacks are left empty.
func (t *Table) Concat(other *Table) {
	if other == nil || other.Empty() {
		return
	}
	targets := make([]int, len(other.cols))
	for i, c := range other.cols {
		targets[i] = t.ensureColumn(c)
	}
	for _, src := range other.rows {
		row := make([]string, len(t.cols))
		for i, v := range src {
			row[targets[i]] = v
		}
		t.rows = append(t.rows, row)
	}
}

// WriteCSV writes the table to path as CSV with a header row and no
// row-index column.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes the table to path as a single-sheet XLSX workbook.
func (t *Table) WriteXLSX(path, sheet string) error {
	if sheet == "" {
		sheet = "data"
	}
	wb := xlsx.NewFile()
	sh, err := wb.AddSheet(sheet)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	header := sh.AddRow()
	for _, c := range t.cols {
		header.AddCell().SetString(c)
	}
	for _, row := range t.rows {
		r := sh.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}
	if err := wb.Save(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ReadCSV loads a CSV file with a header row into a Table.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return New(), nil
	}
	t := New(records[0]...)
	for _, rec := range records[1:] {
		if err := t.AppendRow(rec); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return t, nil
}
