// Package dataset holds the normalized tabular model shared by every stage of the dashboard.
package dataset

import (
	"strconv"
	"strings"
)

// Kind is the inferred storage kind of a column.
type Kind string

const (
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
)

// Record is one row of a Table. Cells are aligned with Table.Columns().
// Records are never modified once a Table is built, so derived tables share them.
type Record []string

// Table is an ordered, immutable sequence of records sharing one normalized column set.
type Table struct {
	name    string
	columns []string
	kinds   []Kind
	index   map[string]int
	rows    []Record
}

// New builds a Table from a raw header and rows. Column names are normalized and made unique,
// short rows are padded with empty cells, and every cell is trimmed.
func New(name string, header []string, rows [][]string) *Table {
	cols := NormalizeColumns(header)
	t := &Table{
		name:    name,
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    make([]Record, 0, len(rows)),
	}
	for i, c := range cols {
		t.index[c] = i
	}
	for _, raw := range rows {
		rec := make(Record, len(cols))
		for j := range rec {
			if j < len(raw) {
				rec[j] = strings.TrimSpace(raw[j])
			}
		}
		t.rows = append(t.rows, rec)
	}
	t.kinds = inferKinds(len(cols), t.rows)
	return t
}

func inferKinds(ncol int, rows []Record) []Kind {
	kinds := make([]Kind, ncol)
	for j := 0; j < ncol; j++ {
		numeric, seen := true, false
		for _, r := range rows {
			v := r[j]
			if v == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric && seen {
			kinds[j] = KindNumeric
		} else {
			kinds[j] = KindText
		}
	}
	return kinds
}

// Name returns the source label the table was loaded from.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the normalized column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of col.
func (t *Table) Index(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Kind returns the inferred kind of col, or "" when it does not exist.
func (t *Table) Kind(col string) Kind {
	i, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.kinds[i]
}

// TextColumns lists the columns whose values are textual.
func (t *Table) TextColumns() []string {
	var out []string
	for i, c := range t.columns {
		if t.kinds[i] == KindText {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.rows) }

// Value returns the cell at row i for col. Unknown columns read as empty.
func (t *Table) Value(i int, col string) string {
	j, ok := t.index[col]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return t.rows[i][j]
}

// Column returns a copy of every value of col in row order.
func (t *Table) Column(col string) []string {
	j, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Rows returns a deep copy of the records.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		cp := make([]string, len(r))
		copy(cp, r)
		out[i] = cp
	}
	return out
}

// Select returns a new table with the records for which keep returns true.
// The receiver is left untouched.
func (t *Table) Select(keep func(Record) bool) *Table {
	out := t.derive(0)
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Head returns a new table with at most n leading records.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := t.derive(n)
	out.rows = append(out.rows, t.rows[:n]...)
	return out
}

// derive shares the immutable column metadata with a fresh row slice.
func (t *Table) derive(capacity int) *Table {
	return &Table{
		name:    t.name,
		columns: t.columns,
		kinds:   t.kinds,
		index:   t.index,
		rows:    make([]Record, 0, capacity),
	}
}
