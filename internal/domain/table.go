package domain

import "strings"

// Column is one named series of cell values in a Table.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered collection of equal-length columns. Column order is
// significant: it mirrors the key order of the upstream report feed and is
// reproduced verbatim in every output artifact.
//
// Cell values are dynamically typed. Fresh from the extractor they are
// string, json.Number, bool, nil, or composites ([]any, map[string]any);
// transform stages add int, float64, and time.Time cells. Duplicate column
// names are tolerated: lookups resolve to the leftmost match.
//
// Tables are never mutated in place. Every operation returns a new Table,
// sharing unchanged column values with the original.
type Table struct {
	cols []Column
}

// NewTable builds a Table from columns. All columns must have the same
// number of values.
func NewTable(cols ...Column) Table {
	return Table{cols: cols}
}

// NumCols returns the number of columns.
func (t Table) NumCols() int {
	return len(t.cols)
}

// NumRows returns the number of rows, zero for a table with no columns.
func (t Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool {
	return t.NumRows() == 0
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the column at index i.
func (t Table) Column(i int) Column {
	return t.cols[i]
}

// ColumnIndex returns the index of the leftmost column with the exact name.
func (t Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// FirstColumnContaining returns the index of the leftmost column whose
// lowercased name contains substr.
func (t Table) FirstColumnContaining(substr string) (int, bool) {
	for i, c := range t.cols {
		if strings.Contains(strings.ToLower(c.Name), substr) {
			return i, true
		}
	}
	return 0, false
}

// Row returns the cells of row i in column order.
func (t Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for c := range t.cols {
		row[c] = t.cols[c].Values[i]
	}
	return row
}

// Value returns the cell at (row, col).
func (t Table) Value(row, col int) any {
	return t.cols[col].Values[row]
}

// SetColumn replaces the values of the leftmost column named name, keeping
// its position, or appends a new column when no column has that name. values
// must match the table's row count (any length is accepted on a table with
// no columns).
func (t Table) SetColumn(name string, values []any) Table {
	cols := make([]Column, len(t.cols), len(t.cols)+1)
	copy(cols, t.cols)
	for i := range cols {
		if cols[i].Name == name {
			cols[i].Values = values
			return Table{cols: cols}
		}
	}
	return Table{cols: append(cols, Column{Name: name, Values: values})}
}

// RenameColumn renames the leftmost column named oldName. Renaming a missing
// column is a no-op.
func (t Table) RenameColumn(oldName, newName string) Table {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	for i := range cols {
		if cols[i].Name == oldName {
			cols[i].Name = newName
			break
		}
	}
	return Table{cols: cols}
}

// Select returns a new table containing the given rows, in the given order.
// Row indices may repeat.
func (t Table) Select(rows []int) Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		values := make([]any, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		cols[i] = Column{Name: c.Name, Values: values}
	}
	return Table{cols: cols}
}

// setValuesAt replaces the values of the column at index i.
func (t Table) setValuesAt(i int, values []any) Table {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	cols[i].Values = values
	return Table{cols: cols}
}
