// Package table holds the in-memory tabular structure passed between stages.
//
// A Table keeps an explicit column order next to its records so the writer can
// reproduce a stable header. A nil cell value means "null".
package table

// Record is one row keyed by column name. A nil value (or an absent key) is a null cell.
type Record map[string]interface{}

// Table is an ordered collection of column-homogeneous records.
type Table struct {
	Columns []string
	Records []Record
}

// New builds a table from columns and records. Slices are used as given.
func New(columns []string, records []Record) *Table {
	if columns == nil {
		columns = []string{}
	}
	if records == nil {
		records = []Record{}
	}
	return &Table{Columns: columns, Records: records}
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return New(nil, nil)
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// IsEmpty reports whether the table is nil or has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the names not present in the table, in the order given.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Value returns the cell at (row, column). ok is false for a null cell.
func (t *Table) Value(row int, column string) (interface{}, bool) {
	v, exists := t.Records[row][column]
	return v, exists && v != nil
}

// Row returns the values of record i in column order.
func (t *Table) Row(i int) []interface{} {
	out := make([]interface{}, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = t.Records[i][c]
	}
	return out
}

// Clone copies the column list and every record map. Cell values are shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return Empty()
	}
	cols := append([]string(nil), t.Columns...)
	recs := make([]Record, len(t.Records))
	for i, r := range t.Records {
		c := make(Record, len(r))
		for k, v := range r {
			c[k] = v
		}
		recs[i] = c
	}
	return New(cols, recs)
}

// AddColumn appends name to the column list if it is not already there.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Concat stacks tables vertically. Columns are the union in order of first
// appearance; rows keep their table order, so earlier tables come first.
// Cells for columns a source table lacks stay null.
func Concat(tables ...*Table) *Table {
	out := Empty()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			out.AddColumn(c)
		}
		out.Records = append(out.Records, t.Records...)
	}
	return out
}
