// Package validation holds the data-quality checks run on freshly extracted tables.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/table"
)

// NullValuesError reports the null cells found in a table.
// It matches etlerr.ErrDataQuality through errors.Is.
type NullValuesError struct {
	// Counts maps column name to the number of null cells in that column.
	Counts map[string]int
}

func (e *NullValuesError) Error() string {
	cols := make([]string, 0, len(e.Counts))
	for c := range e.Counts {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s=%d", c, e.Counts[c])
	}
	return fmt.Sprintf("data contains null values (%s)", strings.Join(parts, ", "))
}

// Unwrap exposes the error kind.
func (e *NullValuesError) Unwrap() error {
	return etlerr.ErrDataQuality
}

// Total returns the number of null cells across all columns.
func (e *NullValuesError) Total() int {
	n := 0
	for _, c := range e.Counts {
		n += c
	}
	return n
}

// CheckNulls fails when any cell of any column is null. A record that lacks
// one of the table's columns counts as a null in that column.
func CheckNulls(t *table.Table) error {
	if t == nil {
		return nil
	}
	counts := make(map[string]int)
	for i := range t.Records {
		for _, col := range t.Columns {
			if _, ok := t.Value(i, col); !ok {
				counts[col]++
			}
		}
	}
	if len(counts) > 0 {
		return &NullValuesError{Counts: counts}
	}
	return nil
}
