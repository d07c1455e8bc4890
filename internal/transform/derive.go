package transform

import (
	"fmt"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/table"

	"github.com/Knetic/govaluate"
)

// Deriver adds a computed column to every row of a table.
type Deriver struct {
	column string
	source string
	expr   *govaluate.EvaluableExpression
	vars   []string
}

// NewDeriver compiles expression, e.g. "Price * Quantity", for the column name.
func NewDeriver(column, expression string) (*Deriver, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression '%s' for column '%s': %w", expression, column, err)
	}
	return &Deriver{column: column, source: expression, expr: expr, vars: uniqueStrings(expr.Vars())}, nil
}

// Apply returns a copy of t with the derived column set on every row.
// Each referenced column is parsed as a number before evaluation; a missing
// column, a non-numeric or non-finite cell, or a result that is not a finite
// number fails with etlerr.ErrComputation.
func (d *Deriver) Apply(t *table.Table) (*table.Table, error) {
	if missing := t.MissingColumns(d.vars...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: cannot derive '%s': missing column(s) %s",
			etlerr.ErrComputation, d.column, strings.Join(missing, ", "))
	}

	out := t.Clone()
	out.AddColumn(d.column)
	params := make(map[string]interface{}, len(d.vars))
	for i, rec := range out.Records {
		for _, name := range d.vars {
			f, ok := parseValueAsFloat64(rec[name])
			if !ok {
				return nil, fmt.Errorf("%w: cannot derive '%s': row %d column '%s' value %v is not numeric",
					etlerr.ErrComputation, d.column, i+1, name, rec[name])
			}
			params[name] = f
		}
		result, err := d.expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot derive '%s' on row %d: %w", etlerr.ErrComputation, d.column, i+1, err)
		}
		value, ok := result.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: expression '%s' returned %T on row %d, want a number",
				etlerr.ErrComputation, d.source, result, i+1)
		}
		if !isFinite(value) {
			return nil, fmt.Errorf("%w: expression '%s' returned %v on row %d, want a finite number",
				etlerr.ErrComputation, d.source, value, i+1)
		}
		rec[d.column] = value
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
