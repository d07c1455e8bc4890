package transform

import (
	"fmt"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/table"

	"github.com/Knetic/govaluate"
)

// RowFilter keeps the rows for which a boolean expression holds.
type RowFilter struct {
	source string
	expr   *govaluate.EvaluableExpression
	vars   []string
}

// NewRowFilter compiles a govaluate expression such as "Quantity > 0 && ProductID != 'X'".
func NewRowFilter(expression string) (*RowFilter, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression '%s': %w", expression, err)
	}
	return &RowFilter{source: expression, expr: expr, vars: uniqueStrings(expr.Vars())}, nil
}

// Apply returns the kept rows and the number dropped. Numeric-looking cells are
// passed to the expression as numbers, other cells as their raw value.
// A missing column, an evaluation error or a non-boolean result fails with
// etlerr.ErrComputation.
func (f *RowFilter) Apply(t *table.Table) (*table.Table, int, error) {
	if missing := t.MissingColumns(f.vars...); len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: filter '%s' references missing column(s) %s",
			etlerr.ErrComputation, f.source, strings.Join(missing, ", "))
	}

	kept := make([]table.Record, 0, t.Len())
	params := make(map[string]interface{}, len(f.vars))
	for i, rec := range t.Records {
		for _, name := range f.vars {
			params[name] = filterParam(rec[name])
		}
		result, err := f.expr.Evaluate(params)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: filter '%s' failed on row %d: %w", etlerr.ErrComputation, f.source, i+1, err)
		}
		keep, isBool := result.(bool)
		if !isBool {
			return nil, 0, fmt.Errorf("%w: filter '%s' returned %T on row %d, want a boolean",
				etlerr.ErrComputation, f.source, result, i+1)
		}
		if keep {
			kept = append(kept, rec)
		}
	}
	return table.New(append([]string(nil), t.Columns...), kept), t.Len() - len(kept), nil
}

func filterParam(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		if f, ok := parseValueAsFloat64(s); ok {
			return f
		}
	}
	return v
}
