package transform

import (
	"fmt"
	"sort"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/table"

	"github.com/shopspring/decimal"
)

// SumBy groups t by groupCol and sums valueCol in exact decimal arithmetic.
// The result has columns [groupCol, valueCol], one row per distinct non-null
// group value, ordered by the group value's text. Rows with a null group value
// are dropped; null values add nothing to their group. A missing column or a
// non-numeric value fails with etlerr.ErrComputation.
func SumBy(t *table.Table, groupCol, valueCol string) (*table.Table, error) {
	if missing := t.MissingColumns(groupCol, valueCol); len(missing) > 0 {
		return nil, fmt.Errorf("%w: cannot aggregate: missing column(s) %s",
			etlerr.ErrComputation, strings.Join(missing, ", "))
	}

	type group struct {
		key   interface{}
		total decimal.Decimal
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for i := range t.Records {
		key, ok := t.Value(i, groupCol)
		if !ok {
			continue
		}
		id := ValueToStringForHash(key)
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, total: decimal.Zero}
			groups[id] = g
			order = append(order, id)
		}
		v, ok := t.Value(i, valueCol)
		if !ok {
			continue
		}
		d, ok := parseValueAsDecimal(v)
		if !ok {
			return nil, fmt.Errorf("%w: cannot aggregate: row %d column '%s' value %v is not numeric",
				etlerr.ErrComputation, i+1, valueCol, v)
		}
		g.total = g.total.Add(d)
	}

	sort.Strings(order)
	records := make([]table.Record, len(order))
	for i, id := range order {
		g := groups[id]
		records[i] = table.Record{groupCol: g.key, valueCol: g.total}
	}
	return table.New([]string{groupCol, valueCol}, records), nil
}
