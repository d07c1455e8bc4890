// Package transform turns freshly extracted sales rows plus the previous run's
// output into the per-product aggregate.
package transform

import (
	"sales-etl/internal/config"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"
)

// Transformer runs filter, derive, merge and aggregate in that order.
type Transformer struct {
	cfg     config.TransformConfig
	filter  *RowFilter
	deriver *Deriver
	log     *logging.Logger
}

// NewTransformer compiles the configured expressions.
func NewTransformer(cfg config.TransformConfig, log *logging.Logger) (*Transformer, error) {
	deriver, err := NewDeriver(cfg.DerivedColumn, cfg.Expression)
	if err != nil {
		return nil, err
	}
	tr := &Transformer{cfg: cfg, deriver: deriver, log: log}
	if cfg.Filter != "" {
		if tr.filter, err = NewRowFilter(cfg.Filter); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// Transform derives the computed column on current, merges it with previous
// and sums the computed column per group. Neither input is modified.
func (tr *Transformer) Transform(current, previous *table.Table) (*table.Table, error) {
	working := current
	if tr.filter != nil {
		kept, dropped, err := tr.filter.Apply(working)
		if err != nil {
			return nil, err
		}
		tr.log.Logf(logging.Info, "Filter applied: %d kept, %d skipped.", kept.Len(), dropped)
		working = kept
	}

	derived, err := tr.deriver.Apply(working)
	if err != nil {
		return nil, err
	}
	tr.log.Logf(logging.Debug, "Derived '%s' for %d rows", tr.cfg.DerivedColumn, derived.Len())

	merged, err := MergeLatest(previous, derived, tr.cfg.DedupKeys, tr.log)
	if err != nil {
		return nil, err
	}

	result, err := SumBy(merged, tr.cfg.GroupBy, tr.cfg.DerivedColumn)
	if err != nil {
		return nil, err
	}
	tr.log.Logf(logging.Debug, "Aggregated %d rows into %d groups", merged.Len(), result.Len())
	return result, nil
}
