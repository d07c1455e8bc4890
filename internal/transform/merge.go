package transform

import (
	"fmt"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"
)

// MergeLatest implements the change-data-capture merge. When previous has rows,
// it stacks previous ++ current and keeps only the last row for each key, so
// current rows replace previous rows with the same key and a later current row
// replaces an earlier one. Surviving rows keep their relative order.
//
// When previous is empty the result is current unchanged. When previous lacks
// any key column (the persisted aggregate has only its group and value columns)
// it cannot be merged by key; the mismatch is logged and current is deduplicated
// on its own.
func MergeLatest(previous, current *table.Table, keys []string, log *logging.Logger) (*table.Table, error) {
	if previous.IsEmpty() {
		return current, nil
	}
	if missing := current.MissingColumns(keys...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: cannot merge: new data is missing key column(s) %s",
			etlerr.ErrComputation, strings.Join(missing, ", "))
	}
	if missing := previous.MissingColumns(keys...); len(missing) > 0 {
		log.Logf(logging.Warning, "Previous data lacks key column(s) %s (columns: %s); merging skipped, deduplicating new data only",
			strings.Join(missing, ", "), strings.Join(previous.Columns, ", "))
		return keepLast(current, keys, log), nil
	}
	return keepLast(table.Concat(previous, current), keys, log), nil
}

// keepLast drops every row whose key appears again later in t.
func keepLast(t *table.Table, keys []string, log *logging.Logger) *table.Table {
	lastIndex := make(map[string]int, t.Len())
	for i, rec := range t.Records {
		lastIndex[compositeKey(rec, keys)] = i
	}

	kept := make([]table.Record, 0, len(lastIndex))
	for i, rec := range t.Records {
		if lastIndex[compositeKey(rec, keys)] == i {
			kept = append(kept, rec)
		}
	}
	if dropped := t.Len() - len(kept); dropped > 0 {
		log.Logf(logging.Info, "Merge replaced %d row(s) sharing a key (%s) with later rows", dropped, strings.Join(keys, ", "))
	}
	return table.New(t.Columns, kept)
}
