package io

import (
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"

	"github.com/shopspring/decimal"
)

const utf8BOM = "\ufeff"

// normalizeHeaders trims header names and makes them unique. An empty name
// becomes "Unnamed: <index>"; repeats get ".1", ".2" suffixes in order.
func normalizeHeaders(raw []string, log *logging.Logger, source string) []string {
	columns := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
			log.Logf(logging.Warning, "Empty header in column %d of '%s'; using '%s'", i+1, source, name)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
			log.Logf(logging.Warning, "Duplicate header '%s' in column %d of '%s'; renamed to '%s'", base, i+1, source, name)
		}
		seen[name] = 0
		columns[i] = name
	}
	return columns
}

// naSet builds the lookup used to turn null markers into nil cells.
func naSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// parseCell returns nil for a null marker and the raw text otherwise.
func parseCell(raw string, na map[string]struct{}) interface{} {
	if _, isNA := na[raw]; isNA {
		return nil
	}
	return raw
}

// formatCell renders a value for text output. Nil becomes an empty cell.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// nativeValue converts values to types spreadsheet and database drivers understand.
func nativeValue(v interface{}) interface{} {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}

// writeFileAtomic writes through a temp file in the target directory and renames
// it over path, so readers never observe a partially written output.
func writeFileAtomic(path string, write func(w stdio.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for '%s': %w", etlerr.ErrIO, path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file for '%s': %w", etlerr.ErrIO, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("%w: failed to write '%s': %w", etlerr.ErrIO, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file for '%s': %w", etlerr.ErrIO, path, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions on '%s': %w", etlerr.ErrIO, path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: failed to replace '%s': %w", etlerr.ErrIO, path, err)
	}
	return nil
}
