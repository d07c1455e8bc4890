package transform

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseValueAsFloat64 attempts to parse various input types into a finite float64.
// Infinities and NaN, including the strings "inf" and "NaN", are rejected.
func parseValueAsFloat64(value interface{}) (float64, bool) {
	f, ok := toFloat64(value)
	if !ok || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(v).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case string:
		cleanV := strings.TrimSpace(v)
		if cleanV == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleanV, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parseValueAsDecimal converts a cell to an exact decimal. Floats are taken at
// their shortest round-trip representation, so 0.1 sums as 0.1.
func parseValueAsDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		if !isFinite(v) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		if !isFinite(float64(v)) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		if f, ok := parseValueAsFloat64(v); ok {
			return decimal.NewFromFloat(f), true
		}
		return decimal.Decimal{}, false
	}
}

// ValueToStringForHash provides a consistent, canonical string representation
// for different data types, suitable for building composite keys.
func ValueToStringForHash(v interface{}) string {
	if v == nil {
		return "<NIL>"
	}
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// compositeKey joins the canonical form of each key column. Parts are quoted so
// ("a|b", "c") and ("a", "b|c") stay distinct; nil parts all map to one marker.
func compositeKey(rec map[string]interface{}, keys []string) string {
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		v := rec[k]
		if v == nil {
			sb.WriteString("<NIL>")
			continue
		}
		sb.WriteString(strconv.Quote(ValueToStringForHash(v)))
	}
	return sb.String()
}
