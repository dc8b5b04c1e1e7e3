// internal/grid/coercion.go
package grid

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Value coercion for response extraction, request building and cell text.
 *
 * Numeric coercion is strict: booleans and non-numeric strings fail so that
 * a malformed total degrades to zero instead of a surprising count. Text
 * coercion is lenient: every value has a text form.
 *
 * List coercion accepts the shapes encoding/json and Go callers produce
 * ([]any of objects, []map[string]any, []types.Record). Non-object elements
 * are dropped; a row must be addressable by dot-path.
 */

// ToNumber converts value to float64.
// Accepts Go numeric kinds, json.Number and numeric strings (trimmed).
// Rejects booleans, empty strings and nil.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToCount converts value to a non-negative integer count.
// Missing, negative or non-numeric values yield 0.
func ToCount(value any) int {
	f, ok := ToNumber(value)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

// ToText converts value to its display/wire string.
// nil becomes "".
func ToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToRecords coerces value to a list of records.
// Missing or non-list values yield an empty, non-nil slice.
func ToRecords(value any) []types.Record {
	switch v := value.(type) {
	case []types.Record:
		out := make([]types.Record, 0, len(v))
		for _, r := range v {
			if r != nil {
				out = append(out, r)
			}
		}
		return out
	case []map[string]any:
		out := make([]types.Record, 0, len(v))
		for _, r := range v {
			if r != nil {
				out = append(out, types.Record(r))
			}
		}
		return out
	case []any:
		out := make([]types.Record, 0, len(v))
		for _, elem := range v {
			switch r := elem.(type) {
			case types.Record:
				out = append(out, r)
			case map[string]any:
				out = append(out, types.Record(r))
			}
		}
		return out
	default:
		return []types.Record{}
	}
}
