// internal/grid/compare.go
package grid

import (
	"strings"
	"time"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Generic value comparison.
 *
 * Local sorting always uses the column's own comparator; these helpers back
 * the server-side dataset store, which sorts and filters rows it knows
 * nothing about, and the yn truth test in cell formatting.
 *
 * Ordering across kinds: nil < bool < number < time < text. Numbers mix
 * freely across Go numeric kinds and numeric strings never compare as
 * numbers (a string column stays lexicographic).
 */

// CompareValues performs a three-way comparison (-1/0/1) of two values.
func CompareValues(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return sign(ra - rb)
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankNumber:
		na, _ := toFloat(a)
		nb, _ := toFloat(b)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	case rankTime:
		ta, tb := a.(time.Time), b.(time.Time)
		return ta.Compare(tb)
	default:
		return strings.Compare(ToText(a), ToText(b))
	}
}

// EqualValues reports equality with numeric kind mixing.
// A number and its text form are equal ("1" == 1) so wire-format filter
// values match typed record fields.
func EqualValues(a, b any) bool {
	if na, ok := toFloat(a); ok {
		if nb, ok := ToNumber(b); ok {
			return na == nb
		}
	}
	if nb, ok := toFloat(b); ok {
		if na, ok := ToNumber(a); ok {
			return na == nb
		}
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return ToText(a) == ToText(b)
}

// CompareField returns a record comparator over the value at path.
func CompareField(path string) func(a, b types.Record) int {
	segs := NormalizePath(path)
	return func(a, b types.Record) int {
		va, _ := Lookup(a, segs)
		vb, _ := Lookup(b, segs)
		return CompareValues(va, vb)
	}
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankTime
	rankText
)

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	return rankText
}

// toFloat converts Go numeric kinds only; strings are not numbers here.
func toFloat(v any) (float64, bool) {
	if _, ok := v.(string); ok {
		return 0, false
	}
	return ToNumber(v)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
