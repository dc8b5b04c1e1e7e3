// internal/grid/fieldpath.go
package grid

import (
	"strconv"
	"strings"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Dot-path resolution for records and raw responses.
 *
 * Resolves "a.b.c" style paths through nested maps and slices. Used for column
 * value lookup, response unwrapping (total/list) and response renaming on the
 * server side.
 *
 * Key functions:
 *   - NormalizePath: "a.b" -> ["a", "b"], "total" -> ["total"]
 *   - Get / Lookup: read a nested value, nil when any segment is missing
 *   - Set: write a nested value, creating intermediate maps
 *
 * Missing paths are never errors: a malformed backend must degrade to
 * zero values instead of failing the page. Numeric segments index into
 * slices ("items.0.name"). Paths deeper than MaxPathDepth resolve to nil.
 */

// NormalizePath splits a dot-path into segments.
// Empty segments are dropped, so "" and "." normalize to nil.
func NormalizePath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) == 0 {
		return nil
	}
	return segs
}

// Get returns the value at a dot-path, or nil if any segment is missing.
func Get(obj any, path string) any {
	v, _ := Lookup(obj, NormalizePath(path))
	return v
}

// Lookup traverses obj following path segments.
// Returns found=false when a segment is missing, the path continues through
// a scalar, or the path exceeds MaxPathDepth. An empty path returns obj.
func Lookup(obj any, path []string) (any, bool) {
	if len(path) > types.MaxPathDepth {
		return nil, false
	}
	return lookupRecursive(path, obj)
}

func lookupRecursive(path []string, current any) (any, bool) {
	if len(path) == 0 {
		return current, true
	}

	seg := path[0]
	remaining := path[1:]

	switch v := current.(type) {
	case types.Record:
		val, ok := v[seg]
		if !ok {
			return nil, false
		}
		return lookupRecursive(remaining, val)
	case map[string]any:
		val, ok := v[seg]
		if !ok {
			return nil, false
		}
		return lookupRecursive(remaining, val)
	case []any:
		idx, ok := sliceIndex(seg, len(v))
		if !ok {
			return nil, false
		}
		return lookupRecursive(remaining, v[idx])
	case []types.Record:
		idx, ok := sliceIndex(seg, len(v))
		if !ok {
			return nil, false
		}
		return lookupRecursive(remaining, v[idx])
	case []map[string]any:
		idx, ok := sliceIndex(seg, len(v))
		if !ok {
			return nil, false
		}
		return lookupRecursive(remaining, v[idx])
	default:
		// nil or scalar with path remaining
		return nil, false
	}
}

// sliceIndex parses seg as an in-range slice index.
func sliceIndex(seg string, n int) (int, bool) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// Set writes value at path inside obj, creating intermediate maps.
// Intermediate scalars are replaced by maps. Returns false for a nil obj or
// an empty path.
func Set(obj map[string]any, path []string, value any) bool {
	if obj == nil || len(path) == 0 || len(path) > types.MaxPathDepth {
		return false
	}
	current := obj
	for _, seg := range path[:len(path)-1] {
		switch next := current[seg].(type) {
		case map[string]any:
			current = next
		case types.Record:
			current = next
		default:
			m := make(map[string]any)
			current[seg] = m
			current = m
		}
	}
	current[path[len(path)-1]] = value
	return true
}
