// internal/grid/request.go
package grid

import (
	"maps"
	"strings"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Request building for back-end sources.
 *
 * BuildRequest flattens the page position, active sort, applied filters and
 * extra params into one wire map. Logical names (pi, ps, sort) are
 * remapped through ReqRename; values are never rewritten. Extra params are
 * merged last and win on key collision.
 *
 * Wire formats:
 *   pi, ps         int
 *   sort (single)  "field,ascend"
 *   sort (multi)   []string{"a,ascend", "b,descend"}, or one string joined
 *                  by MultiSort.Separator when set
 *   filter         one key per column: []any when multiple, else the
 *                  comma-joined text of the checked values
 */

// Default wire names.
const (
	DefaultPIKey   = "pi"
	DefaultPSKey   = "ps"
	DefaultSortKey = "sort"
)

// ReqRename maps logical request names to wire names. Empty fields keep the
// defaults.
type ReqRename struct {
	PI   string
	PS   string
	Sort string
}

// WithDefaults fills empty names with the default wire names.
func (r ReqRename) WithDefaults() ReqRename {
	if r.PI == "" {
		r.PI = DefaultPIKey
	}
	if r.PS == "" {
		r.PS = DefaultPSKey
	}
	if r.Sort == "" {
		r.Sort = DefaultSortKey
	}
	return r
}

// MultiSort enables priority-ordered sorting over several columns.
// Key defaults to "sort".
type MultiSort struct {
	Key       string
	Separator string
}

// Request is one fetch request as seen by a Source.
// Params is the complete wire map; the structured fields let sources that
// are not HTTP-shaped skip parsing it.
type Request struct {
	PI      int
	PS      int
	Sort    SortState
	Filter  FilterState
	Extra   map[string]any
	Params  map[string]any
	CycleID types.CycleID
}

// SortToken formats one sort criterion.
func SortToken(field string, dir types.Direction) string {
	return field + "," + string(dir)
}

// ParseSortToken splits a sort token. ok is false for malformed tokens.
func ParseSortToken(token string) (field string, dir types.Direction, ok bool) {
	i := strings.LastIndexByte(token, ',')
	if i <= 0 {
		return "", types.NoDirection, false
	}
	dir = types.Direction(token[i+1:])
	if dir == types.NoDirection || !dir.Valid() {
		return "", types.NoDirection, false
	}
	return token[:i], dir, true
}

// BuildRequest assembles the wire params of a request.
// multi selects multi-sort encoding; nil means single sort.
func BuildRequest(pi, ps int, sort SortState, filter FilterState, extra map[string]any, rn ReqRename, multi *MultiSort) map[string]any {
	rn = rn.WithDefaults()
	params := map[string]any{
		rn.PI: pi,
		rn.PS: ps,
	}

	if sort.Active() {
		if multi == nil {
			s := sort.Entries[0]
			params[rn.Sort] = SortToken(s.Field, s.Direction)
		} else {
			key := multi.Key
			if key == "" {
				key = rn.Sort
			}
			tokens := make([]string, len(sort.Entries))
			for i, s := range sort.Entries {
				tokens[i] = SortToken(s.Field, s.Direction)
			}
			if multi.Separator != "" {
				params[key] = strings.Join(tokens, multi.Separator)
			} else {
				params[key] = tokens
			}
		}
	}

	for _, f := range filter.Columns {
		if f.Multiple {
			params[f.Key] = append([]any(nil), f.Values...)
			continue
		}
		texts := make([]string, len(f.Values))
		for i, v := range f.Values {
			texts[i] = ToText(v)
		}
		params[f.Key] = strings.Join(texts, ",")
	}

	maps.Copy(params, extra)
	return params
}

// mergeParams applies load params to the current ones.
// merge unions the maps (new keys win); otherwise next replaces current.
func mergeParams(current, next map[string]any, merge bool) map[string]any {
	if !merge {
		return maps.Clone(next)
	}
	out := maps.Clone(current)
	if out == nil {
		out = make(map[string]any, len(next))
	}
	maps.Copy(out, next)
	return out
}
