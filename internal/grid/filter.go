// internal/grid/filter.go
package grid

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Filter engine.
 *
 * Each filterable column owns two check vectors over its menus: staged
 * (what the menu shows while the user toggles) and applied (what filters
 * rows and is sent to remote sources). Toggling only touches staged;
 * confirm copies staged to applied; clear resets both.
 *
 * Local application keeps a row when any applied menu's predicate accepts
 * it; columns combine with AND. A column without a predicate is a no-op
 * filter reported with a warning.
 */

// FilterMenu is one selectable filter value.
type FilterMenu struct {
	Text    string `json:"text"`
	Value   any    `json:"value"`
	Checked bool   `json:"checked"`
}

// FilterSpec configures a filterable column.
type FilterSpec struct {
	// Multiple selects checkbox menus; otherwise menus are radio-like.
	Multiple bool
	// Menus are the selectable values; Checked marks the initial filter.
	Menus []FilterMenu
	// Fn reports whether rec passes menu. Required for local filtering.
	Fn func(menu FilterMenu, rec types.Record) bool
	// Key overrides the param key sent to remote sources.
	Key string
}

// FilterEntry is the applied filter of one column.
type FilterEntry struct {
	Column   int    `json:"column"`
	Key      string `json:"key"`
	Values   []any  `json:"values"`
	Multiple bool   `json:"multiple"`
}

// FilterState lists the columns with an applied filter, in column order.
type FilterState struct {
	Columns []FilterEntry `json:"columns"`
}

// Active reports whether any column filter is applied.
func (s FilterState) Active() bool { return len(s.Columns) > 0 }

type filterEngine struct {
	staged  map[int][]bool
	applied map[int][]bool
}

func newFilterEngine(cols []Column) *filterEngine {
	e := &filterEngine{
		staged:  make(map[int][]bool),
		applied: make(map[int][]bool),
	}
	for i := range cols {
		if cols[i].FilterKind() == FilterDisabled {
			continue
		}
		menus := cols[i].Filter.Menus
		checks := make([]bool, len(menus))
		for j, m := range menus {
			checks[j] = m.Checked
		}
		if !cols[i].Filter.Multiple {
			// radio-like: only the first initially checked menu survives
			seen := false
			for j := range checks {
				if checks[j] && seen {
					checks[j] = false
				}
				seen = seen || checks[j]
			}
		}
		e.staged[i] = checks
		e.applied[i] = slices.Clone(checks)
	}
	return e
}

// toggle stages a menu check. Single mode unchecks siblings when checking.
func (e *filterEngine) toggle(col int, multiple bool, menu int, checked bool) {
	staged := e.staged[col]
	if checked && !multiple {
		for j := range staged {
			staged[j] = false
		}
	}
	staged[menu] = checked
}

func (e *filterEngine) confirm(col int) {
	e.applied[col] = slices.Clone(e.staged[col])
}

func (e *filterEngine) clearColumn(col int) {
	for j := range e.staged[col] {
		e.staged[col][j] = false
	}
	e.applied[col] = slices.Clone(e.staged[col])
}

func (e *filterEngine) clear() {
	for col := range e.staged {
		e.clearColumn(col)
	}
}

// menus returns a column's menus with the staged checks.
func (e *filterEngine) menus(cols []Column, col int) []FilterMenu {
	staged, ok := e.staged[col]
	if !ok {
		return nil
	}
	out := slices.Clone(cols[col].Filter.Menus)
	for j := range out {
		out[j].Checked = staged[j]
	}
	return out
}

func (e *filterEngine) state(cols []Column) FilterState {
	var st FilterState
	for i := range cols {
		applied, ok := e.applied[i]
		if !ok {
			continue
		}
		var values []any
		for j, on := range applied {
			if on {
				values = append(values, cols[i].Filter.Menus[j].Value)
			}
		}
		if len(values) == 0 {
			continue
		}
		st.Columns = append(st.Columns, FilterEntry{
			Column:   i,
			Key:      cols[i].filterField(),
			Values:   values,
			Multiple: cols[i].Filter.Multiple,
		})
	}
	return st
}

// apply filters rows by every column with applied menus.
func (e *filterEngine) apply(rows []keyed, cols []Column, log zerolog.Logger) []keyed {
	type active struct {
		fn    func(FilterMenu, types.Record) bool
		menus []FilterMenu
	}
	var filters []active
	for i := range cols {
		applied, ok := e.applied[i]
		if !ok || !slices.Contains(applied, true) {
			continue
		}
		c := &cols[i]
		if c.FilterKind() != FilterEnabled {
			log.Warn().
				Str("column", c.Index).
				Str("reason", "missing_filter_fn").
				Msg("local filter requires a predicate; column ignored")
			continue
		}
		var menus []FilterMenu
		for j, on := range applied {
			if on {
				m := c.Filter.Menus[j]
				m.Checked = true
				menus = append(menus, m)
			}
		}
		filters = append(filters, active{fn: c.Filter.Fn, menus: menus})
	}
	if len(filters) == 0 {
		return rows
	}

	out := make([]keyed, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if !slices.ContainsFunc(f.menus, func(m FilterMenu) bool { return f.fn(m, row.rec) }) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}
