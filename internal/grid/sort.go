// internal/grid/sort.go
package grid

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Sort engine.
 *
 * State is an ordered list of active entries; list order is priority
 * (first = primary). Single mode keeps at most one entry. Multi mode upserts,
 * so a column keeps its priority slot from its first activation until it is
 * deactivated.
 *
 * Local application chains the comparators of all active entries into one
 * stable sort. A column without a comparator is skipped with a warning; the
 * page is never failed over a sort misconfiguration.
 */

// SortSpec configures a sortable column.
type SortSpec struct {
	// Default is the direction active when the table is configured.
	Default types.Direction
	// Compare orders two records ascending. Required for local sorting.
	Compare func(a, b types.Record) int
	// Key overrides the field name sent to remote sources.
	Key string
}

// SortEntry is one active sort criterion.
type SortEntry struct {
	Column    int             `json:"column"`
	Field     string          `json:"field"`
	Direction types.Direction `json:"direction"`
}

// SortState is the ordered list of active sort criteria.
type SortState struct {
	Entries []SortEntry `json:"entries"`
}

// Active reports whether any criterion is active.
func (s SortState) Active() bool { return len(s.Entries) > 0 }

type sortEngine struct {
	multi   bool
	entries []SortEntry
}

func newSortEngine(cols []Column, multi bool) *sortEngine {
	e := &sortEngine{multi: multi}
	e.loadDefaults(cols)
	return e
}

// loadDefaults activates the configured default directions.
// In single mode the first column with a default wins.
func (e *sortEngine) loadDefaults(cols []Column) {
	e.entries = nil
	for i := range cols {
		c := &cols[i]
		if c.Sort == nil || c.Sort.Default == types.NoDirection || !c.Sort.Default.Valid() {
			continue
		}
		e.entries = append(e.entries, SortEntry{Column: i, Field: c.sortField(), Direction: c.Sort.Default})
		if !e.multi {
			return
		}
	}
}

// set activates, updates or (with NoDirection) deactivates a column.
func (e *sortEngine) set(col int, field string, dir types.Direction) {
	if dir == types.NoDirection {
		e.entries = slices.DeleteFunc(e.entries, func(s SortEntry) bool { return s.Column == col })
		return
	}
	entry := SortEntry{Column: col, Field: field, Direction: dir}
	if !e.multi {
		e.entries = []SortEntry{entry}
		return
	}
	for i := range e.entries {
		if e.entries[i].Column == col {
			e.entries[i].Direction = dir
			return
		}
	}
	e.entries = append(e.entries, entry)
}

func (e *sortEngine) clear() {
	e.entries = nil
}

func (e *sortEngine) state() SortState {
	return SortState{Entries: slices.Clone(e.entries)}
}

// apply sorts a copy of rows by the active entries.
// Entries whose column has no comparator are skipped and reported once each.
func (e *sortEngine) apply(rows []keyed, cols []Column, log zerolog.Logger) []keyed {
	if len(e.entries) == 0 {
		return rows
	}

	type level struct {
		cmp  func(a, b types.Record) int
		desc bool
	}
	levels := make([]level, 0, len(e.entries))
	for _, s := range e.entries {
		if s.Column < 0 || s.Column >= len(cols) {
			continue
		}
		c := &cols[s.Column]
		if c.SortKind() != SortEnabled {
			log.Warn().
				Str("column", c.Index).
				Str("reason", "missing_compare").
				Msg("local sort requires a compare function; column ignored")
			continue
		}
		levels = append(levels, level{cmp: c.Sort.Compare, desc: s.Direction == types.Descend})
	}
	if len(levels) == 0 {
		return rows
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b keyed) int {
		for _, l := range levels {
			r := l.cmp(a.rec, b.rec)
			if l.desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
	return out
}
