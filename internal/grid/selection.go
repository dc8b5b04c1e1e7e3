// internal/grid/selection.go
package grid

import (
	"slices"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Selection engine.
 *
 * Selection lives in side tables keyed by RowKey so it survives page
 * navigation and local recomputes without touching records. A key present
 * in the checkbox table has been touched (CheckOn or CheckOff); absent keys
 * are CheckUnset. Checked records are kept in the order they were checked.
 *
 * Radio selection is a single key for the whole table, not per page.
 */

// CheckState is a row's checkbox state.
type CheckState int8

const (
	CheckUnset CheckState = iota
	CheckOn
	CheckOff
)

// On reports whether the state is checked.
func (s CheckState) On() bool { return s == CheckOn }

// MarshalText encodes the state as "", "true" or "false".
func (s CheckState) MarshalText() ([]byte, error) {
	switch s {
	case CheckOn:
		return []byte("true"), nil
	case CheckOff:
		return []byte("false"), nil
	default:
		return []byte(""), nil
	}
}

// Row is one visible row with its engine-attached state.
type Row struct {
	Key      types.RowKey `json:"key"`
	Index    int          `json:"index"`
	Record   types.Record `json:"record"`
	Checked  CheckState   `json:"checked"`
	Radio    bool         `json:"radio"`
	Disabled bool         `json:"disabled"`
}

type selectionEngine struct {
	checked map[types.RowKey]bool
	order   []types.RowKey
	records map[types.RowKey]types.Record

	radioKey types.RowKey
	radioRec types.Record
	radioOn  bool
}

func newSelectionEngine() *selectionEngine {
	return &selectionEngine{
		checked: make(map[types.RowKey]bool),
		records: make(map[types.RowKey]types.Record),
	}
}

func (e *selectionEngine) checkState(key types.RowKey) CheckState {
	on, touched := e.checked[key]
	switch {
	case !touched:
		return CheckUnset
	case on:
		return CheckOn
	default:
		return CheckOff
	}
}

func (e *selectionEngine) setChecked(key types.RowKey, rec types.Record, on bool) {
	was := e.checked[key]
	e.checked[key] = on
	switch {
	case on && !was:
		e.order = append(e.order, key)
		e.records[key] = rec
	case on:
		e.records[key] = rec
	case was:
		e.order = slices.DeleteFunc(e.order, func(k types.RowKey) bool { return k == key })
		delete(e.records, key)
	}
}

// checkedRecords returns all checked records in selection order.
func (e *selectionEngine) checkedRecords() []types.Record {
	out := make([]types.Record, 0, len(e.order))
	for _, k := range e.order {
		out = append(out, e.records[k])
	}
	return out
}

// checkAll toggles the enabled rows of a page.
// If every enabled row is checked they are all cleared, otherwise all are
// checked. Returns the new state; a page without enabled rows stays
// unchecked.
func (e *selectionEngine) checkAll(rows []*Row) bool {
	enabled := enabledRows(rows)
	all := len(enabled) > 0
	for _, r := range enabled {
		if !e.checked[r.Key] {
			all = false
			break
		}
	}
	if len(enabled) == 0 {
		return false
	}
	e.setPage(enabled, !all)
	return !all
}

func (e *selectionEngine) setPage(rows []*Row, on bool) {
	for _, r := range rows {
		if r.Disabled {
			continue
		}
		e.setChecked(r.Key, r.Record, on)
	}
}

// radio checks key, or unchecks it when it is already the radio row.
// Returns the radio record (nil when nothing is checked).
func (e *selectionEngine) radio(key types.RowKey, rec types.Record) types.Record {
	if e.radioOn && e.radioKey == key {
		e.clearRadio()
		return nil
	}
	e.radioKey, e.radioRec, e.radioOn = key, rec, true
	return rec
}

// clearCheck marks every touched key unchecked.
func (e *selectionEngine) clearCheck() {
	for k := range e.checked {
		e.checked[k] = false
	}
	e.order = nil
	clear(e.records)
}

// drop forgets every checkbox and radio entry under keys. It reports
// whether the checked records or the radio record changed.
func (e *selectionEngine) drop(keys map[types.RowKey]struct{}) (checkChanged, radioChanged bool) {
	for k := range keys {
		if e.checked[k] {
			checkChanged = true
		}
		delete(e.checked, k)
		delete(e.records, k)
	}
	if checkChanged {
		e.order = slices.DeleteFunc(e.order, func(k types.RowKey) bool {
			_, ok := keys[k]
			return ok
		})
	}
	if _, ok := keys[e.radioKey]; ok && e.radioOn {
		e.clearRadio()
		radioChanged = true
	}
	return checkChanged, radioChanged
}

func (e *selectionEngine) radioRecord() types.Record {
	return e.radioRec
}

func (e *selectionEngine) clearRadio() {
	e.radioKey, e.radioRec, e.radioOn = "", nil, false
}

// decorate writes the selection state onto rows.
func (e *selectionEngine) decorate(rows []*Row) {
	for _, r := range rows {
		r.Checked = e.checkState(r.Key)
		r.Radio = e.radioOn && e.radioKey == r.Key
	}
}

// commit stores the Checked fields rows carry after a selection rule ran.
// Rows left CheckUnset keep their stored state.
func (e *selectionEngine) commit(rows []*Row) {
	for _, r := range rows {
		if r.Disabled || r.Checked == CheckUnset {
			continue
		}
		e.setChecked(r.Key, r.Record, r.Checked.On())
	}
}

func enabledRows(rows []*Row) []*Row {
	out := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if !r.Disabled {
			out = append(out, r)
		}
	}
	return out
}
