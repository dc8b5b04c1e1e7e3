package grid

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/types"
)

func statusColumn(multiple bool, fn func(FilterMenu, types.Record) bool) Column {
	return Column{
		Index: "status",
		Filter: &FilterSpec{
			Multiple: multiple,
			Menus: []FilterMenu{
				{Text: "Open", Value: "open"},
				{Text: "Closed", Value: "closed"},
				{Text: "Draft", Value: "draft"},
			},
			Fn: fn,
		},
	}
}

func statusEquals(m FilterMenu, rec types.Record) bool {
	return EqualValues(rec["status"], m.Value)
}

func checks(menus []FilterMenu) []bool {
	out := make([]bool, len(menus))
	for i, m := range menus {
		out[i] = m.Checked
	}
	return out
}

func TestFilterEngine_StagingIsNotApplied(t *testing.T) {
	cols := []Column{statusColumn(true, statusEquals)}
	e := newFilterEngine(cols)

	e.toggle(0, true, 1, true)
	if got := checks(e.menus(cols, 0)); !reflect.DeepEqual(got, []bool{false, true, false}) {
		t.Errorf("staged = %v", got)
	}
	if e.state(cols).Active() {
		t.Fatal("state active before confirm")
	}

	e.confirm(0)
	want := FilterState{Columns: []FilterEntry{{Column: 0, Key: "status", Values: []any{"closed"}, Multiple: true}}}
	if got := e.state(cols); !reflect.DeepEqual(got, want) {
		t.Errorf("state = %+v, want %+v", got, want)
	}
}

func TestFilterEngine_SingleModeUnchecksSiblings(t *testing.T) {
	cols := []Column{statusColumn(false, statusEquals)}
	e := newFilterEngine(cols)

	e.toggle(0, false, 0, true)
	e.toggle(0, false, 2, true)
	if got := checks(e.menus(cols, 0)); !reflect.DeepEqual(got, []bool{false, false, true}) {
		t.Errorf("single staged = %v, want only last checked", got)
	}

	e.toggle(0, false, 2, false)
	if got := checks(e.menus(cols, 0)); !reflect.DeepEqual(got, []bool{false, false, false}) {
		t.Errorf("single staged after uncheck = %v", got)
	}
}

func TestFilterEngine_MultipleIsIndependent(t *testing.T) {
	cols := []Column{statusColumn(true, statusEquals)}
	e := newFilterEngine(cols)

	e.toggle(0, true, 0, true)
	e.toggle(0, true, 2, true)
	if got := checks(e.menus(cols, 0)); !reflect.DeepEqual(got, []bool{true, false, true}) {
		t.Errorf("multi staged = %v", got)
	}
}

func TestFilterEngine_InitialChecksApplied(t *testing.T) {
	col := statusColumn(false, statusEquals)
	col.Filter.Menus[0].Checked = true
	col.Filter.Menus[1].Checked = true
	cols := []Column{col}

	st := newFilterEngine(cols).state(cols)
	if len(st.Columns) != 1 || !reflect.DeepEqual(st.Columns[0].Values, []any{"open"}) {
		t.Errorf("initial state = %+v, want only first checked menu in single mode", st)
	}
}

func TestFilterEngine_ClearColumnCommits(t *testing.T) {
	cols := []Column{statusColumn(true, statusEquals)}
	e := newFilterEngine(cols)
	e.toggle(0, true, 0, true)
	e.confirm(0)

	e.clearColumn(0)
	if e.state(cols).Active() {
		t.Error("state active after clearColumn")
	}
	if got := checks(e.menus(cols, 0)); !reflect.DeepEqual(got, []bool{false, false, false}) {
		t.Errorf("staged after clearColumn = %v", got)
	}
}

func TestFilterEngine_Apply(t *testing.T) {
	rows := keyedRows(
		types.Record{"id": "1", "status": "open", "owner": "ann"},
		types.Record{"id": "2", "status": "closed", "owner": "bob"},
		types.Record{"id": "3", "status": "draft", "owner": "ann"},
		types.Record{"id": "4", "status": "open", "owner": "bob"},
	)
	owner := Column{
		Index: "owner",
		Filter: &FilterSpec{
			Menus: []FilterMenu{{Text: "Ann", Value: "ann"}, {Text: "Bob", Value: "bob"}},
			Fn:    func(m FilterMenu, rec types.Record) bool { return rec["owner"] == m.Value },
		},
	}
	cols := []Column{statusColumn(true, statusEquals), owner}

	tests := []struct {
		name   string
		status []int
		owner  []int
		want   []string
	}{
		{"no filters", nil, nil, []string{"1", "2", "3", "4"}},
		{"any menu matches", []int{0, 2}, nil, []string{"1", "3", "4"}},
		{"columns combine with and", []int{0}, []int{1}, []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFilterEngine(cols)
			for _, m := range tt.status {
				e.toggle(0, true, m, true)
			}
			for _, m := range tt.owner {
				e.toggle(1, false, m, true)
			}
			e.confirm(0)
			e.confirm(1)

			got := e.apply(rows, cols, zerolog.Nop())
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("rows = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestFilterEngine_MissingFnIsNoop(t *testing.T) {
	var buf bytes.Buffer
	rows := keyedRows(types.Record{"id": "1", "status": "open"}, types.Record{"id": "2", "status": "closed"})
	cols := []Column{statusColumn(true, nil)}

	e := newFilterEngine(cols)
	e.toggle(0, true, 0, true)
	e.confirm(0)
	got := e.apply(rows, cols, zerolog.New(&buf))

	if len(got) != 2 {
		t.Errorf("rows = %v, want all rows kept", ids(got))
	}
	if n := countWarnings(&buf); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), `"reason":"missing_filter_fn"`) {
		t.Errorf("warning lacks reason field: %s", buf.String())
	}
}
