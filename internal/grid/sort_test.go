package grid

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/types"
)

func byField(path string) func(a, b types.Record) int {
	return CompareField(path)
}

func keyedRows(recs ...types.Record) []keyed {
	out := make([]keyed, len(recs))
	for i, r := range recs {
		out[i] = keyed{key: types.RowKey(ToText(r["id"])), rec: r}
	}
	return out
}

func ids(rows []keyed) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r.key)
	}
	return out
}

func countWarnings(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), `"level":"warn"`)
}

func TestSortEngine_Defaults(t *testing.T) {
	cols := []Column{
		{Index: "a", Sort: &SortSpec{Default: types.Ascend, Compare: byField("a")}},
		{Index: "b", Sort: &SortSpec{Default: types.Descend, Compare: byField("b")}},
		{Index: "c", Sort: &SortSpec{Compare: byField("c")}},
	}

	tests := []struct {
		name  string
		multi bool
		want  []SortEntry
	}{
		{
			name: "single keeps first default",
			want: []SortEntry{{Column: 0, Field: "a", Direction: types.Ascend}},
		},
		{
			name:  "multi keeps all defaults in column order",
			multi: true,
			want: []SortEntry{
				{Column: 0, Field: "a", Direction: types.Ascend},
				{Column: 1, Field: "b", Direction: types.Descend},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSortEngine(cols, tt.multi)
			if got := e.state().Entries; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("entries = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortEngine_SingleReplaces(t *testing.T) {
	e := newSortEngine(nil, false)
	e.set(0, "a", types.Descend)
	e.set(1, "b", types.Ascend)

	want := []SortEntry{{Column: 1, Field: "b", Direction: types.Ascend}}
	if got := e.state().Entries; !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestSortEngine_MultiInsertionOrder(t *testing.T) {
	e := newSortEngine(nil, true)
	e.set(2, "c", types.Descend)
	e.set(0, "a", types.Ascend)
	e.set(2, "c", types.Ascend) // update keeps priority slot

	want := []SortEntry{
		{Column: 2, Field: "c", Direction: types.Ascend},
		{Column: 0, Field: "a", Direction: types.Ascend},
	}
	if got := e.state().Entries; !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	e.set(2, "c", types.NoDirection)
	want = []SortEntry{{Column: 0, Field: "a", Direction: types.Ascend}}
	if got := e.state().Entries; !reflect.DeepEqual(got, want) {
		t.Errorf("after deactivate entries = %v, want %v", got, want)
	}

	e.clear()
	if e.state().Active() {
		t.Error("Active() after clear = true")
	}
}

func TestSortEngine_Apply(t *testing.T) {
	rows := keyedRows(
		types.Record{"id": "1", "g": "x", "n": 3},
		types.Record{"id": "2", "g": "y", "n": 1},
		types.Record{"id": "3", "g": "x", "n": 2},
		types.Record{"id": "4", "g": "y", "n": 4},
	)
	cols := []Column{
		{Index: "g", Sort: &SortSpec{Compare: byField("g")}},
		{Index: "n", Sort: &SortSpec{Compare: byField("n")}},
	}

	tests := []struct {
		name    string
		multi   bool
		entries []SortEntry
		want    []string
	}{
		{
			name:    "ascend",
			entries: []SortEntry{{Column: 1, Direction: types.Ascend}},
			want:    []string{"2", "3", "1", "4"},
		},
		{
			name:    "descend inverts",
			entries: []SortEntry{{Column: 1, Direction: types.Descend}},
			want:    []string{"4", "1", "3", "2"},
		},
		{
			name:    "stable on ties",
			entries: []SortEntry{{Column: 0, Direction: types.Ascend}},
			want:    []string{"1", "3", "2", "4"},
		},
		{
			name:  "priority order",
			multi: true,
			entries: []SortEntry{
				{Column: 0, Direction: types.Descend},
				{Column: 1, Direction: types.Ascend},
			},
			want: []string{"2", "4", "3", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &sortEngine{multi: tt.multi, entries: tt.entries}
			got := e.apply(rows, cols, zerolog.Nop())
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("order = %v, want %v", ids(got), tt.want)
			}
		})
	}

	if !reflect.DeepEqual(ids(rows), []string{"1", "2", "3", "4"}) {
		t.Errorf("apply mutated input: %v", ids(rows))
	}
}

func TestSortEngine_MissingCompareWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	rows := keyedRows(
		types.Record{"id": "b"},
		types.Record{"id": "a"},
		types.Record{"id": "c"},
	)
	cols := []Column{{Index: "id", Sort: &SortSpec{}}}

	e := newSortEngine(cols, false)
	e.set(0, "id", types.Ascend)
	got := e.apply(rows, cols, log)

	if n := countWarnings(&buf); n != 1 {
		t.Errorf("warnings = %d, want 1; log: %s", n, buf.String())
	}
	if !strings.Contains(buf.String(), `"reason":"missing_compare"`) {
		t.Errorf("warning lacks reason field: %s", buf.String())
	}
	if !reflect.DeepEqual(ids(got), []string{"b", "a", "c"}) {
		t.Errorf("order = %v, want unchanged", ids(got))
	}
}
