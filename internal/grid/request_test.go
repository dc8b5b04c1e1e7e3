package grid

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solatis/sttable/internal/types"
)

func TestBuildRequest(t *testing.T) {
	twoSorts := SortState{Entries: []SortEntry{
		{Column: 1, Field: "name", Direction: types.Ascend},
		{Column: 0, Field: "age", Direction: types.Descend},
	}}
	filters := FilterState{Columns: []FilterEntry{
		{Column: 2, Key: "tag", Values: []any{"a", "b"}, Multiple: true},
		{Column: 3, Key: "level", Values: []any{1, 2}},
	}}

	tests := []struct {
		name   string
		sort   SortState
		filter FilterState
		extra  map[string]any
		rn     ReqRename
		multi  *MultiSort
		want   map[string]any
	}{
		{
			name: "defaults",
			want: map[string]any{"pi": 2, "ps": 10},
		},
		{
			name: "renamed keys",
			rn:   ReqRename{PI: "page", PS: "size", Sort: "order"},
			sort: SortState{Entries: twoSorts.Entries[:1]},
			want: map[string]any{"page": 2, "size": 10, "order": "name,ascend"},
		},
		{
			name: "single sort uses first entry",
			sort: twoSorts,
			want: map[string]any{"pi": 2, "ps": 10, "sort": "name,ascend"},
		},
		{
			name:  "multi sort list",
			sort:  twoSorts,
			multi: &MultiSort{},
			want:  map[string]any{"pi": 2, "ps": 10, "sort": []string{"name,ascend", "age,descend"}},
		},
		{
			name:  "multi sort joined with custom key",
			sort:  twoSorts,
			multi: &MultiSort{Key: "orderBy", Separator: "|"},
			want:  map[string]any{"pi": 2, "ps": 10, "orderBy": "name,ascend|age,descend"},
		},
		{
			name:   "filters",
			filter: filters,
			want:   map[string]any{"pi": 2, "ps": 10, "tag": []any{"a", "b"}, "level": "1,2"},
		},
		{
			name:  "extra params win",
			sort:  twoSorts,
			extra: map[string]any{"pi": 99, "q": "x"},
			want:  map[string]any{"pi": 99, "ps": 10, "sort": "name,ascend", "q": "x"},
		},
		{
			name:  "rename leaves values alone",
			rn:    ReqRename{PI: "p"},
			extra: map[string]any{"note": "pi"},
			want:  map[string]any{"p": 2, "ps": 10, "note": "pi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRequest(2, 10, tt.sort, tt.filter, tt.extra, tt.rn, tt.multi)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSortToken(t *testing.T) {
	tests := []struct {
		token  string
		field  string
		dir    types.Direction
		wantOK bool
	}{
		{"name,ascend", "name", types.Ascend, true},
		{"a.b,descend", "a.b", types.Descend, true},
		{"x,y,ascend", "x,y", types.Ascend, true},
		{"name", "", types.NoDirection, false},
		{"name,up", "", types.NoDirection, false},
		{",ascend", "", types.NoDirection, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			field, dir, ok := ParseSortToken(tt.token)
			if ok != tt.wantOK || field != tt.field || dir != tt.dir {
				t.Errorf("ParseSortToken(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.token, field, dir, ok, tt.field, tt.dir, tt.wantOK)
			}
		})
	}
}

// Property-based test: merged loads union their params, plain loads replace
func TestMergeParams_PropertyUnion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	toParams := func(keys []int, prefix string) map[string]any {
		m := make(map[string]any, len(keys))
		for _, k := range keys {
			m[prefix+string(rune('a'+k))] = k
		}
		return m
	}

	properties.Property("merge is union, replace is last", prop.ForAll(
		func(first, second []int) bool {
			a := toParams(first, "k")
			b := toParams(second, "k")

			merged := mergeParams(mergeParams(nil, a, true), b, true)
			for k, v := range b {
				if merged[k] != v {
					return false
				}
			}
			for k := range a {
				if _, ok := merged[k]; !ok {
					return false
				}
			}
			for k := range merged {
				_, inA := a[k]
				_, inB := b[k]
				if !inA && !inB {
					return false
				}
			}

			replaced := mergeParams(mergeParams(nil, a, false), b, false)
			return reflect.DeepEqual(replaced, b) || (len(b) == 0 && len(replaced) == 0)
		},
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}
