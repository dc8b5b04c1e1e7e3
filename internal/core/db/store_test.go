package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	s, err := NewStore(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

// people: ids 1..n, status alternating active/inactive, age descending.
func people(n int) []types.Record {
	rows := make([]types.Record, n)
	for i := range rows {
		status := "active"
		if i%2 == 1 {
			status = "inactive"
		}
		rows[i] = types.Record{
			"id":      i + 1,
			"name":    fmt.Sprintf("p%d", i+1),
			"status":  status,
			"profile": map[string]any{"age": 50 - i},
		}
	}
	return rows
}

func ids(res grid.Result) []float64 {
	out := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		out[i], _ = r["id"].(float64)
	}
	return out
}

func TestStore_ImportAndDatasets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ds, err := s.Import(ctx, "people", people(5), "id")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if ds.RowCount != 5 || ds.KeyPath != "id" {
		t.Errorf("Import() = %+v", ds)
	}

	// re-import replaces
	if _, err := s.Import(ctx, "people", people(3), ""); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if _, err := s.Import(ctx, "other", people(1), ""); err != nil {
		t.Fatalf("Import(other) error = %v", err)
	}

	list, err := s.Datasets(ctx)
	if err != nil {
		t.Fatalf("Datasets() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "other" || list[1].Name != "people" || list[1].RowCount != 3 {
		t.Errorf("Datasets() = %+v", list)
	}

	res, err := s.Query(ctx, "people", Query{PI: 1, PS: 10})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if res.Total != 3 || len(res.Rows) != 3 {
		t.Errorf("Query() total=%d rows=%d, want 3/3", res.Total, len(res.Rows))
	}
}

func TestStore_ImportRequiresName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Import(context.Background(), "", people(1), ""); err == nil {
		t.Error("Import(\"\") error = nil")
	}
}

func TestStore_UnknownDataset(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Query(context.Background(), "missing", Query{PI: 1, PS: 10})
	if !errors.Is(err, types.ErrUnknownDataset) {
		t.Errorf("Query() error = %v, want ErrUnknownDataset", err)
	}
}

func TestStore_Query(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Import(ctx, "people", people(7), "id"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	tests := []struct {
		name      string
		query     Query
		wantIDs   []float64
		wantTotal int
	}{
		{
			name:      "paged first page",
			query:     Query{PI: 1, PS: 3},
			wantIDs:   []float64{1, 2, 3},
			wantTotal: 7,
		},
		{
			name:      "paged last partial page",
			query:     Query{PI: 3, PS: 3},
			wantIDs:   []float64{7},
			wantTotal: 7,
		},
		{
			name:      "paged beyond end",
			query:     Query{PI: 5, PS: 3},
			wantIDs:   []float64{},
			wantTotal: 7,
		},
		{
			name:      "filter",
			query:     Query{PI: 1, PS: 10, Filters: map[string][]any{"status": {"inactive"}}},
			wantIDs:   []float64{2, 4, 6},
			wantTotal: 3,
		},
		{
			name:      "filter any of",
			query:     Query{PI: 1, PS: 10, Filters: map[string][]any{"id": {"1", 3.0}}},
			wantIDs:   []float64{1, 3},
			wantTotal: 2,
		},
		{
			name:      "sort nested ascend",
			query:     Query{PI: 1, PS: 2, Sort: []grid.SortEntry{{Field: "profile.age", Direction: types.Ascend}}},
			wantIDs:   []float64{7, 6},
			wantTotal: 7,
		},
		{
			name: "sort by status then id descend",
			query: Query{PI: 1, PS: 4, Sort: []grid.SortEntry{
				{Field: "status", Direction: types.Ascend},
				{Field: "id", Direction: types.Descend},
			}},
			wantIDs:   []float64{7, 5, 3, 1},
			wantTotal: 7,
		},
		{
			name: "filter and sort page two",
			query: Query{PI: 2, PS: 2,
				Filters: map[string][]any{"status": {"active"}},
				Sort:    []grid.SortEntry{{Field: "id", Direction: types.Descend}}},
			wantIDs:   []float64{3, 1},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Query(ctx, "people", tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got := ids(res); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", res.Total, tt.wantTotal)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		wire   Wire
		want   Query
	}{
		{
			name:   "defaults",
			params: map[string]any{},
			want:   Query{PI: 1, PS: types.DefaultPageSize},
		},
		{
			name:   "single sort and filters",
			params: map[string]any{"pi": 2, "ps": 5, "sort": "age,descend", "status": "a", "tags": []any{"x", "y"}, "q": ""},
			want: Query{
				PI: 2, PS: 5,
				Sort:    []grid.SortEntry{{Field: "age", Direction: types.Descend}},
				Filters: map[string][]any{"status": {"a"}, "tags": {"x", "y"}},
			},
		},
		{
			name:   "renamed keys",
			params: map[string]any{"page": 3.0, "size": 20.0, "order": "name,ascend"},
			wire:   Wire{Rename: grid.ReqRename{PI: "page", PS: "size", Sort: "order"}},
			want: Query{
				PI: 3, PS: 20,
				Sort: []grid.SortEntry{{Field: "name", Direction: types.Ascend}},
			},
		},
		{
			name:   "multi sort list",
			params: map[string]any{"pi": 1, "ps": 10, "sort": []string{"a,ascend", "bad", "b,descend"}},
			wire:   Wire{MultiSort: &grid.MultiSort{}},
			want: Query{
				PI: 1, PS: 10,
				Sort: []grid.SortEntry{{Field: "a", Direction: types.Ascend}, {Field: "b", Direction: types.Descend}},
			},
		},
		{
			name:   "multi sort joined",
			params: map[string]any{"pi": 1, "ps": 10, "s": "a,ascend-b,descend"},
			wire:   Wire{MultiSort: &grid.MultiSort{Key: "s", Separator: "-"}},
			want: Query{
				PI: 1, PS: 10,
				Sort: []grid.SortEntry{{Field: "a", Direction: types.Ascend}, {Field: "b", Direction: types.Descend}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.params, tt.wire)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Store.Source must answer exactly what the request builder asked for.
func TestStore_SourceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Import(ctx, "people", people(6), "id"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	cols := []grid.Column{
		{Index: "id", Title: "ID", Sort: &grid.SortSpec{}},
		{Index: "status", Title: "Status", Filter: &grid.FilterSpec{
			Menus: []grid.FilterMenu{{Text: "Active", Value: "active"}, {Text: "Inactive", Value: "inactive"}},
		}},
	}
	tbl, err := grid.New(grid.Custom(s.Source("people", Wire{})), grid.Options{PS: 2, Columns: cols})
	if err != nil {
		t.Fatalf("grid.New() error = %v", err)
	}

	if err := tbl.Sort(ctx, 0, types.Descend); err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if err := tbl.FilterToggle(1, 0, true); err != nil {
		t.Fatalf("FilterToggle() error = %v", err)
	}
	if err := tbl.FilterConfirm(ctx, 1); err != nil {
		t.Fatalf("FilterConfirm() error = %v", err)
	}

	v := tbl.View()
	if v.Total != 3 {
		t.Errorf("Total = %d, want 3", v.Total)
	}
	var got []float64
	for _, r := range v.Rows {
		got = append(got, r.Record["id"].(float64))
	}
	if want := []float64{5, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestStore_CheckSchema(t *testing.T) {
	db := openTestDB(t)
	s, err := NewStore(db, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.CheckSchema(ctx); err == nil {
		t.Error("CheckSchema() error = nil before migrating")
	}
	if err := MigrateUp(db); err != nil {
		t.Fatal(err)
	}
	if err := s.CheckSchema(ctx); err != nil {
		t.Errorf("CheckSchema() error = %v after migrating", err)
	}
}
