package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

// Dataset is the bookkeeping row of one imported dataset.
type Dataset struct {
	Name       string `db:"name" json:"name"`
	KeyPath    string `db:"key_path" json:"key_path"`
	RowCount   int    `db:"row_count" json:"row_count"`
	ImportedAt string `db:"imported_at" json:"imported_at"`
}

// Wire names the request params a Store reads. It mirrors the table options
// that produced the params.
type Wire struct {
	Rename    grid.ReqRename
	MultiSort *grid.MultiSort
}

// Query is a parsed back-end page request.
type Query struct {
	PI      int
	PS      int
	Sort    []grid.SortEntry
	Filters map[string][]any
}

// Paged reports whether the query can be answered with LIMIT/OFFSET alone.
func (q Query) Paged() bool {
	return len(q.Sort) == 0 && len(q.Filters) == 0
}

// ParseQuery reads the wire params built by grid.BuildRequest.
// Every param other than pi, ps and sort is an equality filter on the field
// path of the same name; slice values match any element. nil and "" values
// impose no constraint. Malformed sort tokens are skipped.
func ParseQuery(params map[string]any, wire Wire) Query {
	rn := wire.Rename.WithDefaults()
	sortKey := rn.Sort
	sep := ""
	if wire.MultiSort != nil {
		if wire.MultiSort.Key != "" {
			sortKey = wire.MultiSort.Key
		}
		sep = wire.MultiSort.Separator
	}

	q := Query{
		PI: max(grid.ToCount(params[rn.PI]), 1),
		PS: grid.ToCount(params[rn.PS]),
	}
	if q.PS < 1 {
		q.PS = types.DefaultPageSize
	}

	for _, token := range sortTokens(params[sortKey], sep) {
		field, dir, ok := grid.ParseSortToken(token)
		if !ok {
			continue
		}
		q.Sort = append(q.Sort, grid.SortEntry{Field: field, Direction: dir})
	}

	for key, value := range params {
		if key == rn.PI || key == rn.PS || key == sortKey {
			continue
		}
		values := filterValues(value)
		if len(values) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string][]any)
		}
		q.Filters[key] = values
	}

	return q
}

func sortTokens(value any, sep string) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		if sep != "" {
			return strings.Split(v, sep)
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, grid.ToText(item))
		}
		return out
	default:
		return []string{grid.ToText(v)}
	}
}

func filterValues(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []any{v}
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []any:
		return v
	default:
		return []any{v}
	}
}

// Store serves imported datasets as back-end table sources.
type Store struct {
	db  *sqlx.DB
	q   *Queries
	log zerolog.Logger
}

// NewStore wraps a migrated database.
func NewStore(db *sqlx.DB, log zerolog.Logger) (*Store, error) {
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, q: q, log: log.With().Str("component", "store").Logger()}, nil
}

// SchemaMigration is the migration a Store needs applied.
const SchemaMigration = "001_initial_schema.sql"

// CheckSchema fails unless the store schema migration has been applied.
func (s *Store) CheckSchema(ctx context.Context) error {
	var id string
	if err := s.q.Get(ctx, "get-migration", &id, SchemaMigration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("migration %s not applied - run 'sttable migrate' first", SchemaMigration)
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	return nil
}

// Import replaces dataset with records in one transaction.
// Row keys come from keyPath when it resolves, else the row position.
func (s *Store) Import(ctx context.Context, dataset string, records []types.Record, keyPath string) (_ Dataset, err error) {
	if dataset == "" {
		return Dataset{}, errors.New("dataset name required")
	}

	ds := Dataset{
		Name:       dataset,
		KeyPath:    keyPath,
		RowCount:   len(records),
		ImportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to begin import of %s: %w", dataset, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = s.q.ExecTx(ctx, tx, "delete-dataset-rows", dataset); err != nil {
		return Dataset{}, fmt.Errorf("failed to clear dataset %s: %w", dataset, err)
	}
	if _, err = s.q.ExecTx(ctx, tx, "delete-dataset", dataset); err != nil {
		return Dataset{}, fmt.Errorf("failed to clear dataset %s: %w", dataset, err)
	}
	if _, err = s.q.ExecTx(ctx, tx, "insert-dataset", ds.Name, ds.KeyPath, ds.RowCount, ds.ImportedAt); err != nil {
		return Dataset{}, fmt.Errorf("failed to record dataset %s: %w", dataset, err)
	}

	for i, rec := range records {
		payload, jerr := json.Marshal(rec)
		if jerr != nil {
			err = fmt.Errorf("row %d: %w", i, jerr)
			return Dataset{}, err
		}
		if _, err = s.q.ExecTx(ctx, tx, "insert-dataset-row", dataset, i, rowKey(rec, keyPath, i), string(payload)); err != nil {
			return Dataset{}, fmt.Errorf("failed to insert row %d of %s: %w", i, dataset, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Dataset{}, fmt.Errorf("failed to commit dataset %s: %w", dataset, err)
	}

	s.log.Info().Str("dataset", dataset).Int("rows", ds.RowCount).Msg("dataset imported")
	return ds, nil
}

func rowKey(rec types.Record, keyPath string, i int) string {
	if keyPath != "" {
		if v, ok := grid.Lookup(rec, grid.NormalizePath(keyPath)); ok && v != nil {
			return grid.ToText(v)
		}
	}
	return strconv.Itoa(i)
}

// Dataset returns the bookkeeping row of name.
func (s *Store) Dataset(ctx context.Context, name string) (Dataset, error) {
	var ds Dataset
	if err := s.q.Get(ctx, "get-dataset", &ds, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dataset{}, fmt.Errorf("%w: %s", types.ErrUnknownDataset, name)
		}
		return Dataset{}, fmt.Errorf("failed to look up dataset %s: %w", name, err)
	}
	return ds, nil
}

// Datasets lists imported datasets by name.
func (s *Store) Datasets(ctx context.Context) ([]Dataset, error) {
	var out []Dataset
	if err := s.q.Select(ctx, "list-datasets", &out); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return out, nil
}

// Query answers one page request against dataset.
// Without sort or filters the page is read with LIMIT/OFFSET and the total
// comes from the bookkeeping row. Otherwise the dataset is filtered and
// stably sorted in import order before slicing.
func (s *Store) Query(ctx context.Context, dataset string, q Query) (grid.Result, error) {
	ds, err := s.Dataset(ctx, dataset)
	if err != nil {
		return grid.Result{}, err
	}

	log := s.log.With().Str("dataset", dataset).Int("pi", q.PI).Int("ps", q.PS).Logger()

	if q.Paged() {
		var payloads []string
		if err := s.q.Select(ctx, "page-dataset-rows", &payloads, dataset, q.PS, (q.PI-1)*q.PS); err != nil {
			return grid.Result{}, fmt.Errorf("failed to read page of %s: %w", dataset, err)
		}
		rows, err := decodeRows(payloads)
		if err != nil {
			return grid.Result{}, err
		}
		log.Debug().Bool("paged", true).Int("rows", len(rows)).Msg("query served")
		return grid.Result{Rows: rows, Total: ds.RowCount}, nil
	}

	var payloads []string
	if err := s.q.Select(ctx, "all-dataset-rows", &payloads, dataset); err != nil {
		return grid.Result{}, fmt.Errorf("failed to read %s: %w", dataset, err)
	}
	rows, err := decodeRows(payloads)
	if err != nil {
		return grid.Result{}, err
	}

	rows = filterRows(rows, q.Filters)
	sortRows(rows, q.Sort)

	total := len(rows)
	start := min((q.PI-1)*q.PS, total)
	end := min(start+q.PS, total)

	log.Debug().Bool("paged", false).Int("total", total).Int("rows", end-start).Msg("query served")
	return grid.Result{Rows: rows[start:end], Total: total}, nil
}

// Source returns a back-end table source over dataset.
func (s *Store) Source(dataset string, wire Wire) grid.Source {
	return grid.SourceFunc(func(ctx context.Context, req grid.Request) (grid.Result, error) {
		return s.Query(ctx, dataset, ParseQuery(req.Params, wire))
	})
}

func decodeRows(payloads []string) ([]types.Record, error) {
	rows := make([]types.Record, len(payloads))
	for i, p := range payloads {
		if err := json.Unmarshal([]byte(p), &rows[i]); err != nil {
			return nil, fmt.Errorf("corrupt row payload at position %d: %w", i, err)
		}
	}
	return rows, nil
}

// filterRows keeps rows matching every filter; within one filter any value
// may match.
func filterRows(rows []types.Record, filters map[string][]any) []types.Record {
	if len(filters) == 0 {
		return rows
	}
	out := make([]types.Record, 0, len(rows))
	for _, rec := range rows {
		if matchesAll(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec types.Record, filters map[string][]any) bool {
	for path, values := range filters {
		got, _ := grid.Lookup(rec, grid.NormalizePath(path))
		if !slices.ContainsFunc(values, func(v any) bool { return grid.EqualValues(got, v) }) {
			return false
		}
	}
	return true
}

func sortRows(rows []types.Record, entries []grid.SortEntry) {
	if len(entries) == 0 {
		return
	}
	cmps := make([]func(a, b types.Record) int, len(entries))
	for i, e := range entries {
		cmps[i] = grid.CompareField(e.Field)
	}
	slices.SortStableFunc(rows, func(a, b types.Record) int {
		for i, e := range entries {
			c := cmps[i](a, b)
			if e.Direction == types.Descend {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
