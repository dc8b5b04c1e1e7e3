package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/solatis/sttable/internal/core/config"
	"github.com/solatis/sttable/internal/core/db"
	"github.com/solatis/sttable/internal/core/httpsrc"
	"github.com/solatis/sttable/internal/core/server"
	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

// addTableFlags registers the data-source and request flags shared by
// query and export.
func addTableFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("file", "", "JSON file of records (front mode)")
	f.String("url", "", "HTTP endpoint (back mode)")
	f.String("grpc", "", "TableService address (back mode, needs --dataset)")
	f.String("dataset", "", "stored dataset, or the remote dataset with --grpc")
	f.String("columns", "", "JSON file of column specs")
	f.Int("pi", 1, "page index")
	f.Int("ps", 0, "page size (default table.ps)")
	f.StringArray("sort", nil, "sort criterion field,ascend|descend (repeatable)")
	f.StringArray("param", nil, "extra request param key=value; JSON values are decoded (repeatable)")
}

// columnSpec is the JSON form of a column. Comparators and predicates are
// derived from the column's index.
type columnSpec struct {
	Index          string                `json:"index"`
	Title          string                `json:"title"`
	Type           grid.ColumnType       `json:"type"`
	Default        string                `json:"default"`
	Width          string                `json:"width"`
	Fixed          grid.Fixed            `json:"fixed"`
	YN             *grid.YNOptions       `json:"yn"`
	NumberDigits   string                `json:"number_digits"`
	DateFormat     string                `json:"date_format"`
	CurrencySymbol string                `json:"currency_symbol"`
	Badges         map[string]grid.Badge `json:"badges"`
	Sort           *struct {
		Default types.Direction `json:"default"`
		Key     string          `json:"key"`
	} `json:"sort"`
	Filter *struct {
		Multiple bool              `json:"multiple"`
		Key      string            `json:"key"`
		Menus    []grid.FilterMenu `json:"menus"`
	} `json:"filter"`
}

func (s columnSpec) column() grid.Column {
	c := grid.Column{
		Index:          s.Index,
		Title:          s.Title,
		Type:           s.Type,
		Default:        s.Default,
		Width:          s.Width,
		Fixed:          s.Fixed,
		YN:             s.YN,
		NumberDigits:   s.NumberDigits,
		DateFormat:     s.DateFormat,
		CurrencySymbol: s.CurrencySymbol,
		Badges:         s.Badges,
	}
	if s.Sort != nil {
		c.Sort = &grid.SortSpec{
			Default: s.Sort.Default,
			Key:     s.Sort.Key,
			Compare: grid.CompareField(s.Index),
		}
	}
	if s.Filter != nil {
		path := grid.NormalizePath(s.Index)
		c.Filter = &grid.FilterSpec{
			Multiple: s.Filter.Multiple,
			Key:      s.Filter.Key,
			Menus:    s.Filter.Menus,
			Fn: func(menu grid.FilterMenu, rec types.Record) bool {
				v, _ := grid.Lookup(rec, path)
				return grid.EqualValues(v, menu.Value)
			},
		}
	}
	return c
}

func loadColumns(path string) ([]grid.Column, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	var specs []columnSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	cols := make([]grid.Column, len(specs))
	for i, s := range specs {
		cols[i] = s.column()
	}
	return cols, nil
}

// applySorts turns --sort criteria into column defaults so the first load
// is already sorted. Fields without a sortable column get a new one.
func applySorts(cols []grid.Column, criteria []string) ([]grid.Column, error) {
	for _, token := range criteria {
		field, dir, ok := grid.ParseSortToken(token)
		if !ok {
			return nil, fmt.Errorf("invalid --sort %q (want field,ascend|descend)", token)
		}
		found := false
		for i := range cols {
			c := &cols[i]
			if c.Sort == nil {
				continue
			}
			if c.Sort.Key == field || (c.Sort.Key == "" && c.Index == field) {
				c.Sort.Default = dir
				found = true
				break
			}
		}
		if !found {
			cols = append(cols, grid.Column{
				Index: field,
				Title: field,
				Sort:  &grid.SortSpec{Default: dir, Compare: grid.CompareField(field)},
			})
		}
	}
	return cols, nil
}

func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		params[key] = v
	}
	return params, nil
}

// tableWire mirrors the request naming of table options for the store.
func tableWire(tc config.TableConfig) db.Wire {
	w := db.Wire{Rename: tc.ReqRename}
	if tc.MultiSort {
		w.MultiSort = &grid.MultiSort{Key: tc.MultiSortKey, Separator: tc.MultiSortSeparator}
	}
	return w
}

// loadedTable is a table after its first load.
type loadedTable struct {
	*grid.Table
	close func()
}

// buildTable resolves the source flags, builds the table and loads the
// requested page.
func buildTable(cmd *cobra.Command, rt *runtime) (*loadedTable, error) {
	flags := cmd.Flags()
	file, _ := flags.GetString("file")
	remoteURL, _ := flags.GetString("url")
	grpcAddr, _ := flags.GetString("grpc")
	dataset, _ := flags.GetString("dataset")
	columnsPath, _ := flags.GetString("columns")
	pi, _ := flags.GetInt("pi")
	ps, _ := flags.GetInt("ps")
	sorts, _ := flags.GetStringArray("sort")
	rawParams, _ := flags.GetStringArray("param")

	var cols []grid.Column
	if columnsPath != "" {
		var err error
		if cols, err = loadColumns(columnsPath); err != nil {
			return nil, err
		}
	}
	cols, err := applySorts(cols, sorts)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(rawParams)
	if err != nil {
		return nil, err
	}

	opts := rt.cfg.Table.Options(cols)
	if ps > 0 {
		opts.PS = ps
	}
	if len(sorts) > 1 && opts.MultiSort == nil {
		opts.MultiSort = &grid.MultiSort{}
	}

	options := []grid.Option{grid.WithLogger(rt.log)}
	closeFn := func() {}

	var data grid.Data
	switch {
	case file != "":
		records, err := readRecords(cmd, file, rt.cfg.Table.ResRename)
		if err != nil {
			return nil, err
		}
		data = grid.Collection(records)
	case remoteURL != "":
		hc := rt.cfg.HTTP
		data = grid.Remote(remoteURL)
		options = append(options, grid.WithFetcher(httpsrc.New(hc.Timeout,
			httpsrc.WithRateLimit(hc.RateLimit, hc.Burst),
			httpsrc.WithToken(hc.Token),
			httpsrc.WithLogger(rt.log),
		)))
	case grpcAddr != "":
		if dataset == "" {
			return nil, errors.New("--grpc requires --dataset")
		}
		conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", grpcAddr, err)
		}
		closeFn = func() { conn.Close() }
		data = grid.Remote(dataset)
		options = append(options, grid.WithFetcher(server.NewFetcher(conn, server.WithToken(rt.cfg.Server.Token))))
	case dataset != "":
		store, closeStore, err := rt.openStore(cmd)
		if err != nil {
			return nil, err
		}
		closeFn = closeStore
		data = grid.Custom(store.Source(dataset, db.Wire{Rename: opts.Req, MultiSort: opts.MultiSort}))
	default:
		return nil, errors.New("one of --file, --url, --grpc or --dataset is required")
	}

	tbl, err := grid.New(data, opts, options...)
	if err != nil {
		closeFn()
		return nil, err
	}
	if err := tbl.Load(cmd.Context(), pi, params); err != nil {
		closeFn()
		return nil, err
	}
	return &loadedTable{Table: tbl, close: closeFn}, nil
}
