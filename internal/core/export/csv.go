// Package export implements the engine's export collaborator.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

// CSV writes exported rows as CSV: one header row of column titles, then
// one row per record with the cell text the table would display.
// Selection columns and columns that only hold buttons are left out.
type CSV struct {
	w io.Writer
}

// NewCSV creates a CSV exporter writing to w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: w}
}

// Export writes rows under cols.
func (e *CSV) Export(ctx context.Context, rows []types.Record, cols []grid.Column) error {
	kept := exportable(cols)

	cw := csv.NewWriter(e.w)
	header := make([]string, len(kept))
	for i, c := range kept {
		header[i] = c.Title
		if header[i] == "" {
			header[i] = c.Index
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(kept))
	for n, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range kept {
			record[i] = grid.Cell(&kept[i], row).Text
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", n, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportable(cols []grid.Column) []grid.Column {
	out := make([]grid.Column, 0, len(cols))
	for _, c := range cols {
		switch {
		case c.Type == grid.TypeCheckbox || c.Type == grid.TypeRadio:
			continue
		case c.Index == "" && c.Format == nil && len(c.Buttons) > 0:
			continue
		}
		out = append(out, c)
	}
	return out
}
