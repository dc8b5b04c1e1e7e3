package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/sttable/internal/core/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every row of a table as CSV",
	Long: `Loads the table like query, then exports the whole filtered and sorted
dataset (front mode) or refetches all rows from the source (back mode).`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addTableFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "-", "output file (- for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	tbl, err := buildTable(cmd, rt)
	if err != nil {
		return err
	}
	defer tbl.close()

	if err := tbl.Export(cmd.Context(), export.NewCSV(w), nil); err != nil {
		return err
	}
	rt.log.Info().Str("out", out).Int("total", tbl.View().Total).Msg("export written")
	return nil
}
