package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset> <file.json|->",
	Short: "Replace a stored dataset with the records of a JSON file",
	Long: `Reads a JSON array of records, or an object holding one under the
configured response list path, and stores it as a dataset for back-mode tables.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("key", "", "record path used as row key (default table.row_key)")
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}

	records, err := readRecords(cmd, args[1], rt.cfg.Table.ResRename)
	if err != nil {
		return err
	}

	keyPath := rt.cfg.Table.RowKey
	if cmd.Flags().Changed("key") {
		keyPath, _ = cmd.Flags().GetString("key")
	}

	store, closeStore, err := rt.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ds, err := store.Import(cmd.Context(), args[0], records, keyPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", ds.RowCount, ds.Name)
	return nil
}

// readRecords decodes path ("-" for stdin) as a record list.
func readRecords(cmd *cobra.Command, path string, rn grid.ResRename) ([]types.Record, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if list, ok := raw.([]any); ok {
		return grid.ToRecords(list), nil
	}
	return grid.Extract(raw, grid.NewResponseShape(rn)).Rows, nil
}
