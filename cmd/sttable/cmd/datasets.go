package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List stored datasets",
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	store, closeStore, err := rt.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	list, err := store.Datasets(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
