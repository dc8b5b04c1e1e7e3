package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Load one table page and print its view state as JSON",
	Example: `  sttable query --file people.json --ps 5 --sort age,descend
  sttable query --dataset people --param status=active
  sttable query --grpc localhost:50061 --dataset people --pi 2`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addTableFlags(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	tbl, err := buildTable(cmd, rt)
	if err != nil {
		return err
	}
	defer tbl.close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(tbl.View())
}
