package main

import (
	"os"

	"github.com/solatis/sttable/cmd/sttable/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
