// Command kgraph runs the extraction pipeline from the command line.
package main

import (
	"os"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
)

func main() {
	util.LoadEnv()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
