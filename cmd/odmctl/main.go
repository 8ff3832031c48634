// odmctl inspects and edits go-odm document stores.
//
// Usage:
//
//	odmctl [--config odmctl.yaml] [--path odm.db] <command>
//
// Commands: collections, find, count, delete, stats.
package main

import (
	"fmt"
	"os"

	"github.com/CaliLuke/go-odm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
