// Command redsql inspects and edits a redsql store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/redsql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
