// Command haze is a CLI over the haze document store. The registry lives in
// a SQLite snapshot file selected with --db or HAZE_DB.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/haze/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
