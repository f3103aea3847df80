// Command fanidx maintains and queries a fanling secondary index.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/fanling-index/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
