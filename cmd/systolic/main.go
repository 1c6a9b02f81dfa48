// Command systolic compiles matrix-expression programs into pass sequences
// for a fixed-size systolic array.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/systolic/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "systolic: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
