// Command hsh is the CLI wrapper around the hsh interpreter package: run a
// script, or inspect how one lexes, parses, or reprints.
package main

import (
	"fmt"
	"os"

	"github.com/hermetic-sh/hsh/cmd/hsh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
