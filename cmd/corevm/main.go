// Command corevm runs a single transaction against an in-memory world
// state and prints the resulting receipt. It exists to exercise the
// interpreter and processor packages end to end, the way go/ct/driver
// exercises Tosca's conformance test suite from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "corevm",
		Usage:     "run a single EVM transaction, or validate a block's structural invariants",
		Copyright: "(c) 2026 OpenEVM contributors",
		Commands: []*cli.Command{
			&runCmd,
			&validateCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
