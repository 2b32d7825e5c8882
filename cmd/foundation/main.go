// Package main is the foundation command-line entrypoint.
package main

import (
	"os"

	"github.com/toolsverse/foundation/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
