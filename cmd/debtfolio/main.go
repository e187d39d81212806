// Command debtfolio prints debt carry reports from the warehouse database or
// a YAML snapshot file.
package main

import (
	"os"

	"github.com/aristath/debtfolio/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
