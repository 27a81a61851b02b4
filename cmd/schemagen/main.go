// Command schemagen prints synthesized schema definitions and OpenAPI
// documents, and validates payload files against resource schemas.
package main

import (
	"fmt"
	"os"

	"github.com/davinci-dev/davinci/cmd/schemagen/commands"
)

// Version info for schemagen
// These variables are injected at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := commands.NewRootCmd()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", Version, GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
