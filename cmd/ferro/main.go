package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ferro",
		Short: "Ferro - a reactive UI language",
		Long: `Ferro compiles declarative .fro view sources into reactive view trees.

Edit views with directives (!div, !let, !if, !for), run them with a
signal-driven update engine, and serve them live during development.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newFmtCommand())
	rootCmd.AddCommand(newDevCommand())
	rootCmd.AddCommand(newCreateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
