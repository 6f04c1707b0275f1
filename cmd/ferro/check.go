package main

import (
	"fmt"
	"os"

	"github.com/ferroui/ferro/pkg/compiler"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [files or directories]",
		Short: "Compile views and report diagnostics",
		Long: `Compiles the given .fro files (or every .fro file under the given
directories) and prints their diagnostics without writing any output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report the summary line")

	return cmd
}

func runCheck(args []string, quiet bool) error {
	files, err := collectSources(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .fro files found")
	}

	sources, err := readSources(files)
	if err != nil {
		return err
	}

	results := compiler.CompileAll(sources)

	var errors, warnings int
	for _, r := range results {
		if !quiet {
			printDiagnostics(os.Stdout, r.Name, r.Diags)
		}
		for _, d := range r.Diags {
			if d.Severity == diag.Error {
				errors++
			} else {
				warnings++
			}
		}
	}

	switch {
	case errors > 0:
		fmt.Printf("%s %d file(s), %d error(s), %d warning(s)\n",
			errorStyle.Render("✗"), len(results), errors, warnings)
		return fmt.Errorf("check failed")
	case warnings > 0:
		fmt.Printf("%s %d file(s), %d warning(s)\n",
			warningStyle.Render("!"), len(results), warnings)
	default:
		fmt.Printf("%s %d file(s) ok\n", okStyle.Render("✓"), len(results))
	}
	return nil
}

// collectSources expands directory arguments into their .fro files.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := findSources(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		files = append(files, arg)
	}
	return files, nil
}
