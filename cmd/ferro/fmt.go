package main

import (
	"fmt"
	"os"

	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/lexer"
	"github.com/ferroui/ferro/pkg/parser"
	"github.com/spf13/cobra"
)

func newFmtCommand() *cobra.Command {
	var write bool
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt [files or directories]",
		Short: "Format views canonically",
		Long: `Rewrites .fro sources into canonical form: four-space indentation,
normalized spacing, and parenthesization only where precedence requires it.
Sources with syntax errors are left untouched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && check {
				return fmt.Errorf("-w and --check are mutually exclusive")
			}
			return runFmt(args, write, check)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write results back to the source files")
	cmd.Flags().BoolVar(&check, "check", false, "Exit non-zero if any file is not canonical")

	return cmd
}

func runFmt(args []string, write, check bool) error {
	files, err := collectSources(args)
	if err != nil {
		return err
	}

	var dirty []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		formatted, err := formatSource(file, string(data))
		if err != nil {
			return err
		}
		if formatted == string(data) {
			continue
		}
		dirty = append(dirty, file)

		switch {
		case write:
			if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
				return err
			}
			fmt.Println(file)
		case check:
			fmt.Println(file)
		default:
			fmt.Print(formatted)
		}
	}

	if check && len(dirty) > 0 {
		return fmt.Errorf("%d file(s) not formatted", len(dirty))
	}
	return nil
}

// formatSource parses src and prints it back canonically. Sources that do
// not lex or parse cleanly are returned with an error so the formatter
// never destroys code it cannot fully understand.
func formatSource(name, src string) (string, error) {
	tokens, diags, err := lexer.Tokenize(name, src)
	if err != nil {
		return "", fmt.Errorf("%s has lex errors, not formatting", name)
	}
	file, parseDiags := parser.Parse(name, tokens)
	diags = append(diags, parseDiags...)
	if diags.HasErrors() {
		return "", fmt.Errorf("%s has syntax errors, not formatting", name)
	}
	return ast.Print(file), nil
}
