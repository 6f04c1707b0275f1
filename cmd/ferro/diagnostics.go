package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ferroui/ferro/pkg/diag"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	posStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// printDiagnostics writes one line per diagnostic in compiler order.
func printDiagnostics(w io.Writer, name string, diags diag.List) {
	for _, d := range diags {
		label := warningStyle.Render("warning")
		if d.Severity == diag.Error {
			label = errorStyle.Render("error")
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			posStyle.Render(fmt.Sprintf("%s:%d:%d:", name, d.Line, d.Column)),
			label,
			d.Message,
			codeStyle.Render("["+string(d.Code)+"]"))
	}
}

// findSources returns the .fro files under dir, sorted by path.
func findSources(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, ".fro") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// readSources loads the given files into a name-to-source map.
func readSources(files []string) (map[string]string, error) {
	sources := make(map[string]string, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		sources[file] = string(data)
	}
	return sources, nil
}
