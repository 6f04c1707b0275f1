package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ferroui/ferro/cmd/ferro/internal/config"
	"github.com/ferroui/ferro/pkg/compiler"
	"github.com/ferroui/ferro/pkg/renderer/html"
	"github.com/ferroui/ferro/pkg/runtime"
	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	var output string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the application for production",
		Long: `Compiles every view under the source directory and writes the
serialized view trees plus statically rendered pages to the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from ferro.yml)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the emitted JSON descriptors")

	return cmd
}

func runBuild(output string, pretty bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("failed to load %s: %v (using defaults)", config.FileName, err)
		cfg = config.DefaultConfig()
	}
	if output == "" {
		output = cfg.Build.OutDir
	}
	if cfg.Build.Pretty {
		pretty = true
	}

	files, err := findSources(cfg.App.SrcDir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", cfg.App.SrcDir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .fro files under %s", cfg.App.SrcDir)
	}

	sources, err := readSources(files)
	if err != nil {
		return err
	}

	log.Printf("compiling %d view(s)...", len(files))
	results := compiler.CompileAll(sources)

	failed := false
	for _, r := range results {
		printDiagnostics(os.Stderr, r.Name, r.Diags)
		if !r.OK() {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("build failed")
	}

	if err := os.RemoveAll(output); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var totalSize int64
	for _, r := range results {
		base := strings.TrimSuffix(filepath.Base(r.Name), ".fro")

		data, err := r.Tree.Encode()
		if err != nil {
			return fmt.Errorf("encoding %s: %w", r.Name, err)
		}
		if pretty {
			data, err = json.MarshalIndent(r.Tree, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding %s: %w", r.Name, err)
			}
		}
		jsonPath := filepath.Join(output, base+".json")
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return err
		}
		totalSize += int64(len(data))

		page, err := renderPage(r, cfg.App.Name)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", r.Name, err)
		}
		htmlPath := filepath.Join(output, base+".html")
		if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
			return err
		}
		totalSize += int64(len(page))

		log.Printf("  %s  %s", jsonPath, formatSize(int64(len(data))))
	}

	log.Printf("build complete: %d view(s), %s -> %s", len(results), formatSize(totalSize), output)
	return nil
}

// renderPage mounts the compiled view once and serializes the initial frame.
func renderPage(r compiler.Result, title string) (string, error) {
	prog := runtime.New(r.Tree)
	root := prog.Mount()
	var sb strings.Builder
	if err := html.Document(&sb, title, r.Tree.Stylesheet, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
