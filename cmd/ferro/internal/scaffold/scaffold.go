// Package scaffold generates new Ferro projects. It is shared by the
// non-interactive create command and the TUI wizard.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ferroui/ferro/cmd/ferro/internal/config"
)

// ProjectConfig holds the options for a new project.
type ProjectConfig struct {
	Name      string
	Directory string
	Template  string
	Port      int
	GitInit   bool
}

// Templates lists the available project templates.
func Templates() []string {
	return []string{"counter", "todo", "blank"}
}

const counterSample = `!let counter = 0

!div.center.p4
    !h1 "Ferro Counter"
    !greeting "Count: {counter}"
    !button.blue.rounded "+" !onclick counter++
    !button.gray.rounded "-" !onclick counter--
    !button.red.rounded "reset" !onclick counter = 0
`

const todoSample = `!let items = ["learn ferro", "ship it"]

!div.p4
    !h1 "Todos"
    !ul
        !for item in items
            !li key=item "{item}"
    !button.green.rounded "add" !onclick items.push("another todo")
    !if len(items) == 0
        !p.gray "nothing to do"
`

const blankSample = `!div.center
    !h1 "Hello, Ferro"
`

var templateSources = map[string]string{
	"counter": counterSample,
	"todo":    todoSample,
	"blank":   blankSample,
}

const gitignore = `dist/
*.log
`

// Generate creates the project directory tree.
func Generate(cfg *ProjectConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Directory == "" {
		cfg.Directory = cfg.Name
	}
	sample, ok := templateSources[cfg.Template]
	if !ok {
		return fmt.Errorf("unknown template %q (available: counter, todo, blank)", cfg.Template)
	}

	if _, err := os.Stat(cfg.Directory); err == nil {
		return fmt.Errorf("directory %s already exists", cfg.Directory)
	}

	appDir := filepath.Join(cfg.Directory, "app")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(appDir, "main.fro"), []byte(sample), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cfg.Directory, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return err
	}
	if err := writeReadme(cfg); err != nil {
		return err
	}

	projectConfig := config.DefaultConfig()
	projectConfig.App.Name = cfg.Name
	if cfg.Port != 0 {
		projectConfig.Dev.Port = cfg.Port
	}
	return config.Save(projectConfig, cfg.Directory)
}

func writeReadme(cfg *ProjectConfig) error {
	readme := fmt.Sprintf(`# %s

A Ferro application.

## Development

    ferro dev

Then open http://localhost:%d.

## Build

    ferro build
`, cfg.Name, portOrDefault(cfg.Port))
	return os.WriteFile(filepath.Join(cfg.Directory, "README.md"), []byte(readme), 0644)
}

func portOrDefault(port int) int {
	if port == 0 {
		return config.DefaultConfig().Dev.Port
	}
	return port
}
