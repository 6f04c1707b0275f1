package ui

import (
	"fmt"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ferroui/ferro/cmd/ferro/internal/scaffold"
)

// RunCreateTUI runs the interactive wizard and generates the project.
func RunCreateTUI(projectName string) (*scaffold.ProjectConfig, error) {
	if !isatty() {
		return nil, fmt.Errorf("not running in a terminal, use --no-interactive")
	}

	p := tea.NewProgram(NewModel(projectName), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	m := finalModel.(Model)
	if m.Cancelled() {
		return nil, fmt.Errorf("project creation cancelled")
	}

	config := m.Config()
	if err := scaffold.Generate(config); err != nil {
		return config, fmt.Errorf("failed to generate project: %w", err)
	}

	if config.GitInit {
		if err := InitGitRepo(config.Directory); err != nil {
			fmt.Printf("warning: failed to initialize git: %v\n", err)
		}
	}

	return config, nil
}

// InitGitRepo initializes a git repository with an initial commit.
func InitGitRepo(projectPath string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "add", ".")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "commit", "-m", "Initial commit")
	cmd.Dir = projectPath
	return cmd.Run()
}

func isatty() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
