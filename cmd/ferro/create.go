package main

import (
	"fmt"
	"os"

	"github.com/ferroui/ferro/cmd/ferro/internal/scaffold"
	"github.com/ferroui/ferro/cmd/ferro/internal/ui"
	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	var (
		template      string
		interactive   bool
		noInteractive bool
		cwd           string
		port          int
		gitInit       bool
	)

	cmd := &cobra.Command{
		Use:   "create [project-name]",
		Short: "Create a new Ferro project",
		Long:  `Creates a new Ferro project from a starter template.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectName := args[0]

			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory: %w", err)
				}
			}

			isTerminal := false
			if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
				isTerminal = true
			}
			useInteractive := !noInteractive && isTerminal && interactive

			if useInteractive {
				config, err := ui.RunCreateTUI(projectName)
				if err != nil {
					return err
				}
				printNextSteps(config.Directory)
				return nil
			}

			config := &scaffold.ProjectConfig{
				Name:     projectName,
				Template: template,
				Port:     port,
				GitInit:  gitInit,
			}
			if err := scaffold.Generate(config); err != nil {
				return fmt.Errorf("failed to generate project: %w", err)
			}

			if config.GitInit {
				if err := ui.InitGitRepo(config.Directory); err != nil {
					fmt.Printf("warning: failed to initialize git: %v\n", err)
				}
			}

			printNextSteps(config.Directory)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "counter", "Template to use (counter, todo, blank)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Use the interactive wizard")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Force non-interactive mode")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Change working directory before generation")
	cmd.Flags().IntVar(&port, "port", 5173, "Dev server port")
	cmd.Flags().BoolVar(&gitInit, "git-init", true, "Initialize a git repository")

	return cmd
}

func printNextSteps(dir string) {
	fmt.Printf("\nproject created in %s\n", dir)
	fmt.Printf("\nnext steps:\n")
	fmt.Printf("  cd %s\n", dir)
	fmt.Printf("  ferro dev\n")
}
