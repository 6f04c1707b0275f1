package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ferroui/ferro/cmd/ferro/internal/config"
	"github.com/ferroui/ferro/pkg/compiler"
)

func TestGenerateTemplatesCompile(t *testing.T) {
	for _, tmpl := range Templates() {
		t.Run(tmpl, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), tmpl)
			err := Generate(&ProjectConfig{
				Name:      tmpl + "-app",
				Directory: dir,
				Template:  tmpl,
				Port:      4000,
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			src, err := os.ReadFile(filepath.Join(dir, "app", "main.fro"))
			if err != nil {
				t.Fatalf("Expected a main.fro: %v", err)
			}
			r := compiler.Compile("main.fro", string(src))
			if !r.OK() {
				t.Errorf("Expected the %s sample to compile, got %v", tmpl, r.Diags)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("Expected a loadable ferro.yml: %v", err)
			}
			if cfg.Dev.Port != 4000 {
				t.Errorf("Expected port 4000 in ferro.yml, got %d", cfg.Dev.Port)
			}
		})
	}
}

func TestGenerateRejectsExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	err := Generate(&ProjectConfig{Name: "x", Directory: dir, Template: "blank"})
	if err == nil {
		t.Error("Expected an error for an existing directory")
	}
}

func TestGenerateRejectsUnknownTemplate(t *testing.T) {
	err := Generate(&ProjectConfig{Name: "x", Directory: filepath.Join(t.TempDir(), "x"), Template: "nope"})
	if err == nil {
		t.Error("Expected an error for an unknown template")
	}
}
