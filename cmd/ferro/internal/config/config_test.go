package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dev.Port != 5173 {
		t.Errorf("Expected default port 5173, got %d", cfg.Dev.Port)
	}
	if cfg.App.SrcDir != "app" {
		t.Errorf("Expected default srcDir app, got %q", cfg.App.SrcDir)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	src := "app:\n  name: demo\ndev:\n  port: 9000\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "demo" {
		t.Errorf("Expected name demo, got %q", cfg.App.Name)
	}
	if cfg.Dev.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Dev.Port)
	}
	if cfg.Dev.Host != "localhost" {
		t.Errorf("Expected default host, got %q", cfg.Dev.Host)
	}
	if cfg.Build.OutDir != "dist" {
		t.Errorf("Expected default outDir, got %q", cfg.Build.OutDir)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("app: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.App.Name = "roundtrip"
	cfg.Dev.Port = 4000

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.App.Name != "roundtrip" || loaded.Dev.Port != 4000 {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}
