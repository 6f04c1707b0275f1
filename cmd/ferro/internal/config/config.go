// Package config loads and saves the ferro.yml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "ferro.yml"

// Config represents the ferro.yml configuration.
type Config struct {
	// App configuration
	App *AppConfig `yaml:"app,omitempty"`

	// Development server configuration
	Dev *DevConfig `yaml:"dev,omitempty"`

	// Build configuration
	Build *BuildConfig `yaml:"build,omitempty"`
}

// AppConfig describes the application sources.
type AppConfig struct {
	// Project name, used for page titles
	Name string `yaml:"name,omitempty"`

	// Directory containing .fro source files
	SrcDir string `yaml:"srcDir,omitempty"`

	// Entry view served at /
	Entry string `yaml:"entry,omitempty"`
}

// DevConfig contains development server configuration.
type DevConfig struct {
	// Server port
	Port int `yaml:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty"`

	// Whether to open the browser on start
	Open bool `yaml:"open,omitempty"`
}

// BuildConfig contains production build configuration.
type BuildConfig struct {
	// Output directory
	OutDir string `yaml:"outDir,omitempty"`

	// Whether to emit indented JSON descriptors
	Pretty bool `yaml:"pretty,omitempty"`
}

// Load loads configuration from ferro.yml in projectPath. A missing file
// yields the defaults, a malformed file is an error.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Save writes the configuration to ferro.yml in projectPath.
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: &AppConfig{
			Name:   "ferro-app",
			SrcDir: "app",
			Entry:  "main.fro",
		},
		Dev: &DevConfig{
			Port: 5173,
			Host: "localhost",
			Open: false,
		},
		Build: &BuildConfig{
			OutDir: "dist",
			Pretty: false,
		},
	}
}

// applyDefaults fills in zero values from the defaults.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.App == nil {
		config.App = defaults.App
	} else {
		if config.App.Name == "" {
			config.App.Name = defaults.App.Name
		}
		if config.App.SrcDir == "" {
			config.App.SrcDir = defaults.App.SrcDir
		}
		if config.App.Entry == "" {
			config.App.Entry = defaults.App.Entry
		}
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
	}

	if config.Build == nil {
		config.Build = defaults.Build
	} else if config.Build.OutDir == "" {
		config.Build.OutDir = defaults.Build.OutDir
	}
}
