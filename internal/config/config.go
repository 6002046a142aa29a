package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when a setting is absent.
const (
	DefaultMenuFile  = "menu.yml"
	DefaultGraphPath = ".chainmerge/graph"
)

// ProjectConfig holds project-level settings loaded from chainmerge.yml.
type ProjectConfig struct {
	// MenuFile is the menu to assemble, relative to the project directory.
	MenuFile string `yaml:"menuFile,omitempty"`

	// OutputDir receives the JSON export. Empty prints to stdout.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Concurrency bounds parallel chain merges. Zero means GOMAXPROCS.
	Concurrency int `yaml:"concurrency,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`

	// GraphPath is the KuzuDB directory merged chains are persisted to.
	GraphPath string `yaml:"graphPath,omitempty"`
}

// Load attempts to read chainmerge.yml or chainmerge.yaml from the given
// directory. Returns a default config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	for _, name := range []string{"chainmerge.yml", "chainmerge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		break
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("config: concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.MenuFile == "" {
		cfg.MenuFile = DefaultMenuFile
	}
	if cfg.GraphPath == "" {
		cfg.GraphPath = DefaultGraphPath
	}
	return cfg, nil
}

// Resolve returns path relative to dir unless it is already absolute.
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
