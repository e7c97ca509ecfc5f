// Package config holds compiler-wide constants and the funxyc.yaml
// project configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the current funxyc version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.1.0"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".px", ".pxs"}

// ProjectFileName is the per-project configuration file the CLI looks
// for next to its inputs.
const ProjectFileName = "funxyc.yaml"

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Config is the project configuration. Zero value aside, Default()
// supplies the shipped defaults; Load layers funxyc.yaml on top.
type Config struct {
	// Exceptions gates runtime check insertion. On by default:
	// emitted programs trap with a RuntimeError message instead of
	// corrupting memory.
	Exceptions bool `yaml:"exceptions"`

	// OutputDir is where emitted .ll files land; empty means next to
	// the source file.
	OutputDir string `yaml:"output_dir"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures the persistent specialization cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no funxyc.yaml exists.
func Default() *Config {
	return &Config{
		Exceptions: true,
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".funxyc", "speccache.db"),
		},
	}
}

// Load reads funxyc.yaml from dir, layering it over Default(). A
// missing file is not an error: the defaults are returned unchanged.
func Load(dir string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
