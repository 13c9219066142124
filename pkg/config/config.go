// Package config loads risp settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/risp/pkg/evaluator"
)

const (
	// ProjectFile is looked up in the project directory.
	ProjectFile = ".risp.yaml"
	// DefaultRunID tags trace events when nothing else is configured.
	DefaultRunID = "cli"
)

// Config holds evaluation limits and CLI output settings.
type Config struct {
	// Path is the file the config was read from; empty for defaults.
	Path   string `yaml:"-"`
	Limits Limits `yaml:"limits"`
	Output Output `yaml:"output"`
	Trace  Trace  `yaml:"trace"`
}

// Limits bounds evaluation. Zero TimeMs or MaxSteps means unlimited.
type Limits struct {
	MaxDepth int64 `yaml:"maxDepth"`
	TimeMs   int64 `yaml:"timeMs"`
	MaxSteps int64 `yaml:"maxSteps"`
}

type Output struct {
	Pretty bool `yaml:"pretty"`
}

type Trace struct {
	RunID string `yaml:"runId"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Limits: Limits{MaxDepth: evaluator.DefaultMaxDepth},
		Trace:  Trace{RunID: DefaultRunID},
	}
}

// UserPath returns ~/.risp/config.yaml, or "" if the home directory is unknown.
func UserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".risp", "config.yaml")
}

// Load resolves configuration for projectDir.
// Precedence: project (.risp.yaml) → user (~/.risp/config.yaml) → defaults.
// A missing file falls through to the next source; a malformed one is an error.
func Load(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if user := UserPath(); user != "" {
		candidates = append(candidates, user)
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Default(), nil
}

// LoadFile parses a single config file. Keys absent from the file keep
// their default values; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Decode reads a config document from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits that cannot be honoured.
func (c *Config) Validate() error {
	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.maxDepth must be positive, got %d", c.Limits.MaxDepth)
	}
	if c.Limits.TimeMs < 0 {
		return fmt.Errorf("limits.timeMs must not be negative, got %d", c.Limits.TimeMs)
	}
	if c.Limits.MaxSteps < 0 {
		return fmt.Errorf("limits.maxSteps must not be negative, got %d", c.Limits.MaxSteps)
	}
	return nil
}

// Budget converts the limits into evaluator budget settings.
func (c *Config) Budget() evaluator.Budget {
	var b evaluator.Budget
	if c.Limits.MaxDepth > 0 {
		v := c.Limits.MaxDepth
		b.MaxDepth = &v
	}
	if c.Limits.TimeMs > 0 {
		v := c.Limits.TimeMs
		b.TimeMs = &v
	}
	if c.Limits.MaxSteps > 0 {
		v := c.Limits.MaxSteps
		b.MaxSteps = &v
	}
	return b
}

// Marshal renders the config as YAML with two-space indentation.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}
