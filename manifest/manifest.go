// Package manifest handles monty.toml project configuration.
//
// The manifest is optional: the CLI works from flags alone, but a project can
// pin its source file, output path, and build profile in monty.toml so that a
// bare `monty-near build` does the right thing.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a monty.toml project configuration.
type Manifest struct {
	Contract Contract `toml:"contract" json:"contract"`
	Build    Build    `toml:"build" json:"build"`

	// Dir is the directory containing the monty.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Contract names the source file.
type Contract struct {
	Source string `toml:"source" json:"source"`
}

// Build configures pipeline defaults; CLI flags override all of them.
type Build struct {
	Output       string `toml:"output" json:"output"`
	Profile      string `toml:"profile" json:"profile"`
	SkipOptimize bool   `toml:"skip-optimize" json:"skip-optimize"`
	ScratchDir   string `toml:"scratch-dir" json:"scratch-dir"`
}

// Load parses a monty.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "monty.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Build.Output == "" {
		m.Build.Output = "contract.wasm"
	}
	if m.Build.Profile == "" {
		m.Build.Profile = "default"
	}

	if err := validate(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a monty.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "monty.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourcePath returns the absolute path of the configured contract source,
// or "" if none is configured.
func (m *Manifest) SourcePath() string {
	if m.Contract.Source == "" {
		return ""
	}
	if filepath.IsAbs(m.Contract.Source) {
		return m.Contract.Source
	}
	return filepath.Join(m.Dir, m.Contract.Source)
}

// Legacy reports whether the manifest selects the legacy profile.
func (m *Manifest) Legacy() bool {
	return m.Build.Profile == "legacy"
}
