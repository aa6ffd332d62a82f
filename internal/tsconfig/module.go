// Package tsconfig is the default compiler.Module implementation: it
// discovers, reads, and parses tsconfig.json files (extends chains
// included) without loading the compiler itself. The real compiler binary
// only enters the picture at compile time, which is outside this system.
package tsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the compiler's conventional project file name.
const FileName = "tsconfig.json"

// Module implements compiler.Module for stock TypeScript projects.
type Module struct {
	version string
}

// New builds a Module reporting the given compiler version. Use Discover
// to pick the version up from an installed compiler package.
func New(ver string) *Module {
	if ver == "" {
		ver = "unknown"
	}
	return &Module{version: ver}
}

// Discover walks up from dir looking for an installed compiler package and
// reads its version. Falls back to "unknown" when none is installed, which
// still yields a usable (if pessimistically keyed) module.
func Discover(dir string) *Module {
	for {
		pkg := filepath.Join(dir, "node_modules", "typescript", "package.json")
		if data, err := os.ReadFile(pkg); err == nil {
			var meta struct {
				Version string `json:"version"`
			}
			if json.Unmarshal(data, &meta) == nil && meta.Version != "" {
				return New(meta.Version)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return New("")
		}
		dir = parent
	}
}

func (m *Module) Name() string { return "typescript" }

func (m *Module) Version() string { return m.version }

// FindProjectFile walks up from fromDir to locate tsconfig.json.
func (m *Module) FindProjectFile(fromDir string) (string, bool, error) {
	if fromDir == "" {
		fromDir = "."
	}
	dir, err := filepath.Abs(fromDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// ReadProjectFile loads one project file and decodes its JSONC content.
func (m *Module) ReadProjectFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(stripJSONC(data), &raw); err != nil {
		return nil, fmt.Errorf("%s: failed to parse: %w", path, err)
	}
	return raw, nil
}
