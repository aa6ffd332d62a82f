// Package hooks loads the optional hooks file: named commands the pipeline
// invokes around compile events. The environment variable naming the file
// is read by the CLI bootstrap; the core only ever sees the loaded map.
package hooks

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Hooks maps event names to commands.
type Hooks map[string]string

type hooksFile struct {
	Hooks map[string]string `toml:"hooks"`
}

// Load parses a hooks file:
//
//	[hooks]
//	after-process = "./scripts/record-artifacts.sh"
//
// A file without a [hooks] table yields an empty map.
func Load(path string) (Hooks, error) {
	var f hooksFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("hooks") || f.Hooks == nil {
		return Hooks{}, nil
	}
	return Hooks(f.Hooks), nil
}
