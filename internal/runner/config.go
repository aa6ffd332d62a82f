// Package runner models the enclosing test pipeline's per-project
// configuration as kiln receives it. The pipeline hands the same value to
// two call sites: a serialized snapshot for cache keying and a live value
// for the compile path, so this type must round-trip through JSON without
// losing anything kiln folds into the cache key.
package runner

import (
	"encoding/json"
	"fmt"
	"os"
)

// GlobalsKey is where the plugin's own options live inside Globals.
const GlobalsKey = "kiln"

// Config is the host project configuration. Read-only input: kiln never
// mutates it.
type Config struct {
	RootDir     string         `json:"rootDir"`
	Cwd         string         `json:"cwd"`
	Cache       bool           `json:"cache"`
	CacheDir    string         `json:"cacheDirectory,omitempty"`
	DisplayName string         `json:"displayName,omitempty"`
	TestMatch   []string       `json:"testMatch,omitempty"`
	Globals     map[string]any `json:"globals,omitempty"`
}

// Load reads a host config fixture from a JSON file. Used by the CLI; the
// real pipeline passes the value directly.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read host config %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}
	return c, nil
}

// OptionsBag returns the plugin options value from Globals, nil when absent.
// The shape is loosely typed; normalization happens in the options package.
func (c Config) OptionsBag() map[string]any {
	if c.Globals == nil {
		return nil
	}
	bag, _ := c.Globals[GlobalsKey].(map[string]any)
	return bag
}

// Sanitized returns the config as a generic mapping with the fields that
// cannot affect compiled output removed. DisplayName is cosmetic and the
// cache directory must not influence the key that selects it.
func (c Config) Sanitized() map[string]any {
	m := map[string]any{
		"rootDir": c.RootDir,
		"cwd":     c.Cwd,
		"cache":   c.Cache,
	}
	if len(c.TestMatch) > 0 {
		m["testMatch"] = append([]string(nil), c.TestMatch...)
	}
	if len(c.Globals) > 0 {
		m["globals"] = c.Globals
	}
	return m
}
