package configset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/gowebpki/jcs"
	goversion "github.com/hashicorp/go-version"
	"github.com/vmihailenco/msgpack/v5"

	"kiln/internal/options"
	"kiln/internal/version"
)

// Snapshot is the canonical aggregate of every output-affecting input.
// Anything that can change compiled output must appear here; anything
// that cannot (display name, cache location) must not.
type Snapshot struct {
	Digest          string           `json:"digest"`
	Compiler        string           `json:"compiler"`
	Transformers    []string         `json:"transformers,omitempty"`
	HostConfig      map[string]any   `json:"hostConfig"`
	Options         *options.Options `json:"options"`
	BabelConfig     map[string]any   `json:"babelConfig,omitempty"`
	CompilerOptions map[string]any   `json:"compilerOptions"`
	ProjectFile     map[string]any   `json:"projectFile,omitempty"`
}

// Snapshot assembles the cache key snapshot. Memoized; the same instance
// always reports the same snapshot.
func (cs *ConfigSet) Snapshot() (*Snapshot, error) {
	return cs.snapshotCell.Do(func() (*Snapshot, error) {
		o, err := cs.Options()
		if err != nil {
			return nil, err
		}
		ids, err := cs.TransformerIDs()
		if err != nil {
			return nil, err
		}
		babel, err := cs.BabelConfig()
		if err != nil {
			return nil, err
		}
		p, err := cs.ResolvedProject()
		if err != nil {
			return nil, err
		}
		return &Snapshot{
			Digest:          version.Digest(),
			Compiler:        cs.mod.Name() + "@" + cs.mod.Version(),
			Transformers:    ids,
			HostConfig:      cs.host.Sanitized(),
			Options:         o,
			BabelConfig:     babel,
			CompilerOptions: p.Options,
			ProjectFile:     p.Raw,
		}, nil
	})
}

// CacheKey returns the deterministic key deciding artifact reuse: the
// sha256 of the snapshot's RFC 8785 canonical JSON. Mapping iteration
// order never reaches the hash.
func (cs *ConfigSet) CacheKey() (string, error) {
	return cs.keyCell.Do(func() (string, error) {
		snap, err := cs.Snapshot()
		if err != nil {
			return "", err
		}
		raw, err := json.Marshal(snap)
		if err != nil {
			return "", fmt.Errorf("serialize cache key snapshot: %w", err)
		}
		canonical, err := jcs.Transform(raw)
		if err != nil {
			return "", fmt.Errorf("canonicalize cache key snapshot: %w", err)
		}
		sum := sha256.Sum256(canonical)
		return hex.EncodeToString(sum[:]), nil
	})
}

// cacheDirPayload is the narrower input set selecting the on-disk cache
// location. Field order is part of the encoding; treat this struct as
// append-only.
type cacheDirPayload struct {
	CompilerVersion string
	Digest          string
	Compiler        string
	CompilerOptions map[string]any
	IsolatedModules bool
	IgnoreCodes     []int
	PathPattern     string
	Pretty          bool
	WarnOnly        bool
}

// CacheDir returns the cache directory for compiled artifacts, or
// ok=false when caching is disabled at the host level.
func (cs *ConfigSet) CacheDir() (dir string, ok bool, err error) {
	if !cs.host.Cache || cs.host.CacheDir == "" {
		return "", false, nil
	}
	dir, err = cs.cacheDirCell.Do(func() (string, error) {
		o, err := cs.Options()
		if err != nil {
			return "", err
		}
		copts, err := cs.CompilerOptions()
		if err != nil {
			return "", err
		}
		payload := cacheDirPayload{
			CompilerVersion: cs.mod.Version(),
			Digest:          version.Digest(),
			Compiler:        o.Compiler,
			CompilerOptions: copts,
			IsolatedModules: o.IsolatedModules,
			IgnoreCodes:     o.Diagnostics.IgnoreCodes,
			PathPattern:     o.Diagnostics.PathPattern,
			Pretty:          o.Diagnostics.Pretty,
			WarnOnly:        o.Diagnostics.WarnOnly,
		}
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(&payload); err != nil {
			return "", fmt.Errorf("encode cache dir payload: %w", err)
		}
		sum := sha256.Sum256(buf.Bytes())
		name := fmt.Sprintf("kiln-%s-%s", shortCompilerVersion(cs.mod.Version()), hex.EncodeToString(sum[:8]))
		return filepath.Join(cs.host.CacheDir, name), nil
	})
	if err != nil {
		return "", false, err
	}
	return dir, true, nil
}

func shortCompilerVersion(v string) string {
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return "x"
	}
	seg := parsed.Segments()
	return fmt.Sprintf("%d.%d", seg[0], seg[1])
}

// MarshalJSON exposes the resolved state for inspection and testing.
func (cs *ConfigSet) MarshalJSON() ([]byte, error) {
	snap, err := cs.Snapshot()
	if err != nil {
		return nil, err
	}
	key, err := cs.CacheKey()
	if err != nil {
		return nil, err
	}
	dir, ok, err := cs.CacheDir()
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"version":         version.Version,
		"compiler":        snap.Compiler,
		"options":         snap.Options,
		"compilerOptions": snap.CompilerOptions,
		"cacheKey":        key,
	}
	if ok {
		out["cacheDirectory"] = dir
	}
	return json.Marshal(out)
}
