package configset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"kiln/internal/options"
)

// TransformerID is the cache-relevant identity of one AST-transformer
// module.
type TransformerID struct {
	Name    string
	Version string
}

func (id TransformerID) String() string {
	return id.Name + "@" + id.Version
}

// Registry resolves transformer identities for already-resolved module
// paths. The bootstrap layer that loaded the transformer modules knows
// their identities; the default implementation falls back to reading the
// package descriptor next to the path.
type Registry interface {
	Identity(ref options.TransformerRef) (TransformerID, bool)
}

// descriptorRegistry walks up from a transformer's resolved path to the
// nearest package descriptor and reads name and version from it.
type descriptorRegistry struct{}

func (descriptorRegistry) Identity(ref options.TransformerRef) (TransformerID, bool) {
	dir := ref.Path
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		if err == nil {
			var meta struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			}
			if json.Unmarshal(data, &meta) == nil && meta.Name != "" {
				if meta.Version == "" {
					meta.Version = "0.0.0"
				}
				return TransformerID{Name: meta.Name, Version: meta.Version}, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir || filepath.Base(dir) == "node_modules" {
			return TransformerID{}, false
		}
		dir = parent
	}
}

// TransformerIDs returns the canonical transformer identity list folded
// into the cache key: one "phase:name@version" entry per configured
// transformer, sorted within each phase so configuration order does not
// leak into the key.
func (cs *ConfigSet) TransformerIDs() ([]string, error) {
	return cs.idsCell.Do(func() ([]string, error) {
		o, err := cs.Options()
		if err != nil {
			return nil, err
		}
		var out []string
		phases := []struct {
			name string
			refs []options.TransformerRef
		}{
			{"before", o.Transformers.Before},
			{"after", o.Transformers.After},
			{"afterDeclarations", o.Transformers.AfterDeclarations},
		}
		for _, phase := range phases {
			entries := make([]string, 0, len(phase.refs))
			for _, ref := range phase.refs {
				id, ok := cs.registry.Identity(ref)
				if !ok {
					id = TransformerID{Name: ref.Name, Version: "0.0.0"}
				}
				entry := fmt.Sprintf("%s:%s", phase.name, id)
				if len(ref.Options) > 0 {
					// Options change emitted output just like identity does.
					enc, err := json.Marshal(ref.Options)
					if err != nil {
						return nil, fmt.Errorf("transformer %s: unserializable options: %w", id.Name, err)
					}
					entry += ":" + string(enc)
				}
				entries = append(entries, entry)
			}
			sort.Strings(entries)
			out = append(out, entries...)
		}
		return out, nil
	})
}
