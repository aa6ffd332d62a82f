package options

import (
	"encoding/json"
	"fmt"
)

// RefKind tags the shape an external-config reference took in user input.
type RefKind uint8

const (
	// RefAbsent means disabled: false or missing in the bag.
	RefAbsent RefKind = iota
	// RefAuto means "discover the file", from a literal true.
	RefAuto
	// RefFile carries an explicit path, from a string value.
	RefFile
	// RefInline carries the config object itself.
	RefInline
)

func (k RefKind) String() string {
	switch k {
	case RefAbsent:
		return "absent"
	case RefAuto:
		return "auto"
	case RefFile:
		return "file"
	case RefInline:
		return "inline"
	}
	return "unknown"
}

// ConfigRef is a normalized reference to an optional external config
// (compiler project file, package descriptor, babel config). Exactly one
// shape applies; an inline empty object is distinct from absent.
type ConfigRef struct {
	Kind   RefKind
	Path   string
	Inline map[string]any
}

// Enabled reports whether the reference points at anything.
func (r ConfigRef) Enabled() bool { return r.Kind != RefAbsent }

// MarshalJSON keeps refs stable and explicit in serialized snapshots.
func (r ConfigRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefAbsent:
		return []byte("null"), nil
	case RefAuto:
		return json.Marshal(map[string]any{"kind": r.Kind.String()})
	case RefFile:
		return json.Marshal(map[string]any{"kind": r.Kind.String(), "path": r.Path})
	case RefInline:
		return json.Marshal(map[string]any{"kind": r.Kind.String(), "value": r.Inline})
	}
	return nil, fmt.Errorf("unknown ref kind %d", r.Kind)
}

// normalizeRef applies the one shape rule shared by every external-config
// option: string = file path, true = auto-discover, object = inline,
// false/absent = disabled.
func normalizeRef(name string, v any) (ConfigRef, error) {
	switch val := v.(type) {
	case nil:
		return ConfigRef{Kind: RefAbsent}, nil
	case bool:
		if val {
			return ConfigRef{Kind: RefAuto}, nil
		}
		return ConfigRef{Kind: RefAbsent}, nil
	case string:
		return ConfigRef{Kind: RefFile, Path: val}, nil
	case map[string]any:
		return ConfigRef{Kind: RefInline, Inline: val}, nil
	default:
		return ConfigRef{}, fmt.Errorf("option %q: unsupported value of type %T", name, v)
	}
}
