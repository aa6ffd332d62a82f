package options

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// TransformerRef is one resolved AST-transformer entry.
type TransformerRef struct {
	// Name is the specifier as the user wrote it.
	Name string `json:"name"`
	// Path is the resolved module location.
	Path string `json:"path"`
	// Options are passed through to the transformer factory.
	Options map[string]any `json:"options,omitempty"`
}

// Transformers groups transformer entries by compilation phase.
type Transformers struct {
	Before            []TransformerRef `json:"before,omitempty"`
	After             []TransformerRef `json:"after,omitempty"`
	AfterDeclarations []TransformerRef `json:"afterDeclarations,omitempty"`
}

// Empty reports whether no transformer is configured in any phase.
func (t Transformers) Empty() bool {
	return len(t.Before) == 0 && len(t.After) == 0 && len(t.AfterDeclarations) == 0
}

type transformerShape struct {
	Path    string         `mapstructure:"path"`
	Options map[string]any `mapstructure:"options"`
}

// normalizeTransformers accepts the legacy flat list (before-phase only,
// deprecated) or a phase-keyed object. Each entry is a path string or a
// {path, options} object; paths resolve with module-style lookup.
func (n *Normalizer) normalizeTransformers(v any) (Transformers, error) {
	var t Transformers
	switch val := v.(type) {
	case nil:
		return t, nil
	case []any:
		n.logger().Warn("the flat astTransformers array is deprecated, use the {before, after, afterDeclarations} form")
		refs, err := n.normalizeTransformerList("astTransformers", val)
		if err != nil {
			return Transformers{}, err
		}
		t.Before = refs
		return t, nil
	case map[string]any:
		var err error
		if t.Before, err = n.normalizeTransformerList("astTransformers.before", val["before"]); err != nil {
			return Transformers{}, err
		}
		if t.After, err = n.normalizeTransformerList("astTransformers.after", val["after"]); err != nil {
			return Transformers{}, err
		}
		if t.AfterDeclarations, err = n.normalizeTransformerList("astTransformers.afterDeclarations", val["afterDeclarations"]); err != nil {
			return Transformers{}, err
		}
		return t, nil
	default:
		return Transformers{}, fmt.Errorf("option \"astTransformers\": unsupported value of type %T", v)
	}
}

func (n *Normalizer) normalizeTransformerList(name string, v any) ([]TransformerRef, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("option %q: expected a list, got %T", name, v)
	}
	refs := make([]TransformerRef, 0, len(list))
	for i, entry := range list {
		var ref TransformerRef
		switch e := entry.(type) {
		case string:
			ref.Name = e
		case map[string]any:
			var shape transformerShape
			if err := mapstructure.Decode(e, &shape); err != nil {
				return nil, fmt.Errorf("option %s[%d]: %w", name, i, err)
			}
			if shape.Path == "" {
				return nil, fmt.Errorf("option %s[%d]: missing path", name, i)
			}
			ref.Name = shape.Path
			ref.Options = shape.Options
		default:
			return nil, fmt.Errorf("option %s[%d]: unsupported value of type %T", name, i, entry)
		}
		path, err := n.resolvePath(ref.Name, true)
		if err != nil {
			return nil, err
		}
		ref.Path = path
		refs = append(refs, ref)
	}
	return refs, nil
}
