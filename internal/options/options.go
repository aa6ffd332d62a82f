// Package options normalizes the loosely-typed plugin options bag from the
// host pipeline's globals into the canonical, fully-typed settings model.
// All shape polymorphism (string | bool | object unions) ends here: nothing
// past this package sees an ambiguous union.
package options

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-hclog"

	"kiln/internal/respath"
)

// DefaultCompiler is the compiler implementation selected when the bag
// names none.
const DefaultCompiler = "typescript"

// Options is the canonical settings model.
type Options struct {
	TSConfig    ConfigRef `json:"tsconfig"`
	PackageJSON ConfigRef `json:"packageJson"`
	BabelConfig ConfigRef `json:"babelConfig"`

	Diagnostics Diagnostics `json:"diagnostics"`

	IsolatedModules bool   `json:"isolatedModules"`
	Compiler        string `json:"compiler"`

	Transformers Transformers `json:"astTransformers"`

	StringifyContentPathRegex string `json:"stringifyContentPathRegex,omitempty"`

	stringifyRe *regexp.Regexp
}

// ShouldStringifyContent reports whether a file's content is injected as a
// string module instead of being compiled.
func (o *Options) ShouldStringifyContent(path string) bool {
	return o.stringifyRe != nil && o.stringifyRe.MatchString(path)
}

// Normalizer turns a raw options bag into Options. Resolver may be nil, in
// which case paths pass through unresolved (useful for tests and for the
// snapshot-only cache-key path, which never touches disk).
type Normalizer struct {
	Resolver *respath.Resolver
	Logger   hclog.Logger
}

func (n *Normalizer) logger() hclog.Logger {
	if n.Logger == nil {
		return hclog.NewNullLogger()
	}
	return n.Logger
}

func (n *Normalizer) resolvePath(p string, moduleLookup bool) (string, error) {
	if n.Resolver == nil {
		return p, nil
	}
	return n.Resolver.Resolve(p, respath.Opts{
		ModuleLookup:  moduleLookup,
		RequireExists: moduleLookup,
	})
}

var knownKeys = map[string]bool{
	"tsconfig":                  true,
	"tsConfig":                  true,
	"packageJson":               true,
	"babelConfig":               true,
	"diagnostics":               true,
	"isolatedModules":           true,
	"compiler":                  true,
	"astTransformers":           true,
	"stringifyContentPathRegex": true,
}

// Normalize merges the bag with defaults into the canonical model. A nil
// bag yields pure defaults.
func (n *Normalizer) Normalize(bag map[string]any) (*Options, error) {
	for key := range bag {
		if !knownKeys[key] {
			n.logger().Warn("ignoring unknown option", "option", key)
		}
	}

	o := &Options{Compiler: DefaultCompiler}

	tsconfigVal := bag["tsconfig"]
	if legacy, ok := bag["tsConfig"]; ok && tsconfigVal == nil {
		n.logger().Warn("the \"tsConfig\" option is deprecated, use \"tsconfig\" instead")
		tsconfigVal = legacy
	}

	var err error
	if o.TSConfig, err = normalizeRef("tsconfig", tsconfigVal); err != nil {
		return nil, err
	}
	if o.PackageJSON, err = normalizeRef("packageJson", bag["packageJson"]); err != nil {
		return nil, err
	}
	if o.BabelConfig, err = normalizeRef("babelConfig", bag["babelConfig"]); err != nil {
		return nil, err
	}
	if o.Diagnostics, err = normalizeDiagnostics(bag["diagnostics"]); err != nil {
		return nil, err
	}
	if o.Transformers, err = n.normalizeTransformers(bag["astTransformers"]); err != nil {
		return nil, err
	}

	if v, ok := bag["isolatedModules"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("option \"isolatedModules\": expected a boolean, got %T", v)
		}
		o.IsolatedModules = b
	}
	if v, ok := bag["compiler"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("option \"compiler\": expected a non-empty string, got %v", v)
		}
		o.Compiler = s
	}
	if v, ok := bag["stringifyContentPathRegex"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("option \"stringifyContentPathRegex\": expected a string, got %T", v)
		}
		if s != "" {
			re, err := regexp.Compile(s)
			if err != nil {
				return nil, fmt.Errorf("option \"stringifyContentPathRegex\": %w", err)
			}
			o.StringifyContentPathRegex = s
			o.stringifyRe = re
		}
	}

	return o, nil
}
