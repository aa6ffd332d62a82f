package configset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"kiln/internal/options"
	"kiln/internal/respath"
)

// TranspileFunc post-processes already-compiled output.
type TranspileFunc func(path, compiled string) (string, error)

// TranspilerFactory builds the secondary transpiler from its resolved
// config. Injected by the bootstrap layer; the core never loads babel
// itself.
type TranspilerFactory func(cs *ConfigSet, config map[string]any) (TranspileFunc, error)

// ErrNoTranspiler is returned when babel config is present but no factory
// was injected.
var ErrNoTranspiler = errors.New("babel config is set but no transpiler factory was provided")

// BabelConfig resolves the secondary-transpiler configuration: nil when
// disabled, the inline object, or the decoded content of the referenced
// config file.
func (cs *ConfigSet) BabelConfig() (map[string]any, error) {
	return cs.babelCell.Do(func() (map[string]any, error) {
		o, err := cs.Options()
		if err != nil {
			return nil, err
		}
		switch o.BabelConfig.Kind {
		case options.RefAbsent:
			return nil, nil
		case options.RefInline:
			return o.BabelConfig.Inline, nil
		case options.RefAuto:
			for _, name := range []string{"babel.config.json", ".babelrc", ".babelrc.json"} {
				path, err := cs.resolver.Resolve("<rootDir>/"+name, respath.Opts{})
				if err != nil {
					continue
				}
				if cfg, err := readBabelFile(path); err == nil {
					return cfg, nil
				}
			}
			return map[string]any{}, nil
		default: // file
			path, err := cs.resolver.Resolve(o.BabelConfig.Path, respath.Opts{RequireExists: true})
			if err != nil {
				return nil, err
			}
			return readBabelFile(path)
		}
	})
}

// Transpiler lazily builds the secondary transpiler; (nil, nil) when no
// babel config is present.
func (cs *ConfigSet) Transpiler() (TranspileFunc, error) {
	return cs.transpCell.Do(func() (TranspileFunc, error) {
		cfg, err := cs.BabelConfig()
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, nil
		}
		if cs.factory == nil {
			return nil, ErrNoTranspiler
		}
		return cs.factory(cs, cfg)
	})
}

// readBabelFile decodes a JSON-shaped babel config. Script-shaped configs
// (.js/.cjs) cannot be evaluated here; their content still keys the cache,
// so they decode to a content wrapper instead of failing.
func readBabelFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read babel config %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".cjs") {
		return map[string]any{"configFile": path, "content": string(data)}, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}
	return cfg, nil
}
