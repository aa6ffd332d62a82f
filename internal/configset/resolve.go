package configset

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"kiln/internal/compiler"
	"kiln/internal/diag"
	"kiln/internal/options"
	"kiln/internal/respath"
)

// OutDirSentinel is assigned when allowJs is on and the project sets no
// output directory: the compiler refuses to overwrite .js inputs in place,
// and the sentinel is never written to anyway (output stays in memory).
const OutDirSentinel = "$$kiln$$"

// unsetOption marks a forced override that deletes the option instead of
// assigning it.
type unsetOption struct{}

// forcedOptions always win over project-file and user values. Options
// mapped to unsetOption{} are removed outright: every one of them changes
// where or how output files land, which is kiln's decision alone.
var forcedOptions = map[string]any{
	"sourceMap":           true,
	"inlineSourceMap":     false,
	"inlineSources":       true,
	"declaration":         false,
	"noEmit":              false,
	"removeComments":      false,
	"out":                 unsetOption{},
	"outFile":             unsetOption{},
	"composite":           unsetOption{},
	"declarationDir":      unsetOption{},
	"declarationMap":      unsetOption{},
	"emitDeclarationOnly": unsetOption{},
	"sourceRoot":          unsetOption{},
	"tsBuildInfoFile":     unsetOption{},
}

// codeModuleInterop is kiln's own diagnostic for a module kind that clashes
// with the forced commonjs emit. Message category: informative, never fatal.
const codeModuleInterop = 151001

// ResolvedProject returns the compiler configuration after project-file
// resolution and kiln's override policy, raising any diagnostics that
// survive the filter policy. Memoized; resolution failures are sticky.
func (cs *ConfigSet) ResolvedProject() (*compiler.ParsedProject, error) {
	return cs.projectCell.Do(func() (*compiler.ParsedProject, error) {
		p, err := cs.resolveProject(nil)
		if err != nil {
			return nil, err
		}
		if err := cs.RaiseDiagnostics(p.Diagnostics, p.FileName, nil); err != nil {
			return nil, err
		}
		return p, nil
	})
}

// CompilerOptions returns the final resolved compiler options.
func (cs *ConfigSet) CompilerOptions() (map[string]any, error) {
	p, err := cs.ResolvedProject()
	if err != nil {
		return nil, err
	}
	return p.Options, nil
}

// RaiseDiagnostics filters diags through the diagnostics policy and either
// raises them as one aggregated error or logs them. The optional logger
// overrides the ConfigSet's own sink for this call.
func (cs *ConfigSet) RaiseDiagnostics(diags []compiler.Diagnostic, filePath string, logger hclog.Logger) error {
	o, err := cs.Options()
	if err != nil {
		return err
	}
	r := &diag.Reporter{
		Policy: o.Diagnostics,
		Format: cs.mod.FormatDiagnostics,
		Logger: cs.logger,
	}
	return r.Report(diags, filePath, logger)
}

// resolveProject locates and parses the project file, merges overrides and
// applies the policy pipeline. Inline-configured options are an override
// fragment, not a project file: the on-disk configuration is still
// discovered and parsed underneath them. Read and parse failures degrade
// to a single error diagnostic; only a missing explicitly-configured file
// is fatal here.
func (cs *ConfigSet) resolveProject(overrides map[string]any) (*compiler.ParsedProject, error) {
	o, err := cs.Options()
	if err != nil {
		return nil, err
	}
	cs.checkCompilerVersion()

	ref := o.TSConfig
	if ref.Kind == options.RefInline {
		frag := ref.Inline
		// A tsconfig-shaped wrapper is tolerated; the compilerOptions
		// inside it are what overrides the located file.
		if co, ok := ref.Inline["compilerOptions"].(map[string]any); ok {
			frag = co
		}
		merged := make(map[string]any, len(frag)+len(overrides))
		for k, v := range frag {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		overrides = merged
		ref = options.ConfigRef{Kind: options.RefAuto}
	}

	var (
		raw      map[string]any
		fileName string
		baseDir  = cs.host.RootDir
		readErr  error
	)
	if ref.Kind == options.RefAbsent {
		raw = map[string]any{}
	} else {
		raw, fileName, readErr = cs.loadProjectFile(ref)
		if readErr != nil {
			if _, missing := readErr.(*respath.MissingError); missing {
				return nil, readErr
			}
			// Degrade to a diagnostic; the caller raises per policy.
			p := &compiler.ParsedProject{
				FileName: fileName,
				Raw:      map[string]any{},
				Options:  map[string]any{},
				Diagnostics: []compiler.Diagnostic{{
					Code:     5083,
					Category: compiler.CatError,
					File:     fileName,
					Message:  readErr.Error(),
				}},
			}
			return p, nil
		}
		if fileName != "" {
			baseDir = filepath.Dir(fileName)
		}
	}

	raw = mergeCompilerOptions(raw, overrides)
	p := cs.mod.ParseProject(raw, baseDir, fileName)
	cs.applyPolicy(p, o.BabelConfig.Enabled())
	return p, nil
}

func (cs *ConfigSet) loadProjectFile(ref options.ConfigRef) (map[string]any, string, error) {
	switch ref.Kind {
	case options.RefFile:
		path, err := cs.resolver.Resolve(ref.Path, respath.Opts{RequireExists: true})
		if err != nil {
			return nil, ref.Path, err
		}
		raw, err := cs.mod.ReadProjectFile(path)
		return raw, path, err
	default: // auto discovery
		path, ok, err := cs.mod.FindProjectFile(cs.host.RootDir)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return map[string]any{}, "", nil
		}
		raw, err := cs.mod.ReadProjectFile(path)
		return raw, path, err
	}
}

// applyPolicy runs the post-parse rules in order: target default,
// module/target compatibility, allowJs outDir floor, forced overrides,
// runtime-target ceiling warning.
func (cs *ConfigSet) applyPolicy(p *compiler.ParsedProject, babelActive bool) {
	opts := p.Options

	// (1) default the target to the oldest supported one
	targetStr, _ := opts["target"].(string)
	if targetStr == "" {
		opts["target"] = compiler.OldestTarget.String()
		targetStr = compiler.OldestTarget.String()
	}
	target, ok := compiler.ParseTarget(targetStr)
	if !ok {
		target = compiler.OldestTarget
	}

	// (2) module/target compatibility against the forced commonjs emit
	moduleKind := target.DefaultModuleKind()
	if s, ok := opts["module"].(string); ok && s != "" {
		if k, valid := compiler.ParseModuleKind(s); valid {
			moduleKind = k
		}
	}
	if !babelActive && moduleKind != compiler.KindCommonJS {
		esmInterop, _ := opts["esModuleInterop"].(bool)
		synthetic, _ := opts["allowSyntheticDefaultImports"].(bool)
		if !esmInterop && !synthetic {
			p.Diagnostics = append(p.Diagnostics, compiler.Diagnostic{
				Code:     codeModuleInterop,
				Category: compiler.CatMessage,
				File:     p.FileName,
				Message: fmt.Sprintf(
					"module kind %q is incompatible with the commonjs emit used for tests; enabling allowSyntheticDefaultImports (set esModuleInterop to silence this)",
					moduleKind),
			})
			if _, explicit := opts["allowSyntheticDefaultImports"]; !explicit {
				opts["allowSyntheticDefaultImports"] = true
			}
		}
	}

	// (3) allowJs needs somewhere for output to land
	if allowJS, _ := opts["allowJs"].(bool); allowJS {
		if s, _ := opts["outDir"].(string); s == "" {
			opts["outDir"] = OutDirSentinel
		}
	}

	// (4) forced overrides
	for key, val := range forcedOptions {
		if _, unset := val.(unsetOption); unset {
			delete(opts, key)
			continue
		}
		opts[key] = val
	}
	if !babelActive {
		opts["module"] = compiler.KindCommonJS.String()
	}

	// (5) warn when the emit target outruns the runtime
	if !babelActive && target > compiler.MaxLTSTarget {
		cs.logger.Warn("emit target is newer than the newest LTS-supported target; output may not load",
			"target", target.String(),
			"maxSupported", compiler.MaxLTSTarget.String())
	}
}

func mergeCompilerOptions(raw, overrides map[string]any) map[string]any {
	if len(overrides) == 0 {
		return raw
	}
	co, _ := raw["compilerOptions"].(map[string]any)
	merged := make(map[string]any, len(co)+len(overrides))
	for k, v := range co {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	out := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	out["compilerOptions"] = merged
	return out
}
