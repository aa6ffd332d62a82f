package tsconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"kiln/internal/compiler"
	"kiln/internal/respath"
)

// Codes for configuration diagnostics, matching the compiler's own
// numbering so ignore lists written against stock tsc keep working.
const (
	codeCannotReadFile  = 5083
	codeCircularExtends = 18000
)

// enumOptions are compiler options whose values are case-insensitive
// enums; they are normalized to lower case so equal configurations
// serialize identically.
var enumOptions = map[string]bool{
	"target":           true,
	"module":           true,
	"moduleResolution": true,
	"jsx":              true,
	"newLine":          true,
}

// ParseProject resolves the extends chain of raw and produces final
// options. It never returns nil; failures degrade to diagnostics.
func (m *Module) ParseProject(raw map[string]any, baseDir, fileName string) *compiler.ParsedProject {
	p := &compiler.ParsedProject{FileName: fileName}
	seen := map[string]bool{}
	if fileName != "" {
		seen[fileName] = true
	}
	merged := m.resolveExtends(raw, baseDir, seen, p)

	opts := map[string]any{}
	if co, ok := merged["compilerOptions"].(map[string]any); ok {
		for k, v := range co {
			if s, isStr := v.(string); isStr && enumOptions[k] {
				opts[k] = strings.ToLower(s)
				continue
			}
			opts[k] = v
		}
	}
	p.Raw = merged
	p.Options = opts
	return p
}

// resolveExtends merges the chain parent-first so nearer files win.
func (m *Module) resolveExtends(raw map[string]any, baseDir string, seen map[string]bool, p *compiler.ParsedProject) map[string]any {
	spec, hasExtends := raw["extends"].(string)
	if !hasExtends || spec == "" {
		return copyConfig(raw)
	}

	parentPath, ok := m.locateExtends(spec, baseDir)
	if !ok {
		p.Diagnostics = append(p.Diagnostics, compiler.Diagnostic{
			Code:     codeCannotReadFile,
			Category: compiler.CatError,
			Message:  fmt.Sprintf("Cannot read file '%s'.", spec),
		})
		return copyConfig(raw)
	}
	if seen[parentPath] {
		p.Diagnostics = append(p.Diagnostics, compiler.Diagnostic{
			Code:     codeCircularExtends,
			Category: compiler.CatError,
			File:     parentPath,
			Message:  fmt.Sprintf("Circularity detected while resolving configuration: %s", parentPath),
		})
		return copyConfig(raw)
	}
	seen[parentPath] = true

	parentRaw, err := m.ReadProjectFile(parentPath)
	if err != nil {
		p.Diagnostics = append(p.Diagnostics, compiler.Diagnostic{
			Code:     codeCannotReadFile,
			Category: compiler.CatError,
			File:     parentPath,
			Message:  err.Error(),
		})
		return copyConfig(raw)
	}
	parent := m.resolveExtends(parentRaw, filepath.Dir(parentPath), seen, p)
	return mergeConfigs(parent, raw)
}

func (m *Module) locateExtends(spec, baseDir string) (string, bool) {
	candidates := []string{}
	if filepath.IsAbs(spec) || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base := spec
		if !filepath.IsAbs(base) {
			base = filepath.Join(baseDir, filepath.FromSlash(spec))
		}
		candidates = append(candidates, base, base+".json")
	} else {
		lookup := respath.NodeModulesLookup(baseDir)
		for _, probe := range []string{spec, spec + ".json", spec + "/" + FileName} {
			if p, ok := lookup(probe); ok {
				candidates = append(candidates, p)
				break
			}
		}
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, true
		}
	}
	return "", false
}

// mergeConfigs overlays child on parent: compilerOptions merge per key,
// every other section is replaced wholesale, and extends itself is
// consumed by the merge.
func mergeConfigs(parent, child map[string]any) map[string]any {
	out := copyConfig(parent)
	for k, v := range child {
		if k == "extends" {
			continue
		}
		if k == "compilerOptions" {
			co, ok := v.(map[string]any)
			base, okBase := out["compilerOptions"].(map[string]any)
			if ok && okBase {
				mergedCo := make(map[string]any, len(base)+len(co))
				for bk, bv := range base {
					mergedCo[bk] = bv
				}
				for ck, cv := range co {
					mergedCo[ck] = cv
				}
				out[k] = mergedCo
				continue
			}
		}
		out[k] = v
	}
	return out
}

func copyConfig(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k == "extends" {
			continue
		}
		out[k] = v
	}
	return out
}
