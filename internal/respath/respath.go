// Package respath resolves user-configured paths against a project's root
// and working directories, optionally through the host environment's
// module-search mechanism (node_modules walk-up).
package respath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RootDirMarker is the prefix users write to anchor a path at the project
// root regardless of the working directory.
const RootDirMarker = "<rootDir>"

// ErrNotFound reports a configured path that resolved to nothing on disk.
var ErrNotFound = errors.New("file not found")

// MissingError carries both spellings of an unresolvable path so the user
// sees what they wrote and what was looked up.
type MissingError struct {
	Input    string
	Resolved string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("file not found: %s (resolved as: %s)", e.Input, e.Resolved)
}

func (e *MissingError) Unwrap() error { return ErrNotFound }

// LookupFunc resolves a module-style specifier to an absolute path.
// ok is false when the specifier is not discoverable.
type LookupFunc func(spec string) (path string, ok bool)

// Resolver resolves paths for one project.
type Resolver struct {
	rootDir string
	cwd     string
	lookup  LookupFunc
}

// Opts modifies a single Resolve call.
type Opts struct {
	// RequireExists makes resolution fail when the final candidate does
	// not exist on disk.
	RequireExists bool
	// ModuleLookup enables module-style resolution for non-relative
	// specifiers.
	ModuleLookup bool
}

// New builds a Resolver. lookup may be nil, in which case a node_modules
// walk-up from cwd is used.
func New(rootDir, cwd string, lookup LookupFunc) *Resolver {
	r := &Resolver{rootDir: rootDir, cwd: cwd, lookup: lookup}
	if r.lookup == nil {
		r.lookup = NodeModulesLookup(cwd)
	}
	return r
}

// Resolve turns input into an absolute path per the configured rules.
func (r *Resolver) Resolve(input string, opts Opts) (string, error) {
	path := input
	moduleResolved := false

	switch {
	case strings.HasPrefix(path, RootDirMarker):
		rest := strings.TrimPrefix(path, RootDirMarker)
		rest = strings.TrimPrefix(rest, "/")
		path = filepath.Join(r.rootDir, filepath.FromSlash(rest))
	case !filepath.IsAbs(path):
		// Bare specifiers go through module lookup first; explicitly
		// relative ones (./ or ../) never do.
		if opts.ModuleLookup && !isExplicitRelative(path) {
			if found, ok := r.lookup(path); ok {
				path = found
				moduleResolved = true
			} else {
				path = filepath.Join(r.cwd, filepath.FromSlash(path))
			}
		} else {
			path = filepath.Join(r.cwd, filepath.FromSlash(path))
		}
	}

	// A plainly resolved path may still shadow a discoverable module;
	// prefer the module when the caller asked for lookup.
	if opts.ModuleLookup && !moduleResolved {
		if found, ok := r.lookup(path); ok {
			path = found
		}
	}

	if opts.RequireExists {
		if _, err := os.Stat(path); err != nil {
			return "", &MissingError{Input: input, Resolved: path}
		}
	}
	return path, nil
}

func isExplicitRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") ||
		p == "." || p == ".."
}

// NodeModulesLookup returns a LookupFunc that walks up from startDir
// probing node_modules the way the runtime's require would, minus the
// package.json "exports" machinery kiln has no need for.
func NodeModulesLookup(startDir string) LookupFunc {
	return func(spec string) (string, bool) {
		if spec == "" || filepath.IsAbs(spec) || isExplicitRelative(spec) {
			return "", false
		}
		dir := startDir
		for {
			base := filepath.Join(dir, "node_modules", filepath.FromSlash(spec))
			if p, ok := probe(base); ok {
				return p, true
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return "", false
			}
			dir = parent
		}
	}
}

func probe(base string) (string, bool) {
	if info, err := os.Stat(base); err == nil {
		if !info.IsDir() {
			return base, true
		}
		if main, ok := packageMain(base); ok {
			return main, true
		}
		idx := filepath.Join(base, "index.js")
		if _, err := os.Stat(idx); err == nil {
			return idx, true
		}
		// A bare directory is still a valid resolution target for
		// config references.
		return base, true
	}
	for _, ext := range []string{".js", ".cjs", ".json"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, true
		}
	}
	return "", false
}
