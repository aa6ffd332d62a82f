package runner

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// CompileTestMatchers validates test-match glob patterns ahead of use so a
// malformed pattern surfaces once, not on every matched path. `**` spans
// directories, `*` spans within one segment, `?` matches one rune.
func CompileTestMatchers(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid testMatch pattern %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

// MatchesAny reports whether path matches at least one validated pattern.
// Paths are compared slash-normalized.
func MatchesAny(patterns []string, path string) bool {
	p := filepath.ToSlash(path)
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
	}
	return false
}
