package respath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRootDirMarker(t *testing.T) {
	r := New("/proj", "/work", func(string) (string, bool) { return "", false })
	got, err := r.Resolve("<rootDir>/x.ts", Opts{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := filepath.Join("/proj", "x.ts")
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveRelativeAgainstCwd(t *testing.T) {
	r := New("/proj", "/work", func(string) (string, bool) { return "", false })
	got, err := r.Resolve("./conf/t.json", Opts{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := filepath.Join("/work", "conf", "t.json")
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveModuleLookupWins(t *testing.T) {
	lookup := func(spec string) (string, bool) {
		if spec == "lodash" {
			return "/work/node_modules/lodash/index.js", true
		}
		return "", false
	}
	r := New("/proj", "/work", lookup)
	got, err := r.Resolve("lodash", Opts{ModuleLookup: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "/work/node_modules/lodash/index.js" {
		t.Fatalf("Resolve = %q, want module location", got)
	}
}

func TestResolveModuleLookupFallsBackToCwd(t *testing.T) {
	r := New("/proj", "/work", func(string) (string, bool) { return "", false })
	got, err := r.Resolve("not-a-module", Opts{ModuleLookup: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := filepath.Join("/work", "not-a-module")
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveExplicitRelativeSkipsLookup(t *testing.T) {
	called := false
	lookup := func(spec string) (string, bool) {
		// The final lookup pass still probes the joined path; only a bare
		// "./x" specifier must not hit module search directly.
		if spec == "./x" {
			called = true
		}
		return "", false
	}
	r := New("/proj", "/work", lookup)
	if _, err := r.Resolve("./x", Opts{ModuleLookup: true}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if called {
		t.Fatalf("module lookup ran for explicitly relative path")
	}
}

func TestResolveMissingRequired(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, dir, func(string) (string, bool) { return "", false })
	_, err := r.Resolve("nope.ts", Opts{RequireExists: true})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	var miss *MissingError
	if !errors.As(err, &miss) {
		t.Fatalf("error is not *MissingError: %v", err)
	}
	if miss.Input != "nope.ts" {
		t.Fatalf("MissingError.Input = %q", miss.Input)
	}
	if miss.Resolved != filepath.Join(dir, "nope.ts") {
		t.Fatalf("MissingError.Resolved = %q", miss.Resolved)
	}
}

func TestResolveExistingRequired(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tsconfig.json")
	if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(dir, dir, func(string) (string, bool) { return "", false })
	got, err := r.Resolve("tsconfig.json", Opts{RequireExists: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != p {
		t.Fatalf("Resolve = %q, want %q", got, p)
	}
}

func TestNodeModulesLookup(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "node_modules", "left-pad")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "index.js"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	lookup := NodeModulesLookup(nested)
	got, ok := lookup("left-pad")
	if !ok {
		t.Fatalf("lookup failed to walk up to node_modules")
	}
	if got != filepath.Join(pkg, "index.js") {
		t.Fatalf("lookup = %q", got)
	}

	if _, ok := lookup("./relative"); ok {
		t.Fatalf("lookup accepted a relative specifier")
	}
}
