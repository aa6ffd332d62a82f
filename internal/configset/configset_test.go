package configset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"kiln/internal/compiler"
	"kiln/internal/diag"
	"kiln/internal/respath"
	"kiln/internal/runner"
	"kiln/internal/tsconfig"
)

func testHost(dir string, bag map[string]any) runner.Config {
	c := runner.Config{
		RootDir:  dir,
		Cwd:      dir,
		Cache:    true,
		CacheDir: filepath.Join(dir, ".cache"),
	}
	if bag != nil {
		c.Globals = map[string]any{runner.GlobalsKey: bag}
	}
	return c
}

func newSet(t *testing.T, host runner.Config) *ConfigSet {
	t.Helper()
	return New(Params{
		Host:     host,
		Compiler: tsconfig.New("5.4.5"),
		Lookup:   func(string) (string, bool) { return "", false },
	})
}

func mustKey(t *testing.T, cs *ConfigSet) string {
	t.Helper()
	key, err := cs.CacheKey()
	if err != nil {
		t.Fatalf("CacheKey: %v", err)
	}
	return key
}

func TestCacheKeyIgnoresNameAndCacheDir(t *testing.T) {
	dir := t.TempDir()
	a := testHost(dir, nil)
	b := a
	b.DisplayName = "renamed project"
	b.CacheDir = filepath.Join(dir, "elsewhere")

	keyA := mustKey(t, newSet(t, a))
	keyB := mustKey(t, newSet(t, b))
	if keyA != keyB {
		t.Fatalf("cache key depends on display name or cache dir:\n%s\n%s", keyA, keyB)
	}
}

func TestCacheKeyTracksCompilerOptions(t *testing.T) {
	dir := t.TempDir()
	a := testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{"strict": true}},
	})
	b := testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{"strict": false}},
	})
	if mustKey(t, newSet(t, a)) == mustKey(t, newSet(t, b)) {
		t.Fatalf("cache key blind to a compiler option change")
	}
}

func TestCacheKeyTracksIsolatedModules(t *testing.T) {
	dir := t.TempDir()
	a := testHost(dir, nil)
	b := testHost(dir, map[string]any{"isolatedModules": true})
	if mustKey(t, newSet(t, a)) == mustKey(t, newSet(t, b)) {
		t.Fatalf("cache key blind to isolatedModules")
	}
}

func TestCacheKeyStablePerInstance(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, nil))
	if mustKey(t, cs) != mustKey(t, cs) {
		t.Fatalf("cache key not stable on one instance")
	}
	// A fresh instance over the same host config produces the same key.
	if mustKey(t, cs) != mustKey(t, newSet(t, testHost(dir, nil))) {
		t.Fatalf("cache key not reproducible across instances")
	}
}

func TestOptionsMemoizedWithSingleSideEffect(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"t1.js", "t2.js"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf})
	cs := New(Params{
		Host:     testHost(dir, map[string]any{"astTransformers": []any{"t1", "t2"}}),
		Compiler: tsconfig.New("5.4.5"),
		Logger:   logger,
		Lookup: func(spec string) (string, bool) {
			return filepath.Join(dir, spec+".js"), true
		},
	})

	o1, err := cs.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	o2, err := cs.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if o1 != o2 {
		t.Fatalf("Options returned different instances")
	}
	if n := strings.Count(buf.String(), "deprecated"); n != 1 {
		t.Fatalf("deprecation warning fired %d times, want exactly 1", n)
	}
}

func TestResolvedProjectForcedOverrides(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{
			"declaration": true,
			"outFile":     "bundle.js",
			"sourceMap":   false,
		}},
	}))
	opts, err := cs.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if opts["declaration"] != false {
		t.Fatalf("declaration = %v, want forced false", opts["declaration"])
	}
	if opts["sourceMap"] != true {
		t.Fatalf("sourceMap = %v, want forced true", opts["sourceMap"])
	}
	if _, present := opts["outFile"]; present {
		t.Fatalf("outFile survived the unset override")
	}
	if opts["module"] != "commonjs" {
		t.Fatalf("module = %v, want forced commonjs", opts["module"])
	}
}

func TestResolvedProjectDefaultTarget(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, nil))
	opts, err := cs.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if opts["target"] != "es3" {
		t.Fatalf("target = %v, want default es3", opts["target"])
	}
}

func TestInlineOptionsOverlayDiscoveredProject(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "tsconfig.json")
	if err := os.WriteFile(onDisk, []byte(`{
		"compilerOptions": {"strict": true, "target": "es2020"}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{"target": "es5"}},
	}))
	p, err := cs.ResolvedProject()
	if err != nil {
		t.Fatalf("ResolvedProject: %v", err)
	}
	if p.FileName != onDisk {
		t.Fatalf("project file = %q, want discovered %q", p.FileName, onDisk)
	}
	if p.Options["strict"] != true {
		t.Fatalf("on-disk option lost under inline overrides: %v", p.Options)
	}
	if p.Options["target"] != "es5" {
		t.Fatalf("target = %v, want inline override", p.Options["target"])
	}
}

func TestInlineBareFragmentOverlay(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{
		"compilerOptions": {"strict": true}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	// The inline object may also be the compilerOptions fragment itself.
	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"target": "es5"},
	}))
	opts, err := cs.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if opts["strict"] != true || opts["target"] != "es5" {
		t.Fatalf("overlay lost an option: %v", opts)
	}
}

func TestModuleTargetCompatibility(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{"target": "es2015"}},
	}))
	p, err := cs.ResolvedProject()
	if err != nil {
		t.Fatalf("ResolvedProject: %v", err)
	}
	found := false
	for _, d := range p.Diagnostics {
		if d.Code == codeModuleInterop {
			found = true
		}
	}
	if !found {
		t.Fatalf("no interop diagnostic for dynamic module kind: %v", p.Diagnostics)
	}
	if p.Options["allowSyntheticDefaultImports"] != true {
		t.Fatalf("allowSyntheticDefaultImports = %v, want forced true", p.Options["allowSyntheticDefaultImports"])
	}
}

func TestModuleTargetCompatibilityWithInterop(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{
			"target":          "es2015",
			"esModuleInterop": true,
		}},
	}))
	p, err := cs.ResolvedProject()
	if err != nil {
		t.Fatalf("ResolvedProject: %v", err)
	}
	for _, d := range p.Diagnostics {
		if d.Code == codeModuleInterop {
			t.Fatalf("interop diagnostic synthesized despite esModuleInterop")
		}
	}
}

func TestAllowJSOutDirSentinel(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"tsconfig": map[string]any{"compilerOptions": map[string]any{"allowJs": true}},
	}))
	opts, err := cs.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if opts["outDir"] != OutDirSentinel {
		t.Fatalf("outDir = %v, want sentinel", opts["outDir"])
	}
}

func TestExplicitProjectFileMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{"tsconfig": "does-not-exist.json"}))
	_, err := cs.ResolvedProject()
	if err == nil {
		t.Fatalf("expected fatal error for missing project file")
	}
	if !errors.Is(err, respath.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUnparseableProjectFileDegradesToDiagnostic(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "tsconfig.broken.json")
	if err := os.WriteFile(bad, []byte("{ not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cs := newSet(t, testHost(dir, map[string]any{"tsconfig": "tsconfig.broken.json"}))
	_, err := cs.ResolvedProject()
	if err == nil {
		t.Fatalf("expected raised diagnostics for unparseable project file")
	}
	var ce *diag.CompilerError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *diag.CompilerError", err)
	}
	if len(ce.Codes) != 1 || ce.Codes[0] != 5083 {
		t.Fatalf("Codes = %v, want [5083]", ce.Codes)
	}
}

func TestResolutionFailureIsSticky(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{"tsconfig": "does-not-exist.json"}))
	_, err1 := cs.ResolvedProject()
	_, err2 := cs.ResolvedProject()
	if err1 == nil || err2 == nil {
		t.Fatalf("expected errors, got %v / %v", err1, err2)
	}
	if err1 != err2 { //nolint:errorlint // identity check is the point
		t.Fatalf("second access recomputed instead of returning the sticky failure")
	}
}

func TestCacheDirDisabled(t *testing.T) {
	dir := t.TempDir()
	host := testHost(dir, nil)
	host.Cache = false
	_, ok, err := newSet(t, host).CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if ok {
		t.Fatalf("cache dir present with caching disabled")
	}
}

func TestCacheDirShape(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, nil))
	got, ok, err := cs.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if !ok {
		t.Fatalf("cache dir absent with caching enabled")
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, "kiln-5.4-") {
		t.Fatalf("cache dir name = %q, want kiln-<major.minor>-<digest>", base)
	}
	if filepath.Dir(got) != filepath.Join(dir, ".cache") {
		t.Fatalf("cache dir parent = %q", filepath.Dir(got))
	}
}

func TestCacheDirTracksDiagnosticsPolicy(t *testing.T) {
	dir := t.TempDir()
	a, _, err := newSet(t, testHost(dir, nil)).CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := newSet(t, testHost(dir, map[string]any{
		"diagnostics": map[string]any{"ignoreCodes": "TS2694"},
	})).CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("cache dir blind to diagnostics policy")
	}
}

func TestBabelKeepsModuleKind(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"babelConfig": map[string]any{"presets": []any{"@babel/preset-env"}},
		"tsconfig": map[string]any{"compilerOptions": map[string]any{
			"target": "es2020",
			"module": "esnext",
		}},
	}))
	opts, err := cs.CompilerOptions()
	if err != nil {
		t.Fatalf("CompilerOptions: %v", err)
	}
	if opts["module"] != "esnext" {
		t.Fatalf("module = %v, want esnext preserved under babel", opts["module"])
	}
	p, _ := cs.ResolvedProject()
	for _, d := range p.Diagnostics {
		if d.Code == codeModuleInterop {
			t.Fatalf("interop diagnostic synthesized despite active babel")
		}
	}
}

func TestSnapshotStripsHostNoise(t *testing.T) {
	dir := t.TempDir()
	host := testHost(dir, nil)
	host.DisplayName = "noisy"
	snap, err := newSet(t, host).Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, ok := snap.HostConfig["displayName"]; ok {
		t.Fatalf("displayName leaked into the snapshot")
	}
	if _, ok := snap.HostConfig["cacheDirectory"]; ok {
		t.Fatalf("cacheDirectory leaked into the snapshot")
	}
}

func TestIsTestFile(t *testing.T) {
	dir := t.TempDir()
	host := testHost(dir, nil)
	host.TestMatch = []string{"**/*.spec.ts"}
	cs := newSet(t, host)
	if !cs.IsTestFile("src/math.spec.ts") {
		t.Fatalf("spec file not matched")
	}
	if cs.IsTestFile("src/math.ts") {
		t.Fatalf("non-test file matched")
	}
}

func TestRaiseDiagnosticsUsesPolicy(t *testing.T) {
	dir := t.TempDir()
	cs := newSet(t, testHost(dir, map[string]any{
		"diagnostics": map[string]any{"ignoreCodes": []any{float64(1234)}},
	}))
	err := cs.RaiseDiagnostics([]compiler.Diagnostic{
		{Code: 1234, Category: compiler.CatError, Message: "ignored"},
	}, "", nil)
	if err != nil {
		t.Fatalf("ignored diagnostic raised: %v", err)
	}
	err = cs.RaiseDiagnostics([]compiler.Diagnostic{
		{Code: 4321, Category: compiler.CatError, Message: "kept"},
	}, "", nil)
	if err == nil {
		t.Fatalf("surviving error diagnostic not raised")
	}
}
