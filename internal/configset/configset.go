// Package configset owns the effective configuration of one compile step:
// one host project configuration in, one canonical settings model, one
// resolved compiler configuration and one cache key out. A ConfigSet is
// built once per host project configuration and all derived state is lazy,
// memoized and externally immutable.
package configset

import (
	"github.com/hashicorp/go-hclog"
	goversion "github.com/hashicorp/go-version"

	"kiln/internal/compiler"
	"kiln/internal/hooks"
	"kiln/internal/memo"
	"kiln/internal/options"
	"kiln/internal/respath"
	"kiln/internal/runner"
	"kiln/internal/tsconfig"
)

// SupportedCompilerRange is the compiler version range kiln is tested
// against. Out-of-range versions work but draw a warning.
const SupportedCompilerRange = ">= 4.3, < 6.0"

// Params configures construction. Only Host is required.
type Params struct {
	Host runner.Config

	// Logger is the parent logging sink; nil discards logs.
	Logger hclog.Logger

	// Compiler is the injected compiler module; nil discovers a stock
	// TypeScript installation from Host.Cwd.
	Compiler compiler.Module

	// Hooks is the pre-loaded hooks map. The environment read that names
	// the hooks file belongs to the bootstrap layer, not here.
	Hooks hooks.Hooks

	// Lookup overrides module-style path resolution (tests mostly).
	Lookup respath.LookupFunc

	// Transformers resolves AST-transformer identities; nil reads
	// package descriptors next to the resolved paths.
	Transformers Registry

	// Transpiler builds the secondary transpiler when babel config is
	// present; nil leaves post-transpilation unavailable.
	Transpiler TranspilerFactory
}

// ConfigSet is the root entity. All mutation is internal, lazy, one-shot.
type ConfigSet struct {
	host     runner.Config
	logger   hclog.Logger
	mod      compiler.Module
	hooks    hooks.Hooks
	resolver *respath.Resolver
	registry Registry
	factory  TranspilerFactory

	optionsCell  memo.Cell[*options.Options]
	projectCell  memo.Cell[*compiler.ParsedProject]
	snapshotCell memo.Cell[*Snapshot]
	keyCell      memo.Cell[string]
	cacheDirCell memo.Cell[string]
	matchersCell memo.Cell[[]string]
	babelCell    memo.Cell[map[string]any]
	transpCell   memo.Cell[TranspileFunc]
	idsCell      memo.Cell[[]string]
	verCheck     memo.Value[struct{}]
}

// New builds a ConfigSet for one host project configuration.
func New(p Params) *ConfigSet {
	logger := p.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	} else {
		logger = logger.Named("kiln")
	}
	mod := p.Compiler
	if mod == nil {
		mod = tsconfig.Discover(p.Host.Cwd)
	}
	h := p.Hooks
	if h == nil {
		h = hooks.Hooks{}
	}
	cs := &ConfigSet{
		host:     p.Host,
		logger:   logger,
		mod:      mod,
		hooks:    h,
		registry: p.Transformers,
		factory:  p.Transpiler,
	}
	cs.resolver = respath.New(p.Host.RootDir, p.Host.Cwd, p.Lookup)
	if cs.registry == nil {
		cs.registry = descriptorRegistry{}
	}
	return cs
}

// Host returns the host project configuration as supplied.
func (cs *ConfigSet) Host() runner.Config { return cs.host }

// CompilerModule returns the injected compiler capability.
func (cs *ConfigSet) CompilerModule() compiler.Module { return cs.mod }

// Hooks returns the hooks map supplied at construction.
func (cs *ConfigSet) Hooks() hooks.Hooks { return cs.hooks }

// Options returns the canonical settings model, normalizing the host's
// options bag on first access. Normalization side effects (deprecation
// warnings) fire exactly once per ConfigSet.
func (cs *ConfigSet) Options() (*options.Options, error) {
	return cs.optionsCell.Do(func() (*options.Options, error) {
		n := &options.Normalizer{
			Resolver: cs.resolver,
			Logger:   cs.logger,
		}
		return n.Normalize(cs.host.OptionsBag())
	})
}

// ResolvePath resolves a configured path against the project's root and
// working directories.
func (cs *ConfigSet) ResolvePath(input string, opts respath.Opts) (string, error) {
	return cs.resolver.Resolve(input, opts)
}

// IsTestFile reports whether path matches the host's test-match patterns.
func (cs *ConfigSet) IsTestFile(path string) bool {
	matchers, err := cs.matchersCell.Do(func() ([]string, error) {
		return runner.CompileTestMatchers(cs.host.TestMatch)
	})
	if err != nil {
		cs.logger.Warn("invalid testMatch pattern ignored", "error", err)
		return false
	}
	return runner.MatchesAny(matchers, path)
}

// ShouldStringifyContent reports whether a file is injected as a string
// module instead of being compiled.
func (cs *ConfigSet) ShouldStringifyContent(path string) bool {
	o, err := cs.Options()
	if err != nil {
		return false
	}
	return o.ShouldStringifyContent(path)
}

// checkCompilerVersion warns once when the injected compiler is outside
// the supported range. Unparseable versions are left alone; a fork with a
// custom scheme is not worth noise.
func (cs *ConfigSet) checkCompilerVersion() {
	cs.verCheck.Get(func() struct{} {
		ver, err := goversion.NewVersion(cs.mod.Version())
		if err != nil {
			return struct{}{}
		}
		constraint, err := goversion.NewConstraint(SupportedCompilerRange)
		if err != nil || constraint.Check(ver) {
			return struct{}{}
		}
		cs.logger.Warn("compiler version is outside the supported range",
			"compiler", cs.mod.Name(),
			"version", cs.mod.Version(),
			"supported", SupportedCompilerRange)
		return struct{}{}
	})
}
