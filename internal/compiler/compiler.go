// Package compiler defines the capability surface kiln expects from the
// external TypeScript compiler. The core never imports a concrete compiler;
// it consumes an injected Module and stays agnostic about which
// implementation (stock tsc, a fork, a bundler shim) is behind it.
package compiler

// Module is the injected compiler capability. Implementations must be safe
// for repeated calls; kiln memoizes results but does not serialize access.
type Module interface {
	// Name identifies the implementation ("typescript" for stock tsc).
	Name() string

	// Version is the implementation's own version string.
	Version() string

	// FindProjectFile walks up from fromDir looking for the compiler's
	// project file. ok is false when no file exists up to the root.
	FindProjectFile(fromDir string) (path string, ok bool, err error)

	// ReadProjectFile loads and decodes a project file into its raw form.
	// The decode must tolerate the compiler's own file dialect (comments,
	// trailing commas).
	ReadProjectFile(path string) (map[string]any, error)

	// ParseProject resolves extends-chains and option aliases in raw,
	// producing final options plus any configuration diagnostics. It never
	// returns a nil project: read or parse failures degrade to a project
	// with empty options and a single error diagnostic.
	ParseProject(raw map[string]any, baseDir, fileName string) *ParsedProject

	// FormatDiagnostics renders diagnostics as a single human-readable
	// block, colorized when pretty is set.
	FormatDiagnostics(diags []Diagnostic, pretty bool) string
}

// ParsedProject is the compiler's project configuration after extends
// resolution, before kiln's own override policy is applied.
type ParsedProject struct {
	// FileName is the resolved project file path, empty for inline config.
	FileName string

	// Raw is the merged project file content as decoded, kept for cache
	// keying: two projects whose resolved options coincide by accident but
	// whose files differ still key separately.
	Raw map[string]any

	// Options are the resolved compiler options. Enum-valued options
	// (target, module, moduleResolution) are normalized to lower-case
	// strings.
	Options map[string]any

	// Diagnostics carries configuration errors from reading and parsing.
	Diagnostics []Diagnostic
}
