package diag

import (
	"github.com/hashicorp/go-hclog"

	"kiln/internal/compiler"
	"kiln/internal/options"
)

// CompilerError is the fatal form of surviving diagnostics. Codes are
// attached for programmatic matching.
type CompilerError struct {
	Text  string
	Codes []int
}

func (e *CompilerError) Error() string { return e.Text }

// FormatFunc renders a diagnostic batch; supplied by the compiler module.
type FormatFunc func(diags []compiler.Diagnostic, pretty bool) string

// Reporter applies the policy to filtered diagnostics: raise as one
// aggregated error, or log once at warning level.
type Reporter struct {
	Policy options.Diagnostics
	Format FormatFunc
	Logger hclog.Logger
}

// Report filters diags and surfaces the survivors. It returns a
// *CompilerError when the throw policy applies and at least one survivor
// is warning-or-error severity; otherwise survivors are logged and nil is
// returned. An empty filtered batch is a no-op.
func (r *Reporter) Report(diags []compiler.Diagnostic, filePath string, logger hclog.Logger) error {
	filtered := Filter(r.Policy, diags, filePath)
	if len(filtered) == 0 {
		return nil
	}
	text := r.Format(filtered, r.Policy.Pretty)
	if !r.Policy.WarnOnly && anyActionable(filtered) {
		return &CompilerError{Text: text, Codes: Codes(filtered)}
	}
	log := logger
	if log == nil {
		log = r.Logger
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log.Warn(text)
	return nil
}

func anyActionable(diags []compiler.Diagnostic) bool {
	for _, d := range diags {
		if d.Actionable() {
			return true
		}
	}
	return false
}
