package options

import (
	"fmt"
	"regexp"

	"github.com/go-viper/mapstructure/v2"
)

// Diagnostics is the normalized diagnostics policy.
type Diagnostics struct {
	// IgnoreCodes always contains the baseline set, sorted.
	IgnoreCodes []int `json:"ignoreCodes"`
	// PathPattern restricts reporting to matching file paths; empty means
	// no restriction.
	PathPattern string `json:"pathRegex,omitempty"`
	// Pretty selects colorized formatting.
	Pretty bool `json:"pretty"`
	// WarnOnly downgrades surviving diagnostics from fatal to a warning.
	WarnOnly bool `json:"warnOnly"`

	pathRe *regexp.Regexp
}

// CheckPath reports whether a file path passes the policy's path filter.
// An unset filter passes everything.
func (d Diagnostics) CheckPath(path string) bool {
	if d.pathRe == nil {
		return true
	}
	return d.pathRe.MatchString(path)
}

type diagnosticsShape struct {
	IgnoreCodes any    `mapstructure:"ignoreCodes"`
	PathRegex   string `mapstructure:"pathRegex"`
	Pretty      *bool  `mapstructure:"pretty"`
	WarnOnly    bool   `mapstructure:"warnOnly"`
}

// normalizeDiagnostics accepts a boolean (enable or disable the default
// policy) or a per-field object. Disabling never clears the ignore
// baseline; it only makes surviving diagnostics non-fatal.
func normalizeDiagnostics(v any) (Diagnostics, error) {
	d := Diagnostics{
		IgnoreCodes: mergeCodes(nil),
		Pretty:      true,
	}
	switch val := v.(type) {
	case nil:
		// defaults
	case bool:
		if !val {
			d.WarnOnly = true
		}
	case map[string]any:
		var shape diagnosticsShape
		if err := mapstructure.Decode(val, &shape); err != nil {
			return Diagnostics{}, fmt.Errorf("option \"diagnostics\": %w", err)
		}
		d.IgnoreCodes = mergeCodes(parseCodes(shape.IgnoreCodes))
		d.PathPattern = shape.PathRegex
		if shape.Pretty != nil {
			d.Pretty = *shape.Pretty
		}
		d.WarnOnly = shape.WarnOnly
	default:
		return Diagnostics{}, fmt.Errorf("option \"diagnostics\": unsupported value of type %T", v)
	}
	if d.PathPattern != "" {
		re, err := regexp.Compile(d.PathPattern)
		if err != nil {
			return Diagnostics{}, fmt.Errorf("option \"diagnostics.pathRegex\": %w", err)
		}
		d.pathRe = re
	}
	return d, nil
}
