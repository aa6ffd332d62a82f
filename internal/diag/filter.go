// Package diag filters and reports compiler diagnostics according to the
// normalized diagnostics policy. It is stateless: every function is a pure
// consumer of the policy and the diagnostic list.
package diag

import (
	"kiln/internal/compiler"
	"kiln/internal/options"
)

// Filter returns the diagnostics that should be surfaced. When filePath is
// set and fails the policy's path filter the whole batch is dropped;
// otherwise each diagnostic is dropped individually when its own file
// fails the filter or its code is ignored.
func Filter(policy options.Diagnostics, diags []compiler.Diagnostic, filePath string) []compiler.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	if filePath != "" && !policy.CheckPath(filePath) {
		return nil
	}
	ignored := make(map[int]bool, len(policy.IgnoreCodes))
	for _, c := range policy.IgnoreCodes {
		ignored[c] = true
	}
	var out []compiler.Diagnostic
	for _, d := range diags {
		if d.File != "" && !policy.CheckPath(d.File) {
			continue
		}
		if ignored[d.Code] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Codes extracts the code list of a diagnostic batch, in order.
func Codes(diags []compiler.Diagnostic) []int {
	out := make([]int, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}
