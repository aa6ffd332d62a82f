package tsconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"kiln/internal/compiler"
)

var (
	errorColor    = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow, color.Bold)
	locationColor = color.New(color.FgCyan)
)

// FormatDiagnostics renders diagnostics one per line in the compiler's
// conventional shape: <file>:<line> - <category> TS<code>: <message>.
func (m *Module) FormatDiagnostics(diags []compiler.Diagnostic, pretty bool) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		if d.File != "" {
			loc := d.File
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", d.File, d.Line)
			}
			if pretty {
				b.WriteString(locationColor.Sprint(loc))
			} else {
				b.WriteString(loc)
			}
			b.WriteString(" - ")
		}
		label := fmt.Sprintf("%s %s", d.Category, d.Label())
		if pretty {
			switch d.Category {
			case compiler.CatError:
				label = errorColor.Sprint(label)
			case compiler.CatWarning:
				label = warningColor.Sprint(label)
			}
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
