package compiler

import "fmt"

// Category defines the importance of a compiler diagnostic.
type Category uint8

const (
	// CatMessage is for purely informational diagnostics.
	CatMessage Category = iota
	// CatSuggestion is for optional improvements.
	CatSuggestion
	// CatWarning is for issues that do not block compilation.
	CatWarning
	CatError
)

func (c Category) String() string {
	switch c {
	case CatMessage:
		return "message"
	case CatSuggestion:
		return "suggestion"
	case CatWarning:
		return "warning"
	case CatError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is one compiler-emitted issue. File and Line are zero when
// the diagnostic has no source location (configuration errors mostly).
type Diagnostic struct {
	Code     int
	Category Category
	File     string
	Line     int
	Message  string
}

// Label renders the compiler's conventional code label, e.g. "TS6059".
func (d Diagnostic) Label() string {
	return fmt.Sprintf("TS%d", d.Code)
}

// Actionable reports whether the diagnostic is at least warning-severity.
// Only actionable diagnostics can make a reported batch fatal.
func (d Diagnostic) Actionable() bool {
	return d.Category >= CatWarning
}
