package compiler

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
		ok   bool
	}{
		{"es3", TargetES3, true},
		{"ES5", TargetES5, true},
		{"es6", TargetES2015, true},
		{"es2015", TargetES2015, true},
		{" es2022 ", TargetES2022, true},
		{"esnext", TargetESNext, true},
		{"es7000", OldestTarget, false},
		{"", OldestTarget, false},
	}
	for _, tt := range tests {
		got, ok := ParseTarget(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseTarget(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseModuleKind(t *testing.T) {
	tests := []struct {
		in   string
		want ModuleKind
		ok   bool
	}{
		{"commonjs", KindCommonJS, true},
		{"CommonJS", KindCommonJS, true},
		{"es6", KindES2015, true},
		{"nodenext", KindNodeNext, true},
		{"webpack", KindNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseModuleKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseModuleKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefaultModuleKind(t *testing.T) {
	if got := TargetES3.DefaultModuleKind(); got != KindCommonJS {
		t.Fatalf("es3 default = %v", got)
	}
	if got := TargetES5.DefaultModuleKind(); got != KindCommonJS {
		t.Fatalf("es5 default = %v", got)
	}
	if got := TargetES2015.DefaultModuleKind(); got != KindESNext {
		t.Fatalf("es2015 default = %v", got)
	}
	if got := TargetESNext.DefaultModuleKind(); got != KindESNext {
		t.Fatalf("esnext default = %v", got)
	}
}

func TestDiagnosticLabel(t *testing.T) {
	d := Diagnostic{Code: 6059, Category: CatError}
	if d.Label() != "TS6059" {
		t.Fatalf("Label = %q", d.Label())
	}
}

func TestActionable(t *testing.T) {
	tests := []struct {
		cat  Category
		want bool
	}{
		{CatMessage, false},
		{CatSuggestion, false},
		{CatWarning, true},
		{CatError, true},
	}
	for _, tt := range tests {
		d := Diagnostic{Code: 1, Category: tt.cat}
		if d.Actionable() != tt.want {
			t.Fatalf("Actionable(%v) = %v, want %v", tt.cat, d.Actionable(), tt.want)
		}
	}
}
