package compiler

import "strings"

// Target is the compiler's emit target edition.
type Target uint8

const (
	TargetES3 Target = iota
	TargetES5
	TargetES2015
	TargetES2016
	TargetES2017
	TargetES2018
	TargetES2019
	TargetES2020
	TargetES2021
	TargetES2022
	TargetES2023
	TargetES2024
	TargetESNext
)

// OldestTarget is the default when a project sets no explicit target.
const OldestTarget = TargetES3

// MaxLTSTarget is the newest target fully supported by the two most recent
// Node LTS lines. Emitting past it without a post-transpiler risks syntax
// the runtime cannot load.
const MaxLTSTarget = TargetES2022

var targetNames = map[Target]string{
	TargetES3:    "es3",
	TargetES5:    "es5",
	TargetES2015: "es2015",
	TargetES2016: "es2016",
	TargetES2017: "es2017",
	TargetES2018: "es2018",
	TargetES2019: "es2019",
	TargetES2020: "es2020",
	TargetES2021: "es2021",
	TargetES2022: "es2022",
	TargetES2023: "es2023",
	TargetES2024: "es2024",
	TargetESNext: "esnext",
}

func (t Target) String() string {
	if s, ok := targetNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseTarget maps an option value to a Target. "es6" is accepted as an
// alias for es2015, matching the compiler's own spelling rules.
func ParseTarget(s string) (Target, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "es6" {
		return TargetES2015, true
	}
	for t, name := range targetNames {
		if name == s {
			return t, true
		}
	}
	return OldestTarget, false
}

// DefaultModuleKind is the module kind the compiler would pick for a target
// with no explicit module option: legacy targets get the synchronous kind,
// modern ones the dynamic one.
func (t Target) DefaultModuleKind() ModuleKind {
	if t <= TargetES5 {
		return KindCommonJS
	}
	return KindESNext
}
