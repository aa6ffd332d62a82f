package compiler

import "strings"

// ModuleKind is the compiler's emitted module format.
type ModuleKind uint8

const (
	KindNone ModuleKind = iota
	KindCommonJS
	KindAMD
	KindUMD
	KindSystem
	KindES2015
	KindES2020
	KindES2022
	KindESNext
	KindNode16
	KindNodeNext
)

var kindNames = map[ModuleKind]string{
	KindNone:     "none",
	KindCommonJS: "commonjs",
	KindAMD:      "amd",
	KindUMD:      "umd",
	KindSystem:   "system",
	KindES2015:   "es2015",
	KindES2020:   "es2020",
	KindES2022:   "es2022",
	KindESNext:   "esnext",
	KindNode16:   "node16",
	KindNodeNext: "nodenext",
}

func (k ModuleKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseModuleKind maps an option value to a ModuleKind. "es6" is accepted
// as an alias for es2015.
func ParseModuleKind(s string) (ModuleKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "es6" {
		return KindES2015, true
	}
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindNone, false
}
