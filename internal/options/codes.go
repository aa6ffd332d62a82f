package options

import (
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// BaselineIgnoredCodes are compiler diagnostics considered non-actionable
// for in-memory compilation and always merged into the ignore list:
// 6059 (rootDir containment), 18002/18003 (empty file lists). User
// configuration can extend this set but never removes it.
var BaselineIgnoredCodes = []int{6059, 18002, 18003}

// parseCodes flattens a loosely-typed ignore-code value into numeric codes.
// Accepted element shapes: bare numbers, "1234", "TS1234", and
// comma-separated lists of either. Invalid or empty entries are dropped
// silently; code 0 and unparseable strings both mean "ignore nothing".
func parseCodes(v any) []int {
	var out []int
	appendCode := func(c int) {
		if c > 0 {
			out = append(out, c)
		}
	}
	var walk func(item any)
	walk = func(item any) {
		switch val := item.(type) {
		case nil:
		case int:
			appendCode(val)
		case int64:
			if c, err := safecast.Conv[int](val); err == nil {
				appendCode(c)
			}
		case float64:
			// JSON-decoded numbers arrive here; non-integral values fail
			// the conversion and are dropped like any other invalid entry.
			if c, err := safecast.Convert[int](val); err == nil {
				appendCode(c)
			}
		case string:
			for _, part := range strings.Split(val, ",") {
				appendCode(parseCodeString(part))
			}
		case []any:
			for _, el := range val {
				walk(el)
			}
		}
	}
	walk(v)
	return out
}

func parseCodeString(s string) int {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "TS")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// mergeCodes unions user codes with the baseline, deduplicated and sorted
// so the list serializes identically regardless of input order.
func mergeCodes(user []int) []int {
	seen := make(map[int]bool, len(user)+len(BaselineIgnoredCodes))
	out := make([]int, 0, len(user)+len(BaselineIgnoredCodes))
	for _, c := range BaselineIgnoredCodes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range user {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}
