package respath

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func packageMain(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if json.Unmarshal(data, &pkg) != nil || pkg.Main == "" {
		return "", false
	}
	p := filepath.Join(dir, filepath.FromSlash(pkg.Main))
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return "", false
}
