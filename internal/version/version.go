package version

import (
	"crypto/sha256"
	"encoding/hex"
)

// Version information for the kiln plugin.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the plugin.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Digest returns a stable fingerprint of this build. Anything that can
// change emitted output between releases must flow through it, so a cache
// key rolls over on upgrade even when user configuration is unchanged.
func Digest() string {
	h := sha256.New()
	_, _ = h.Write([]byte("kiln\x00"))
	_, _ = h.Write([]byte(Version))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(GitCommit))
	return hex.EncodeToString(h.Sum(nil))
}
