package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kiln/internal/hooks"
	"kiln/internal/version"
)

// hooksEnvVar names the TOML hooks file loaded at startup. Unset means no
// hooks.
const hooksEnvVar = "KILN_HOOKS"

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Kiln test-pipeline compile-step configuration tool",
	Long:  `Kiln resolves the effective compiler configuration and cache key for a test pipeline's TypeScript compile step`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheKeyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("verbose", false, "emit debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the persistent --color flag against the output stream.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch flag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("unknown color value: %s", flag)
	}
}

// newLogger builds the CLI logging sink. Diagnostics go to stderr so stdout
// stays machine-readable.
func newLogger(cmd *cobra.Command, color bool) (hclog.Logger, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	colorMode := hclog.ColorOff
	if color {
		colorMode = hclog.ForceColor
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "kiln",
		Level:  level,
		Output: os.Stderr,
		Color:  colorMode,
	}), nil
}

// loadHooks reads the hooks file named by KILN_HOOKS, empty when unset.
func loadHooks() (hooks.Hooks, error) {
	path := os.Getenv(hooksEnvVar)
	if path == "" {
		return hooks.Hooks{}, nil
	}
	h, err := hooks.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", hooksEnvVar, err)
	}
	return h, nil
}
