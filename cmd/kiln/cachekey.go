package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kiln/internal/configset"
	"kiln/internal/runner"
)

var cacheKeyCmd = &cobra.Command{
	Use:   "cachekey [flags] <config.json>",
	Short: "Print the cache key for a host project configuration",
	Long:  `Print the deterministic cache key derived from a host project configuration, and the versioned on-disk cache directory when caching is enabled`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheKey,
}

func init() {
	cacheKeyCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type cacheKeyPayload struct {
	CacheKey string `json:"cacheKey"`
	CacheDir string `json:"cacheDirectory,omitempty"`
}

func runCacheKey(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	logger, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	hookMap, err := loadHooks()
	if err != nil {
		return err
	}

	host, err := runner.Load(args[0])
	if err != nil {
		return err
	}
	cs := configset.New(configset.Params{
		Host:   host,
		Logger: logger,
		Hooks:  hookMap,
	})

	key, err := cs.CacheKey()
	if err != nil {
		cmd.SilenceUsage = true
		return err
	}
	dir, ok, err := cs.CacheDir()
	if err != nil {
		cmd.SilenceUsage = true
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		payload := cacheKeyPayload{CacheKey: key}
		if ok {
			payload.CacheDir = dir
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		fmt.Fprintf(out, "key: %s\n", key)
		if ok {
			fmt.Fprintf(out, "dir: %s\n", dir)
		} else {
			fmt.Fprintln(out, "dir: (caching disabled)")
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
