package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kiln/internal/configset"
	"kiln/internal/runner"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <config.json>...",
	Short: "Resolve the effective compile-step configuration",
	Long:  `Resolve each host project configuration into its effective compiler options, canonical plugin settings and cache key`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	resolveCmd.Flags().Bool("diagnostics", false, "print raised configuration diagnostics to stderr")
}

func runResolve(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	showDiags, err := cmd.Flags().GetBool("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, color)
	if err != nil {
		return err
	}
	hookMap, err := loadHooks()
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		output  = make(map[string]json.RawMessage, len(args))
		g, gctx = errgroup.WithContext(cmd.Context())
	)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, path := range args {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			host, err := runner.Load(path)
			if err != nil {
				return err
			}
			cs := configset.New(configset.Params{
				Host:   host,
				Logger: logger,
				Hooks:  hookMap,
			})
			if showDiags {
				p, err := cs.ResolvedProject()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if len(p.Diagnostics) > 0 {
					fmt.Fprintln(os.Stderr, cs.CompilerModule().FormatDiagnostics(p.Diagnostics, color))
				}
			}
			data, err := json.Marshal(cs)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			output[path] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cmd.SilenceUsage = true
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if len(args) == 1 {
		return enc.Encode(output[args[0]])
	}
	// Stable order regardless of which worker finished first.
	paths := make([]string, 0, len(output))
	for p := range output {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	ordered := make([]map[string]json.RawMessage, 0, len(paths))
	for _, p := range paths {
		ordered = append(ordered, map[string]json.RawMessage{p: output[p]})
	}
	return enc.Encode(ordered)
}
