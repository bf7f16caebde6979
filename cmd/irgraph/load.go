package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irgraph/internal/pipeline"
	"irgraph/internal/snapcache"
)

// loadInputs runs the pipeline over paths using the global flags.
func (a *app) loadInputs(cmd *cobra.Command, paths []string) ([]pipeline.Result, error) {
	pf := cmd.Root().PersistentFlags()

	backend, err := pf.GetString("backend")
	if err != nil {
		return nil, fmt.Errorf("failed to get backend flag: %w", err)
	}
	jobs, err := pf.GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	uiFlag, err := pf.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{Backend: backend, Jobs: jobs, Timer: a.timer}
	if opts.Cache, err = a.openCache(pf); err != nil {
		return nil, err
	}

	var results []pipeline.Result
	if shouldUseTUI(mode, quiet) {
		results, err = a.runWithUI(cmd.Context(), "loading "+cmd.Name(), paths, opts)
	} else {
		results, err = pipeline.Run(cmd.Context(), paths, opts)
	}
	if a.timer != nil {
		fmt.Fprint(a.stderr, a.timer.Summary())
	}
	return results, err
}

func (a *app) openCache(pf flagGetter) (*snapcache.Cache, error) {
	noCache, err := pf.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if noCache {
		return nil, nil
	}
	dir, err := pf.GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	c, err := snapcache.Open(dir)
	if err != nil {
		// an unusable cache only costs speed
		a.log.Warn("snapshot cache disabled", zap.Error(err))
		return nil, nil
	}
	return c, nil
}

// eachModule loads paths and calls fn for every module that loaded. Failed
// inputs are reported on stderr and turn the command into a failure after
// the rest has been printed.
func (a *app) eachModule(cmd *cobra.Command, paths []string, fn func(w io.Writer, res pipeline.Result) error) error {
	results, err := a.loadInputs(cmd, paths)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed, printed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(a.stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		if len(results) > 1 {
			if printed > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", res.Path)
		}
		printed++
		if err := fn(out, res); err != nil {
			return err
		}
	}
	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d of %d inputs failed\n", failed, len(results))
		return errReported
	}
	return nil
}
