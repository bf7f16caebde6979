package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"irgraph/internal/foreign"
	"irgraph/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
	showDeps bool
}

type versionPayload struct {
	Tool string `json:"tool"`
	version.Fingerprint
	Backends []string `json:"backends"`
}

func newVersionCmd() *cobra.Command {
	var (
		format string
		opts   versionOptions
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show irgraph build fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = strings.ToLower(format)
			if full {
				opts.showHash, opts.showDate, opts.showDeps = true, true, true
			}
			switch opts.format {
			case "pretty", "json":
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}

			fp := version.Current()
			if opts.format == "json" {
				return renderVersionJSON(cmd.OutOrStdout(), fp, opts)
			}
			renderVersionPretty(cmd.OutOrStdout(), fp, opts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.showHash, "hash", false, "include git commit hash")
	cmd.Flags().BoolVar(&opts.showDate, "date", false, "include build timestamp")
	cmd.Flags().BoolVar(&opts.showDeps, "deps", false, "include parser dependency versions")
	cmd.Flags().BoolVar(&full, "full", false, "show every recorded bit of build metadata")
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer, fp version.Fingerprint, opts versionOptions) {
	fmt.Fprintf(out, "irgraph %s\n", version.Colored())
	fmt.Fprintf(out, "backends: %s\n", strings.Join(foreign.Backends(), ", "))
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(fp.GitCommit))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(fp.BuildDate))
	}
	if opts.showDeps {
		fmt.Fprintf(out, "go:     %s\n", valueOrUnknown(fp.GoVersion))
		deps := make([]string, 0, len(fp.Deps))
		for path := range fp.Deps {
			deps = append(deps, path)
		}
		slices.Sort(deps)
		for _, path := range deps {
			fmt.Fprintf(out, "dep:    %s %s\n", path, fp.Deps[path])
		}
	}
}

func renderVersionJSON(out io.Writer, fp version.Fingerprint, opts versionOptions) error {
	payload := versionPayload{Tool: "irgraph", Fingerprint: version.Fingerprint{Version: fp.Version}, Backends: foreign.Backends()}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(fp.GitCommit)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(fp.BuildDate)
	}
	if opts.showDeps {
		payload.GoVersion = fp.GoVersion
		payload.Deps = fp.Deps
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
