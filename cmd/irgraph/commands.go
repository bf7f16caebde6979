package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"irgraph/internal/callgraph"
	"irgraph/internal/pipeline"
	"irgraph/internal/render"
)

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FILE...",
		Short: "Print the reconstructed graph of each module",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			if !cmd.Flags().Changed("format") && a.cfg.Output.Format != "" {
				formatStr = a.cfg.Output.Format
			}
			format, err := render.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				return render.Dump(w, res.Module, format)
			})
		},
	}
	cmd.Flags().String("format", "text", "output format (text|json|yaml)")
	return cmd
}

func newFuncsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "funcs FILE...",
		Short: "List functions with block and instruction counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				return render.Functions(w, res.Module)
			})
		},
	}
}

func newLocsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locs FILE...",
		Short: "List the distinct source locations in sorted order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				return render.Locations(w, res.Module)
			})
		},
	}
}

func newCallsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calls FILE...",
		Short: "List every call site and what it calls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				return render.Calls(w, res.Module)
			})
		},
	}
}

var (
	statsBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statsTitle = lipgloss.NewStyle().Bold(true)
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE...",
		Short: "Summarize each module",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				box, err := statsText(res)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, box)
				return err
			})
		},
	}
}

func statsText(res pipeline.Result) (string, error) {
	s := render.Summarize(res.Module)
	rows := make([][]string, 0, len(s.Rows())+1)
	for _, r := range s.Rows() {
		rows = append(rows, []string{r[0], r[1]})
	}
	if res.Cached {
		rows = append(rows, []string{"source", "cache"})
	}
	var table strings.Builder
	if err := render.Table(&table, nil, rows); err != nil {
		return "", err
	}
	body := statsTitle.Render(s.Module) + "\n" + strings.TrimRight(table.String(), "\n")
	return statsBox.Render(body), nil
}

func newCallgraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "callgraph FILE...",
		Short: "Order functions bottom-up by direct calls and report recursion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachModule(cmd, args, func(w io.Writer, res pipeline.Result) error {
				return writeCallgraph(w, callgraph.Build(res.Module))
			})
		},
	}
}

func writeCallgraph(w io.Writer, g callgraph.Graph) error {
	names := func(ids []callgraph.FuncID) string {
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = g.Names[id]
		}
		return strings.Join(out, " ")
	}

	var b strings.Builder
	topo := callgraph.BottomUp(g)
	b.WriteString("order:\n")
	for i, batch := range topo.Batches {
		fmt.Fprintf(&b, "  wave %d: %s\n", i+1, names(batch))
	}
	if topo.Cyclic {
		rec := callgraph.Recursive(g)
		fmt.Fprintf(&b, "recursive: %s\n", names(rec))
		var blocked []callgraph.FuncID
		for _, id := range topo.Unordered {
			if !slices.Contains(rec, id) {
				blocked = append(blocked, id)
			}
		}
		if len(blocked) > 0 {
			fmt.Fprintf(&b, "calls into recursion: %s\n", names(blocked))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
