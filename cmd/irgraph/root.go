package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"irgraph/internal/foreign"
	"irgraph/internal/observ"
	"irgraph/internal/pipeline"
	"irgraph/internal/prof"
	"irgraph/internal/reconstruct"
	"irgraph/internal/trace"
	"irgraph/internal/version"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failed")

// app holds the state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg     fileConfig
	cfgPath string

	log       *zap.Logger
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	profiler  *prof.Session
	timer     *observ.Timer
}

func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, log: zap.NewNop(), tracer: trace.Nop}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		if ring := trace.Ring(a.tracer); ring != nil {
			fmt.Fprintln(stderr, "trace (most recent events):")
			_ = ring.Dump(stderr, trace.FormatText)
		}
	}
	a.close()
	if err != nil {
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "irgraph",
		Short:         "Reconstruct typed graphs from LLVM IR modules",
		Long:          `irgraph parses LLVM IR and prints its functions, calls, inline assembly and source locations`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "path to irgraph.toml (default: search upward from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.Int("jobs", 0, "modules loaded in parallel (0 = GOMAXPROCS)")
	pf.String("ui", "auto", "progress display (auto|on|off)")
	pf.Bool("no-cache", false, "do not read or write the snapshot cache")
	pf.String("cache-dir", "", "snapshot cache directory")
	pf.String("backend", foreign.DefaultBackend, "IR parser backend (llir|llvmc)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile")
	pf.String("mem-profile", "", "write a heap profile")
	pf.String("runtime-trace", "", "write a Go runtime trace")

	root.AddCommand(
		newDumpCmd(a),
		newFuncsCmd(a),
		newLocsCmd(a),
		newCallsCmd(a),
		newStatsCmd(a),
		newCallgraphCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	root := cmd.Root()
	pf := root.PersistentFlags()

	cfgPath, err := pf.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return err
		}
		if ok {
			cfgPath = found
		}
	}
	if cfgPath != "" {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		if err := applyConfig(pf, cfg); err != nil {
			return fmt.Errorf("%s: %w", cfgPath, err)
		}
		a.cfg, a.cfgPath = cfg, cfgPath
	}

	colorFlag, err := pf.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := colorEnabled(colorFlag, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	if err := a.setupLogging(pf); err != nil {
		return err
	}
	if err := a.setupTracing(cmd); err != nil {
		return err
	}
	if err := a.setupProfiling(pf); err != nil {
		return err
	}

	timings, err := pf.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		a.timer = observ.NewTimer()
	}
	return nil
}

func (a *app) setupLogging(pf flagGetter) error {
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	levelStr, err := pf.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if quiet {
		levelStr = "error"
	}
	log, err := newLogger(a.stderr, levelStr)
	if err != nil {
		return err
	}
	a.log = log
	reconstruct.SetLogger(log.Named("reconstruct"))
	pipeline.SetLogger(log.Named("pipeline"))
	return nil
}

// newLogger builds a console logger without timestamps writing to w.
func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func (a *app) setupProfiling(pf flagGetter) error {
	var cfg prof.Config
	var err error
	if cfg.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = pf.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.RuntimeTrace, err = pf.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if cfg == (prof.Config{}) {
		return nil
	}
	a.profiler, err = prof.Start(cfg)
	return err
}

// close releases everything setup acquired. Safe after a partial setup.
func (a *app) close() {
	if a.heartbeat != nil {
		a.heartbeat.Stop()
	}
	if err := a.tracer.Flush(); err != nil {
		fmt.Fprintf(a.stderr, "trace: flush error: %v\n", err)
	}
	if err := a.tracer.Close(); err != nil {
		fmt.Fprintf(a.stderr, "trace: close error: %v\n", err)
	}
	if err := a.profiler.Stop(); err != nil {
		fmt.Fprintf(a.stderr, "profile: %v\n", err)
	}
	_ = a.log.Sync()
}

// flagGetter is the subset of a flag set that setup reads.
type flagGetter interface {
	GetString(name string) (string, error)
	GetBool(name string) (bool, error)
	GetInt(name string) (int, error)
	GetDuration(name string) (time.Duration, error)
}

func colorEnabled(value string, out *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return isTerminal(out), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
