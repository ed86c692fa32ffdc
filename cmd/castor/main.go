package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"castor/internal/version"
)

// newRootCmd assembles the command tree. Tests build a fresh tree per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "castor",
		Short:         "Conversion classification for C#-like type universes",
		Long:          `castor answers "does T convert to U, and how?" for a declared type universe`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			profileCleanup = stopProfiling
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if traceCleanup != nil {
				traceCleanup()
				traceCleanup = nil
			}
			if profileCleanup != nil {
				profileCleanup()
				profileCleanup = nil
			}
		},
	}

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newMatrixCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.StringP("universe", "u", "", "type universe manifest (.toml, .yaml or .msgpack)")
	flags.String("dialect", "", "override the universe dialect (standard|extended)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per query")
	flags.Int("jobs", 0, "max parallel queries (0=auto)")
	flags.Bool("progress", false, "show batch progress on a terminal")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring|both")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

var (
	traceCleanup   func()
	profileCleanup func()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
