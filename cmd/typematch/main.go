package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typematch/internal/version"
)

// errCheckFailed signals a run whose report was already printed.
var errCheckFailed = errors.New("check failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "typematch",
		Short:         "Structural type matching with type variable inference",
		Long:          `typematch checks declared type expectations from scenario files against the matcher`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "path to typematch.toml (default: search upwards from the working directory)")
	root.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().Int("trace-ring-size", 0, "ring buffer capacity in events")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the root command; any error exits with status 1.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			root.PrintErrln("error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
