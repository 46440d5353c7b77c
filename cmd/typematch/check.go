package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"typematch/internal/config"
	"typematch/internal/diag"
	"typematch/internal/diagfmt"
	"typematch/internal/observ"
	"typematch/internal/scenario"
	"typematch/internal/trace"
)

type checkFlags struct {
	format         string
	jobs           int
	maxDepth       int
	maxDiagnostics int
	timings        bool
	verbose        bool
	ui             string
}

func newCheckCmd() *cobra.Command {
	var fl checkFlags
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Run the cases of scenario files",
		Long: `Load scenario files (TOML or YAML), build their class hierarchies and
check every case against the matcher. Directories are searched recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, fl)
		},
	}
	cmd.Flags().StringVar(&fl.format, "format", "", "report format (pretty|json|msgpack)")
	cmd.Flags().IntVarP(&fl.jobs, "jobs", "j", 0, "cases run at once (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&fl.maxDepth, "max-depth", 0, "matcher recursion limit")
	cmd.Flags().IntVar(&fl.maxDiagnostics, "max-diagnostics", 0, "cap on printed diagnostics (0 = no limit)")
	cmd.Flags().BoolVar(&fl.timings, "timings", false, "print phase timings")
	cmd.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "print matcher notes of passing cases")
	cmd.Flags().StringVar(&fl.ui, "ui", "auto", "progress view (auto|on|off)")
	return cmd
}

// loadConfig reads --config when given, otherwise the nearest typematch.toml.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, fl checkFlags) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = fl.format
	}
	if flags.Changed("jobs") {
		cfg.Report.Jobs = fl.jobs
	}
	if flags.Changed("max-depth") {
		cfg.Matcher.MaxDepth = fl.maxDepth
	}
	if flags.Changed("max-diagnostics") {
		cfg.Report.MaxDiagnostics = fl.maxDiagnostics
	}
	colorMode, err := stringFlag(cmd, "color", cfg.Report.Color)
	if err != nil {
		return err
	}
	cfg.Report.Color = colorMode
	return cfg.Validate()
}

func runCheck(cmd *cobra.Command, args []string, fl checkFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg, fl); err != nil {
		return err
	}
	format, err := diagfmt.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	mode, err := readUIMode(fl.ui)
	if err != nil {
		return err
	}
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	tracer, cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()

	span := trace.Begin(tracer, trace.ScopeDriver, "check", 0).
		WithExtra("files", fmt.Sprintf("%d", len(files)))
	ctx := trace.WithSpan(cmd.Context(), span)

	timer := observ.NewTimer()
	suites, loadErr := scenario.LoadAll(files, timer)
	runOpts := scenario.RunOptions{
		Jobs:     cfg.Report.Jobs,
		MaxDepth: cfg.Matcher.MaxDepth,
		Timer:    timer,
	}
	var outcomes []scenario.Outcome
	// the progress view shares stdout with the pretty report only
	if format == diagfmt.FormatPretty && shouldUseTUI(mode, cmd.OutOrStdout()) {
		outcomes, err = runWithUI(ctx, cmd.OutOrStdout(), "typematch check", files, suites, runOpts)
	} else {
		outcomes, err = scenario.Run(ctx, suites, runOpts)
	}
	if err != nil {
		span.End(err.Error())
		return err
	}

	report := &diagfmt.Report{
		Outcomes: outcomes,
		Load:     loadDiagnostics(loadErr),
	}
	if fl.timings {
		timings := timer.Report()
		report.Timings = &timings
	}
	span.WithExtra("failed", fmt.Sprintf("%d", scenario.Failed(outcomes))).End("")

	out := cmd.OutOrStdout()
	if err := render(out, report, format, cfg, fl); err != nil {
		return err
	}
	if !report.Failed() {
		return nil
	}
	if ring := trace.RingOf(tracer); ring != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "trace: dumping ring buffer")
		if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
		}
	}
	return errCheckFailed
}

// loadDiagnostics flattens load failures, dropping repeats from files named
// more than once.
func loadDiagnostics(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	bag := diag.NewBag(0)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, d := range scenario.Diagnostics(err) {
		rep.Report(d)
	}
	bag.Sort()
	return bag.Items()
}

func render(w io.Writer, report *diagfmt.Report, format diagfmt.Format, cfg config.Config, fl checkFlags) error {
	switch format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(w, report, diagfmt.JSONOpts{Max: cfg.Report.MaxDiagnostics, Indent: true})
	case diagfmt.FormatMsgpack:
		return diagfmt.Msgpack(w, report, diagfmt.JSONOpts{Max: cfg.Report.MaxDiagnostics})
	default:
		return diagfmt.Pretty(w, report, diagfmt.PrettyOpts{
			Color:   useColor(cfg.Report.Color, w),
			Verbose: fl.verbose,
			Max:     cfg.Report.MaxDiagnostics,
			Timings: fl.timings,
		})
	}
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(w)
	}
}

// outputWriter maps the trace destination onto the command's stderr so tests
// can capture it; file paths are opened by the tracer.
func outputWriter(cmd *cobra.Command, output string) io.Writer {
	if output == "" || output == "-" {
		return cmd.ErrOrStderr()
	}
	return nil
}

// collectFiles expands directories into the scenario files below them, in
// lexical order. Explicit file arguments are kept as given.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// LoadAll reports missing files per path
			files = append(files, arg)
			continue
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() == config.FileName {
				return nil
			}
			if _, ferr := scenario.FormatOf(path); ferr == nil {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", strings.Join(args, ", "))
	}
	return files, nil
}
