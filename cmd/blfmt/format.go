package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/BendyLand/blfmt-sub000/internal/config"
	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/diagfmt"
	"github.com/BendyLand/blfmt-sub000/internal/driver"
	"github.com/BendyLand/blfmt-sub000/internal/observ"
)

const stdinName = "<stdin>"

func addFormatFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("style", "s", "stroustrup", "brace style (allman|knr|stroustrup)")
	flags.Int("indent", 4, "indentation width in spaces")
	flags.Bool("tabs", false, "indent with tabs")
	flags.Bool("check", false, "report files that would change without rewriting them")
	flags.Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	flags.String("format", "text", "output format (text|short|json)")
	flags.IntP("jobs", "j", 0, "number of files formatted in parallel (0 = GOMAXPROCS)")
	flags.Bool("no-cache", false, "do not read or write the formatting cache")
	flags.Bool("verify", false, "re-parse the output and check tokens and idempotence")
	flags.String("ui", "off", "progress view (auto|on|off)")
	flags.Lookup("ui").NoOptDefVal = "auto"
	flags.String("lang", "", "language for stdin or to override detection (c|cpp)")
	flags.StringSlice("exclude", nil, "glob of files or directories to skip (repeatable)")
}

type runFlags struct {
	check          bool
	stdout         bool
	verify         bool
	output         string
	ui             uiMode
	lang           cst.Language
	quiet          bool
	verbose        bool
	timings        bool
	color          bool
	maxDiagnostics int
}

func readRunFlags(cmd *cobra.Command) (runFlags, error) {
	var rf runFlags
	var err error
	flags := cmd.Flags()
	if rf.check, err = flags.GetBool("check"); err != nil {
		return rf, err
	}
	if rf.stdout, err = flags.GetBool("stdout"); err != nil {
		return rf, err
	}
	if rf.verify, err = flags.GetBool("verify"); err != nil {
		return rf, err
	}
	if rf.output, err = flags.GetString("format"); err != nil {
		return rf, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return rf, err
	}
	if rf.ui, err = readUIMode(uiValue); err != nil {
		return rf, err
	}
	if flags.Changed("lang") {
		name, _ := flags.GetString("lang")
		if rf.lang, err = cst.ParseLanguage(name); err != nil {
			return rf, fmt.Errorf("--lang: %w", err)
		}
	}

	persistent := cmd.Root().PersistentFlags()
	if rf.quiet, err = persistent.GetBool("quiet"); err != nil {
		return rf, err
	}
	if rf.verbose, err = persistent.GetBool("verbose"); err != nil {
		return rf, err
	}
	if rf.timings, err = persistent.GetBool("timings"); err != nil {
		return rf, err
	}
	if rf.maxDiagnostics, err = persistent.GetInt("max-diagnostics"); err != nil {
		return rf, err
	}
	if rf.color, err = useColor(cmd, cmd.ErrOrStderr()); err != nil {
		return rf, err
	}

	switch {
	case rf.output != "text" && rf.output != "short" && rf.output != "json":
		return rf, fmt.Errorf("unsupported output format %q (expected text|short|json)", rf.output)
	case rf.stdout && rf.check:
		return rf, fmt.Errorf("--stdout cannot be used with --check")
	case rf.stdout && rf.output == "json":
		return rf, fmt.Errorf("--stdout cannot be combined with json output")
	}
	return rf, nil
}

// readOverrides collects only the flags the user actually set, so that
// values from .blfmt.toml are not masked by flag defaults.
func readOverrides(cmd *cobra.Command) config.Overrides {
	flags := cmd.Flags()
	var o config.Overrides
	if flags.Changed("style") {
		v, _ := flags.GetString("style")
		o.Style = &v
	}
	if flags.Changed("indent") {
		v, _ := flags.GetInt("indent")
		o.IndentWidth = &v
	}
	if flags.Changed("tabs") {
		v, _ := flags.GetBool("tabs")
		o.UseTabs = &v
	}
	if flags.Changed("jobs") {
		v, _ := flags.GetInt("jobs")
		o.Jobs = &v
	}
	if flags.Changed("no-cache") {
		v, _ := flags.GetBool("no-cache")
		o.NoCache = &v
	}
	if flags.Changed("exclude") {
		o.Exclude, _ = flags.GetStringSlice("exclude")
	}
	return o
}

func isStdin(args []string) bool {
	return len(args) == 1 && args[0] == "-"
}

// configStart is the directory config discovery starts from.
func configStart(args []string) string {
	if isStdin(args) {
		return "."
	}
	first := args[0]
	if info, err := os.Stat(first); err == nil && !info.IsDir() {
		return filepath.Dir(first)
	}
	return first
}

func runFormat(cmd *cobra.Command, args []string) error {
	rf, err := readRunFlags(cmd)
	if err != nil {
		return err
	}

	level := log.InfoLevel
	switch {
	case rf.verbose:
		level = log.DebugLevel
	case rf.quiet:
		level = log.WarnLevel
	}
	logger := observ.NewLogger(cmd.ErrOrStderr(), level)
	ctx := observ.WithLogger(cmd.Context(), logger)

	cfg, err := config.Discover(configStart(args))
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		logger.Debug("using config", "path", cfg.Path)
	}
	cfg, err = cfg.Merge(readOverrides(cmd))
	if err != nil {
		return err
	}

	opts := driver.FormatOptions{
		Check:          rf.check,
		Stdout:         rf.stdout,
		Verify:         rf.verify,
		MaxDiagnostics: rf.maxDiagnostics,
		Jobs:           cfg.Jobs,
		Lang:           rf.lang,
		Options:        cfg.FormatOptions(),
		Exclude:        cfg.Exclude,
	}
	if rf.timings {
		opts.Timer = observ.NewTimer()
	}
	if cfg.Cache && !rf.verify {
		cache, cacheErr := driver.OpenDiskCache("blfmt")
		if cacheErr != nil {
			logger.Warn("cache disabled", "err", cacheErr)
		} else {
			opts.Cache = cache
		}
	}

	var batch *driver.Batch
	switch {
	case isStdin(args):
		batch, err = formatStdin(ctx, cmd.InOrStdin(), &rf, opts)
	case rf.output != "json" && shouldUseTUI(rf.ui, cmd.ErrOrStderr()):
		batch, err = runFormatWithUI(ctx, cmd.ErrOrStderr(), args, opts)
	default:
		batch, err = driver.FormatPaths(ctx, args, opts)
	}
	if err != nil {
		return err
	}

	if err := report(cmd, batch, &rf); err != nil {
		return err
	}
	if rf.timings {
		if err := opts.Timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	if failed := batch.Failed(); failed > 0 {
		logger.Error("some files could not be formatted", "failed", failed)
		return errReported
	}
	if rf.check && batch.Changed() > 0 {
		logger.Info("formatting changes required", "files", batch.Changed())
		return errReported
	}
	return nil
}

func formatStdin(ctx context.Context, in io.Reader, rf *runFlags, opts driver.FormatOptions) (*driver.Batch, error) {
	src, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if opts.Lang == cst.LangUnknown {
		opts.Lang = cst.LangC
	}
	// stdin всегда печатается, кроме режима --check
	rf.stdout = !rf.check
	return driver.FormatSource(ctx, stdinName, src, opts)
}

func report(cmd *cobra.Command, batch *driver.Batch, rf *runFlags) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if rf.output == "json" {
		files := make([]diagfmt.FileReport, 0, len(batch.Results))
		for _, res := range batch.Results {
			files = append(files, diagfmt.FileReport{
				Path:        res.Path,
				Changed:     res.Changed,
				Cached:      res.Cached,
				Err:         res.Err,
				Diagnostics: res.Diagnostics,
			})
		}
		return diagfmt.Run(out, files, batch.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			Max:              rf.maxDiagnostics,
			IncludeNotes:     true,
		})
	}

	pretty := diagfmt.PrettyOpts{Color: rf.color, Context: 1, PathMode: diagfmt.PathModeAuto, ShowNotes: rf.verbose}

	var all []diag.Diagnostic
	for _, res := range batch.Results {
		switch {
		case len(res.Diagnostics) == 0:
		case rf.output == "short":
			all = append(all, res.Diagnostics...)
		default:
			if err := diagfmt.PrettyItems(errOut, res.Diagnostics, batch.Files, pretty); err != nil {
				return err
			}
		}
		if res.Err != nil {
			fmt.Fprintf(errOut, "blfmt: %v\n", res.Err)
			continue
		}
		switch {
		case rf.stdout:
			if _, err := out.Write(res.Formatted); err != nil {
				return err
			}
		case rf.check && res.Changed:
			if !rf.quiet {
				fmt.Fprintln(out, res.Path)
			}
		case res.Changed && !rf.quiet:
			fmt.Fprintf(out, "reformatted %s\n", res.Path)
		}
	}

	if short := diag.FormatShortDiagnostics(all, batch.Files, rf.verbose); short != "" {
		fmt.Fprintln(errOut, short)
	}
	if !rf.stdout && !rf.quiet && len(batch.Results) > 1 {
		fmt.Fprintln(errOut, summary(batch, rf.check))
	}
	return nil
}

func summary(batch *driver.Batch, check bool) string {
	verb := "reformatted"
	if check {
		verb = "would reformat"
	}
	parts := []string{fmt.Sprintf("%d files", len(batch.Results)), fmt.Sprintf("%s %d", verb, batch.Changed())}
	if failed := batch.Failed(); failed > 0 {
		parts = append(parts, fmt.Sprintf("failed %d", failed))
	}
	return strings.Join(parts, ", ")
}
