package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/BendyLand/blfmt-sub000/internal/version"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("blfmt: failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blfmt [flags] <path> [path...]",
		Short: "Format C and C++ source files",
		Long: `blfmt reformats C and C++ sources in place. Directories are walked
recursively; "-" reads from stdin and writes to stdout.`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFormat,
	}

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().BoolP("quiet", "q", false, "suppress non-essential output")
	root.PersistentFlags().BoolP("verbose", "v", false, "log per-file debug information")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	addFormatFlags(root)

	root.AddCommand(newTreeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main builds the command tree, runs it under an interrupt-aware context and
// exits with status 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "blfmt:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func useColor(cmd *cobra.Command, w io.Writer) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return writerIsTerminal(w), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
