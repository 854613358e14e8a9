package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

type palette struct {
	on      bool
	err     *color.Color
	warn    *color.Color
	info    *color.Color
	path    *color.Color
	gutter  *color.Color
	caret   *color.Color
	noteTag *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		on:      on,
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		path:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		noteTag: color.New(color.FgCyan),
	}
	if on {
		// принудительно, даже если stdout не терминал
		for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.gutter, p.caret, p.noteTag} {
			c.EnableColor()
		}
	}
	return p
}

func (p palette) paint(c *color.Color, s string) string {
	if !p.on {
		return s
	}
	return c.Sprint(s)
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	return PrettyItems(w, bag.Items(), fs, opts)
}

// PrettyItems is Pretty over a plain slice.
func PrettyItems(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var b strings.Builder
	for _, d := range items {
		writeDiagnostic(&b, d, fs, opts, pal)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func location(span source.Span, fs *source.FileSet, mode PathMode) (string, source.LineCol, source.LineCol) {
	start, end := fs.Resolve(span)
	path := formatPath(fs.Get(span.File), fs, mode)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col), start, end
}

func writeDiagnostic(b *strings.Builder, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	loc, start, end := location(d.Primary, fs, opts.PathMode)
	sev := pal.severity(d.Severity)
	fmt.Fprintf(b, "%s: %s: %s\n",
		pal.paint(pal.path, loc),
		pal.paint(sev, d.Severity.String()+" "+d.Code.ID()),
		d.Message)

	if f := fs.Get(d.Primary.File); f != nil && len(f.Content) > 0 {
		writeSnippet(b, f, start, end, int(opts.Context), pal)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			noteLoc, _, _ := location(n.Span, fs, opts.PathMode)
			fmt.Fprintf(b, "  %s %s: %s\n", pal.paint(pal.noteTag, "note:"), noteLoc, n.Msg)
		}
	}
}

func writeSnippet(b *strings.Builder, f *source.File, start, end source.LineCol, context int, pal palette) {
	first := max(int(start.Line)-context, 1)
	width := len(strconv.Itoa(int(start.Line)))
	gutter := func(label string) string {
		return pal.paint(pal.gutter, fmt.Sprintf(" %*s |", width, label))
	}
	for ln := first; ln <= int(start.Line); ln++ {
		lineNum, err := safecast.Conv[uint32](ln)
		if err != nil {
			return
		}
		text := f.GetLine(lineNum)
		fmt.Fprintf(b, "%s %s\n", gutter(strconv.Itoa(ln)), text)
		if ln == int(start.Line) {
			pad, mark := underline(text, start, end)
			fmt.Fprintf(b, "%s %s%s\n", gutter(""), pad, pal.paint(pal.caret, mark))
		}
	}
}

// underline returns the padding up to the span start and the ^~~ mark under
// the span. Widths follow the displayed width of the text; tabs are copied.
func underline(line string, start, end source.LineCol) (pad, mark string) {
	lineLen, err := safecast.Conv[uint32](len(line))
	if err != nil {
		lineLen = 0
	}
	from := min(start.Col-1, lineLen)
	to := lineLen
	if end.Line == start.Line {
		to = min(max(end.Col-1, from), lineLen)
	}

	var pb strings.Builder
	for _, r := range line[:from] {
		if r == '\t' {
			pb.WriteByte('\t')
			continue
		}
		pb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := max(runewidth.StringWidth(line[from:to]), 1)
	return pb.String(), "^" + strings.Repeat("~", n-1)
}
