package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/source"
)

type shortLine struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	warning FMT1001 src/a.c:3:5 message
//
// Lines are sorted by path, position, severity and code so the result can be
// compared byte for byte. Notes become "note" lines when includeNotes is set.
// Spans whose file is not in fs are skipped.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	lines := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		if l, ok := shortFor(fs, d.Primary, d.Severity.Label(), d.Code, d.Message); ok {
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := shortFor(fs, n.Span, "note", d.Code, n.Msg); ok {
				lines = append(lines, l)
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		switch {
		case a.path != b.path:
			return a.path < b.path
		case a.line != b.line:
			return a.line < b.line
		case a.col != b.col:
			return a.col < b.col
		case a.sev != b.sev:
			return a.sev < b.sev
		case a.code != b.code:
			return a.code < b.code
		}
		return a.msg < b.msg
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.line, l.col, l.msg)
	}
	return strings.Join(out, "\n")
}

func shortFor(fs *source.FileSet, span source.Span, sev string, code Code, msg string) (shortLine, bool) {
	file := fs.Get(span.File)
	if file == nil {
		return shortLine{}, false
	}
	start, _ := fs.Resolve(span)
	path := file.Path
	if file.Flags&source.FileVirtual == 0 {
		path = file.FormatPath("relative", fs.BaseDir())
	}
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return shortLine{
		sev:  sev,
		code: code.ID(),
		path: path,
		line: start.Line,
		col:  start.Col,
		msg:  strings.Join(strings.Fields(msg), " "),
	}, true
}
