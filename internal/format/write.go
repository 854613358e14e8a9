package format

import "strings"

const (
	// contMark is a preserved source line break inside an expression. It turns
	// into one indentation unit when the enclosing statement is rendered.
	contMark = "\n\x01"
	// rawMark starts a line that must be emitted exactly as in the source,
	// such as a macro continuation or the inside of a multi-line literal.
	rawMark = '\x02'
)

// Writer accumulates fragments and indents every line written at a nested level.
type Writer struct {
	opt         Options
	buf         []byte
	indentLevel int
	atLineStart bool
}

func newWriter(opt Options) *Writer {
	return &Writer{opt: opt, atLineStart: true}
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return string(w.buf)
}

func (w *Writer) writeIndent(next byte) {
	if !w.atLineStart {
		return
	}
	w.atLineStart = false
	// директивы и сырые строки не сдвигаются
	if next == '\n' || next == '#' || next == rawMark {
		return
	}
	if w.opt.UseTabs {
		for i, n := 0, w.indentLevel; i < n; i++ {
			w.buf = append(w.buf, '\t')
		}
		return
	}
	for i, n := 0, w.indentLevel*w.opt.IndentWidth; i < n; i++ {
		w.buf = append(w.buf, ' ')
	}
}

// WriteString writes s, indenting each line that starts inside it.
func (w *Writer) WriteString(s string) {
	for s != "" {
		w.writeIndent(s[0])
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.buf = append(w.buf, s...)
			return
		}
		w.buf = append(w.buf, s[:i+1]...)
		w.atLineStart = true
		s = s[i+1:]
	}
}

// Newline writes a newline if the output doesn't already end with one.
func (w *Writer) Newline() {
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}

// indent shifts every line of s by one level.
func (p *printer) indent(s string) string {
	w := newWriter(p.opt)
	w.IndentPush()
	w.WriteString(s)
	return w.String()
}

// resolveCont turns continuation marks into one indentation unit.
func (p *printer) resolveCont(s string) string {
	if !strings.Contains(s, contMark) {
		return s
	}
	return strings.ReplaceAll(s, contMark, "\n"+p.opt.unit())
}

// stripMarks removes the markers that survived composition.
func stripMarks(s string) string {
	s = strings.ReplaceAll(s, contMark, "\n")
	s = strings.ReplaceAll(s, "\x01", "")
	return strings.ReplaceAll(s, string(rawMark), "")
}
