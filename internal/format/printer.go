package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

// nesting tells a handler where its fragment will be placed.
type nesting uint8

const (
	// nestInner: part of an enclosing construct.
	nestInner nesting = iota
	// nestStmt: an item of a statement block.
	nestStmt
	// nestDecl: an item of file, namespace or class scope.
	nestDecl
)

func (n nesting) outer() bool {
	return n != nestInner
}

type handler func(p *printer, n *cst.Node, nest nesting) (string, error)

// handlers is filled by the init functions of the print_*.go files.
var handlers = map[string]handler{}

func register(h handler, kinds ...string) {
	for _, k := range kinds {
		handlers[k] = h
	}
}

// Result is the formatted text of one file.
type Result struct {
	Text        []byte
	Diagnostics []Diagnostic
}

type printer struct {
	sf    *source.File
	src   []byte
	opt   Options
	diags []Diagnostic
	// guard is the #ifndef wrapping a whole header; its body is laid out
	// like the file scope.
	guard *cst.Node
}

// FormatFile renders root, the tree parsed from sf, into formatted text.
// sf must come from a source.FileSet so that its line index is filled.
// Constructs without a rule are kept verbatim and reported in Result.Diagnostics.
func FormatFile(sf *source.File, root *cst.Node, opt Options) (res Result, err error) {
	if sf == nil {
		return Result{}, ErrNilFile
	}
	if root == nil {
		return Result{}, ErrNilTree
	}
	opt = opt.withDefaults()
	p := &printer{sf: sf, src: sf.Content, opt: opt}

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Text: append([]byte(nil), sf.Content...),
				Diagnostics: []Diagnostic{{
					Kind: root.Kind,
					Text: fmt.Sprint(r),
					Span: source.Span{File: sf.ID, Start: root.Start, End: root.End},
					Code: diag.FmtRenderPanic,
				}},
			}
			err = nil
		}
	}()

	text := stripMarks(p.render(root, nestDecl))
	text = placeBraces(text, opt.Style)
	// разбаланс исходника (ветки #if, незакрытый файл) не чиним
	balance, _ := braceBalance(string(sf.Content))
	text = normalize(text, balance)
	return Result{Text: []byte(text), Diagnostics: p.diags}, nil
}

func (p *printer) render(n *cst.Node, nest nesting) string {
	if n == nil {
		return ""
	}
	if !n.Named {
		return p.token(n)
	}
	h, ok := handlers[n.Kind]
	if !ok {
		p.report(n, diag.FmtUnsupportedConstruct)
		return p.verbatim(n)
	}
	out, err := h(p, n, nest)
	if err != nil {
		var me *malformedError
		if !errors.As(err, &me) {
			panic(err)
		}
		p.report(n, diag.FmtMalformedAssumption)
		out = p.verbatim(n)
	}
	if nest.outer() {
		out = p.resolveCont(out)
	}
	return out
}

func (p *printer) report(n *cst.Node, code diag.Code) {
	p.diags = append(p.diags, Diagnostic{
		Kind: n.Kind,
		Text: n.Text(p.src),
		Span: source.Span{File: p.sf.ID, Start: n.Start, End: n.End},
		Code: code,
	})
}

func (p *printer) token(n *cst.Node) string {
	if isNewlineToken(n) {
		return ""
	}
	text := n.Text(p.src)
	if len(text) > 1 && text[0] == '#' {
		// "#  include" -> "#include"
		return "#" + strings.TrimLeft(text[1:], " \t")
	}
	return text
}

// verbatim returns the node text re-based to its start column. Lines inside
// raw strings are marked so that indentation never reaches them.
func (p *printer) verbatim(n *cst.Node) string {
	text := strings.TrimRight(n.Text(p.src), " \t\r\n")
	return markRaw(dedent(text, p.column(n.Start)))
}

// atom returns literal text; continuation lines keep their exact bytes.
func (p *printer) atom(n *cst.Node) string {
	text := n.Text(p.src)
	if !strings.Contains(text, "\n") {
		return text
	}
	return strings.ReplaceAll(text, "\n", "\n"+string(rawMark))
}

// markRaw prefixes rawMark to the lines of text that start inside a raw string.
func markRaw(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	starts, _ := rawLines(lines)
	for i, raw := range starts {
		if raw {
			lines[i] = string(rawMark) + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func (p *printer) comment(n *cst.Node) string {
	return p.verbatim(n)
}

func (p *printer) column(off uint32) int {
	return int(p.sf.Column(off))
}

// dedent removes up to col leading blanks from every line but the first and
// those starting inside a raw string.
func dedent(text string, col int) string {
	if col == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	starts, _ := rawLines(lines)
	for i := 1; i < len(lines); i++ {
		if starts[i] {
			continue
		}
		line := lines[i]
		k := 0
		for k < col && k < len(line) && (line[k] == ' ' || line[k] == '\t') {
			k++
		}
		lines[i] = line[k:]
	}
	return strings.Join(lines, "\n")
}

// sameLine reports whether b starts on the line where a ends.
func (p *printer) sameLine(a, b *cst.Node) bool {
	if a == nil || b == nil || a.End > b.Start || int(b.Start) > len(p.src) {
		return false
	}
	if a.End > 0 && p.src[a.End-1] == '\n' {
		return false
	}
	return !strings.Contains(string(p.src[a.End:b.Start]), "\n")
}

// broke reports whether the source has a line break between a and b.
func (p *printer) broke(a, b *cst.Node) bool {
	return a != nil && b != nil && !p.sameLine(a, b)
}

func isNewlineToken(n *cst.Node) bool {
	return !n.Named && strings.TrimSpace(n.Kind) == "" && n.Kind != ""
}

func isLineComment(text string) bool {
	return strings.HasPrefix(text, "//")
}

func isPreprocNode(n *cst.Node) bool {
	return n.Named && strings.HasPrefix(n.Kind, "preproc_") && n.Kind != "preproc_arg" &&
		n.Kind != "preproc_defined" && n.Kind != "preproc_params" && n.Kind != "preproc_directive"
}

// gapFunc returns the separator between two adjacent children.
type gapFunc func(p *printer, prev, next *cst.Node) string

// joiner concatenates child fragments, keeping comments and directives in place.
type joiner struct {
	b           strings.Builder
	prev        *cst.Node
	lineComment bool
}

func (j *joiner) add(p *printer, c *cst.Node, frag string, gap gapFunc) {
	if frag == "" {
		return
	}
	if j.prev != nil {
		var sep string
		switch {
		case isPreprocNode(c) || isPreprocNode(j.prev):
			sep = "\n"
		case c.Kind == "comment":
			sep = " "
			if p.broke(j.prev, c) {
				sep = contMark
			}
		default:
			sep = gap(p, j.prev, c)
		}
		if j.lineComment && !strings.Contains(sep, "\n") {
			sep = contMark
		}
		j.b.WriteString(sep)
	}
	j.b.WriteString(frag)
	j.prev = c
	j.lineComment = c.Kind == "comment" && isLineComment(frag)
}

func (j *joiner) String() string {
	return j.b.String()
}

// seq renders nodes at inner nesting and joins them with gap.
func (p *printer) seq(nodes []*cst.Node, gap gapFunc) string {
	var j joiner
	for _, c := range nodes {
		if isNewlineToken(c) {
			continue
		}
		j.add(p, c, p.render(c, nestInner), gap)
	}
	return j.String()
}

var (
	glueBefore = map[string]bool{
		",": true, ";": true, ")": true, "]": true, "(": true, "::": true,
		"argument_list": true, "parameter_list": true, "template_argument_list": true,
		"subscript_argument_list": true, "preproc_params": true,
	}
	glueAfter = map[string]bool{
		"(": true, "[": true, "::": true, "~": true,
	}
)

// gapWords separates children with one space, gluing punctuation.
func gapWords(_ *printer, prev, next *cst.Node) string {
	if glueBefore[next.Kind] || glueAfter[prev.Kind] {
		return ""
	}
	return " "
}

func gapNone(*printer, *cst.Node, *cst.Node) string {
	return ""
}

func isOpenToken(k string) bool {
	return k == "(" || k == "[" || k == "{" || k == "<"
}

func isCloseToken(k string) bool {
	return k == ")" || k == "]" || k == "}" || k == ">"
}

// gapList lays out comma separated lists and keeps source line breaks after
// the opening delimiter and after commas.
func gapList(p *printer, prev, next *cst.Node) string {
	switch {
	case next.Kind == "," && !next.Named:
		return ""
	case isOpenToken(prev.Kind) && !prev.Named:
		if p.broke(prev, next) {
			return contMark
		}
		return ""
	case isCloseToken(next.Kind) && !next.Named:
		if p.broke(prev, next) {
			return "\n"
		}
		return ""
	case prev.Kind == "," && !prev.Named:
		if p.broke(prev, next) {
			return contMark
		}
		return " "
	}
	return gapWords(p, prev, next)
}

// glue joins an operator and its operand so that no new token is formed.
func glue(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	x, y := a[len(a)-1], b[0]
	if (x == y && strings.IndexByte("+-&|<>=:", x) >= 0) || (isWordByte(x) && isWordByte(y)) || (x == '-' && y == '>') {
		return a + " " + b
	}
	return a + b
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func renderAtom(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.atom(n), nil
}

func renderWords(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, gapWords), nil
}

func renderTight(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, gapNone), nil
}

func renderList(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, gapList), nil
}

func renderComment(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.comment(n), nil
}

func renderError(p *printer, n *cst.Node, _ nesting) (string, error) {
	p.report(n, diag.FmtUnsupportedConstruct)
	return p.verbatim(n), nil
}

func renderTranslationUnit(p *printer, n *cst.Node, _ nesting) (string, error) {
	p.guard = includeGuard(n)
	return p.compose(n.Children, nestDecl, true), nil
}

// includeGuard returns the conditional directive when it is the only item of
// the file besides comments.
func includeGuard(n *cst.Node) *cst.Node {
	var guard *cst.Node
	for _, c := range n.Children {
		switch {
		case isNewlineToken(c) || c.Kind == "comment":
		case guard == nil && (c.Kind == "preproc_ifdef" || c.Kind == "preproc_if"):
			guard = c
		default:
			return nil
		}
	}
	return guard
}

func init() {
	register(renderTranslationUnit, "translation_unit")
	register(renderComment, "comment")
	register(renderError, "ERROR")
	register(renderAtom,
		"identifier", "field_identifier", "type_identifier", "statement_identifier",
		"namespace_identifier", "primitive_type", "number_literal", "string_literal",
		"char_literal", "raw_string_literal", "system_lib_string", "true", "false", "null",
		"nullptr", "this", "auto", "escape_sequence", "type_qualifier", "storage_class_specifier",
		"virtual", "virtual_specifier", "user_defined_literal", "literal_suffix", "operator_name",
		"preproc_directive", "ms_call_modifier", "ms_restrict_modifier", "ms_unsigned_ptr_modifier",
		"ms_signed_ptr_modifier", "ms_unaligned_ptr_modifier", "access_specifier", "placeholder_type_specifier",
		"function_specifier", "explicit_function_specifier", "gnu_asm_qualifier",
	)
}
