package format

import (
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

func init() {
	register(renderCompound, "compound_statement")
	register(renderWords, "expression_statement", "return_statement", "break_statement",
		"continue_statement", "goto_statement", "throw_statement", "attributed_statement",
		"init_statement")
	register(renderList, "condition_clause")
	register(renderIf, "if_statement")
	register(renderLoop, "while_statement", "for_range_loop", "switch_statement", "try_statement",
		"catch_clause")
	register(renderFor, "for_statement")
	register(renderDo, "do_statement")
	register(renderCase, "case_statement")
	register(renderLabeled, "labeled_statement")
}

func renderCompound(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.block(n, nestStmt)
}

// chain builds a control statement from keywords, headers and bodies. All
// braces are emitted in the `} else {` form; the brace pass restyles them.
type chain struct {
	p           *printer
	b           strings.Builder
	prev        *cst.Node
	afterBlock  bool // last part was a braced body
	lineComment bool
}

func (c *chain) sep(s string) {
	if c.b.Len() == 0 {
		return
	}
	if c.lineComment && !strings.HasPrefix(s, "\n") {
		s = "\n"
	}
	c.b.WriteString(s)
	c.lineComment = false
}

func (c *chain) word(n *cst.Node, s string) {
	c.sep(" ")
	c.b.WriteString(s)
	c.prev = n
	c.afterBlock = false
}

// keyword starts a continuation such as else, while or catch.
func (c *chain) keyword(n *cst.Node, s string) {
	if c.afterBlock {
		c.sep(" ")
	} else {
		c.sep("\n")
	}
	c.b.WriteString(s)
	c.prev = n
	c.afterBlock = false
}

func (c *chain) comment(n *cst.Node) {
	if c.prev != nil && !c.p.sameLine(c.prev, n) {
		c.sep("\n")
	} else {
		c.sep(" ")
	}
	text := c.p.comment(n)
	c.b.WriteString(text)
	c.lineComment = isLineComment(text)
	c.afterBlock = false
	c.prev = n
}

// body embeds a statement: braced bodies continue the line, others go on
// the next line one level deeper.
func (c *chain) body(n *cst.Node) {
	switch {
	case n.Kind == "compound_statement":
		c.sep(" ")
		c.b.WriteString(c.p.render(n, nestInner))
		c.afterBlock = true
	case n.Kind == "expression_statement" && len(n.Children) == 1:
		c.b.WriteString(";")
		c.afterBlock = false
	default:
		c.sep("\n")
		c.b.WriteString(c.p.indent(c.p.render(n, nestStmt)))
		c.afterBlock = false
	}
	c.prev = n
}

func (c *chain) String() string {
	return c.b.String()
}

func renderIf(p *printer, n *cst.Node, _ nesting) (string, error) {
	if n.ChildByField("condition") == nil || n.ChildByField("consequence") == nil {
		return "", malformed(n.Kind, "missing condition or consequence")
	}
	c := &chain{p: p}
	p.ifParts(c, n.Children)
	return c.String(), nil
}

func (p *printer) ifParts(c *chain, kids []*cst.Node) {
	for _, k := range kids {
		switch {
		case k.Kind == "comment":
			c.comment(k)
		case k.Kind == "else_clause":
			p.ifParts(c, k.Children)
		case k.Kind == "else" && !k.Named:
			c.keyword(k, "else")
		case k.Field == "consequence":
			c.body(k)
		case k.Field == "alternative" || (k.Named && c.prev != nil && c.prev.Kind == "else"):
			if k.Kind == "if_statement" {
				c.word(k, p.render(k, nestInner))
				continue
			}
			c.body(k)
		default:
			c.word(k, p.render(k, nestInner))
		}
	}
}

// renderLoop handles statements shaped as keyword, header and body.
func renderLoop(p *printer, n *cst.Node, _ nesting) (string, error) {
	body := n.ChildByField("body")
	if body == nil {
		return "", malformed(n.Kind, "missing body")
	}
	c := &chain{p: p}
	var header []*cst.Node
	flush := func() {
		if len(header) > 0 {
			c.word(header[0], p.seq(header, gapWords))
			header = nil
		}
	}
	for i, k := range n.Children {
		switch {
		case i == 0 && !k.Named:
			c.word(k, p.token(k))
		case k == body:
			flush()
			c.body(k)
		case k.Kind == "catch_clause":
			flush()
			c.keyword(k, p.render(k, nestInner))
			c.afterBlock = true
		case k.Kind == "comment" && len(header) == 0:
			c.comment(k)
		default:
			header = append(header, k)
		}
	}
	flush()
	return c.String(), nil
}

func renderFor(p *printer, n *cst.Node, _ nesting) (string, error) {
	body := n.ChildByField("body")
	if body == nil {
		return "", malformed(n.Kind, "missing body")
	}
	var segs [3]string
	seg := 0
	inHeader := false
	add := func(s string) error {
		if seg > 2 {
			return malformed(n.Kind, "too many header sections")
		}
		if segs[seg] != "" && s != "" {
			segs[seg] += " "
		}
		segs[seg] += s
		return nil
	}
	c := &chain{p: p}
	for _, k := range n.Children {
		switch {
		case k.Kind == "for" && !k.Named:
			c.word(k, "for")
		case k.Kind == "(" && !k.Named && !inHeader:
			inHeader = true
		case k.Kind == ")" && !k.Named && inHeader:
			inHeader = false
			header := "(" + segs[0] + ";" + spaced(segs[1]) + ";" + spaced(segs[2]) + ")"
			c.word(k, header)
		case inHeader && k.Kind == ";" && !k.Named:
			seg++
		case inHeader && k.Kind == "declaration":
			if err := add(strings.TrimSuffix(p.render(k, nestInner), ";")); err != nil {
				return "", err
			}
			seg++
		case inHeader:
			if err := add(p.render(k, nestInner)); err != nil {
				return "", err
			}
		case k == body:
			c.body(k)
		case k.Kind == "comment":
			c.comment(k)
		}
	}
	if seg != 2 {
		return "", malformed(n.Kind, "expected three header sections")
	}
	return c.String(), nil
}

func spaced(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

func renderDo(p *printer, n *cst.Node, _ nesting) (string, error) {
	body := n.ChildByField("body")
	if body == nil {
		return "", malformed(n.Kind, "missing body")
	}
	c := &chain{p: p}
	for _, k := range n.Children {
		switch {
		case k == body:
			c.body(k)
		case k.Kind == "do" && !k.Named:
			c.word(k, "do")
		case k.Kind == "while" && !k.Named:
			c.keyword(k, "while")
		case k.Kind == ";" && !k.Named:
			c.b.WriteString(";")
		case k.Kind == "comment":
			c.comment(k)
		default:
			c.word(k, p.render(k, nestInner))
		}
	}
	return c.String(), nil
}

// renderCase indents the statements of a case one level below its label.
func renderCase(p *printer, n *cst.Node, _ nesting) (string, error) {
	var colon *cst.Node
	split := 0
	for i, k := range n.Children {
		if k.Kind == ":" && !k.Named {
			colon, split = k, i
			break
		}
	}
	if colon == nil {
		return "", malformed(n.Kind, "missing colon")
	}
	out := p.seq(n.Children[:split], gapWords) + ":"
	stmts := n.Children[split+1:]
	prev := colon
	if len(stmts) > 0 && stmts[0].Kind == "comment" && p.sameLine(colon, stmts[0]) {
		out += " " + p.comment(stmts[0])
		prev, stmts = stmts[0], stmts[1:]
	}
	if len(stmts) > 0 && stmts[0].Kind == "compound_statement" && p.sameLine(prev, stmts[0]) && prev == colon {
		out += " " + p.render(stmts[0], nestStmt)
		stmts = stmts[1:]
		if len(stmts) == 0 {
			return out, nil
		}
		return out + "\n" + p.indent(p.compose(stmts, nestStmt, false)), nil
	}
	if body := p.compose(stmts, nestStmt, false); body != "" {
		out += "\n" + p.indent(body)
	}
	return out, nil
}

func renderLabeled(p *printer, n *cst.Node, _ nesting) (string, error) {
	label := n.ChildByField("label")
	if label == nil {
		return "", malformed(n.Kind, "missing label")
	}
	out := p.render(label, nestInner) + ":"
	rest := make([]*cst.Node, 0, len(n.Children))
	for _, k := range n.Children {
		if k != label && !(k.Kind == ":" && !k.Named) {
			rest = append(rest, k)
		}
	}
	if body := p.compose(rest, nestStmt, false); body != "" {
		out += "\n" + body
	}
	return out, nil
}
