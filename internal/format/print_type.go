package format

import (
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

func init() {
	register(renderSpecifier, "struct_specifier", "union_specifier", "enum_specifier", "class_specifier",
		"namespace_definition", "linkage_specification")
	register(renderDefinitionBody, "field_declaration_list", "declaration_list")
	register(renderEnumeratorList, "enumerator_list")
	register(renderWords, "enumerator")
	register(renderTight, "nested_namespace_specifier")
}

// renderSpecifier renders a type or namespace header and its body. The body
// brace goes on the next line unless the header spans several lines.
func renderSpecifier(p *printer, n *cst.Node, _ nesting) (string, error) {
	body := n.ChildByField("body")
	var header joiner
	var tail []*cst.Node
	for i, c := range n.Children {
		if c == body {
			tail = n.Children[i+1:]
			break
		}
		header.add(p, c, p.render(c, nestInner), gapWords)
	}
	out := header.String()
	if body == nil {
		return out, nil
	}
	if out == "" {
		return "", malformed(n.Kind, "empty header")
	}
	sep := "\n"
	if strings.Contains(out, "\n") {
		sep = " "
	}
	if header.lineComment {
		sep = "\n"
	}
	out += sep + p.render(body, nestInner)
	for _, c := range tail {
		out = glue(out, p.render(c, nestInner))
	}
	return out, nil
}

func renderDefinitionBody(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.block(n, nestDecl)
}

// block renders a braced scope with its items indented one level.
func (p *printer) block(n *cst.Node, nest nesting) (string, error) {
	kids := n.Children
	if len(kids) == 0 || kids[0].Kind != "{" {
		return "", malformed(n.Kind, "missing opening brace")
	}
	inner := kids[1:]
	if k := len(inner); k > 0 && inner[k-1].Kind == "}" && !inner[k-1].Named {
		inner = inner[:k-1]
	}
	head := "{"
	if len(inner) > 0 && inner[0].Kind == "comment" && p.sameLine(kids[0], inner[0]) {
		head += " " + p.comment(inner[0])
		inner = inner[1:]
	}
	body := p.compose(inner, nest, false)
	if body == "" {
		if head == "{" {
			return "{}", nil
		}
		return head + "\n}", nil
	}
	return head + "\n" + p.indent(body) + "\n}", nil
}

// renderEnumeratorList places one enumerator per line and keeps the source commas.
func renderEnumeratorList(p *printer, n *cst.Node, _ nesting) (string, error) {
	kids := n.Children
	if len(kids) == 0 || kids[0].Kind != "{" {
		return "", malformed(n.Kind, "missing opening brace")
	}
	lines := p.enumeratorLines(kids[1:], kids[0])
	if len(lines) == 0 {
		return "{}", nil
	}
	return "{\n" + p.indent(strings.Join(lines, "\n")) + "\n}", nil
}

func (p *printer) enumeratorLines(nodes []*cst.Node, prev *cst.Node) []string {
	var lines []string
	for _, c := range nodes {
		switch {
		case isNewlineToken(c):
			continue
		case c.Kind == "}" && !c.Named:
			return lines
		case c.Kind == "," && !c.Named && len(lines) > 0:
			lines[len(lines)-1] += ","
		case c.Kind == "comment" && len(lines) > 0 && p.sameLine(prev, c):
			lines[len(lines)-1] += " " + p.comment(c)
		default:
			lines = append(lines, p.render(c, nestInner))
		}
		prev = c
	}
	return lines
}
