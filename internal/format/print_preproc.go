package format

import (
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

func init() {
	register(renderWords, "preproc_include", "preproc_def", "preproc_function_def", "preproc_call")
	register(renderList, "preproc_params")
	register(renderPreprocArg, "preproc_arg")
	register(renderPreprocConditional,
		"preproc_if", "preproc_ifdef", "preproc_elif", "preproc_elifdef", "preproc_else",
		"preproc_if_in_field_declaration_list", "preproc_ifdef_in_field_declaration_list",
		"preproc_elif_in_field_declaration_list", "preproc_elifdef_in_field_declaration_list",
		"preproc_else_in_field_declaration_list",
		"preproc_if_in_enumerator_list", "preproc_ifdef_in_enumerator_list",
		"preproc_elif_in_enumerator_list", "preproc_elifdef_in_enumerator_list",
		"preproc_else_in_enumerator_list",
		"preproc_if_in_enumerator_list_no_comma", "preproc_ifdef_in_enumerator_list_no_comma",
		"preproc_elif_in_enumerator_list_no_comma", "preproc_elifdef_in_enumerator_list_no_comma",
		"preproc_else_in_enumerator_list_no_comma",
	)
}

func renderPreprocArg(p *printer, n *cst.Node, _ nesting) (string, error) {
	text := strings.TrimSpace(n.Text(p.src))
	return strings.ReplaceAll(text, "\n", "\n"+string(rawMark)), nil
}

// renderPreprocConditional lays out the branches of #if/#ifdef with the
// layout of the scope the directive sits in. Branch items get no extra indent.
func renderPreprocConditional(p *printer, n *cst.Node, nest nesting) (string, error) {
	if len(n.Children) == 0 || n.Children[0].Named {
		return "", malformed(n.Kind, "missing directive")
	}
	var head, items []*cst.Node
	var alt, end *cst.Node
	for i, c := range n.Children {
		switch {
		case isNewlineToken(c):
		case i == 0 || len(items) == 0 && (c.Field == "name" || c.Field == "condition"):
			head = append(head, c)
		case c.Kind == "comment" && len(items) == 0 && p.sameLine(head[len(head)-1], c):
			head = append(head, c)
		case c.Field == "alternative":
			alt = c
		case !c.Named && c.Kind == "#endif":
			end = c
		default:
			items = append(items, c)
		}
	}

	out := p.seq(head, gapWords)
	var body string
	switch {
	case strings.Contains(n.Kind, "_in_enumerator_list"):
		body = strings.Join(p.enumeratorLines(items, head[len(head)-1]), "\n")
	case nest == nestStmt:
		body = p.compose(items, nestStmt, false)
	default:
		body = p.compose(items, nestDecl, n == p.guard)
	}
	if body != "" {
		out += "\n" + body
	}
	if alt != nil {
		out += "\n" + p.render(alt, nest)
	}
	if end != nil {
		out += "\n" + p.token(end)
	}
	return out, nil
}
