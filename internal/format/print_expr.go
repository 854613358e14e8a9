package format

import (
	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

func init() {
	register(renderBinary, "binary_expression", "assignment_expression")
	register(renderConditional, "conditional_expression")
	register(renderCommaExpr, "comma_expression")
	register(renderUnary, "unary_expression", "pointer_expression", "update_expression",
		"sizeof_expression", "preproc_defined", "co_await_expression")
	register(renderTight, "call_expression", "field_expression", "subscript_expression",
		"cast_expression", "compound_literal_expression", "qualified_identifier",
		"template_function", "template_type", "template_method", "destructor_name",
		"field_designator", "subscript_designator", "new_declarator", "parameter_pack_expansion",
		"dependent_name", "dependent_type", "dependent_identifier")
	register(renderList, "argument_list", "subscript_argument_list", "parenthesized_expression",
		"initializer_list", "template_argument_list", "lambda_capture_specifier",
		"offsetof_expression", "alignof_expression", "generic_expression", "fold_expression")
	register(renderWords, "subscript_range_designator", "delete_expression", "extension_expression",
		"type_descriptor", "trailing_return_type", "abstract_function_declarator",
		"co_return_statement", "co_yield_statement", "requires_clause", "decltype", "noexcept", "throw_specifier")
	register(renderConcatenated, "concatenated_string")
	register(renderInitializerPair, "initializer_pair")
	register(renderNew, "new_expression")
	register(renderLambda, "lambda_expression")
	register(renderAtom, "lambda_default_capture")
}

// renderBinary puts one space around the operator. A source line break on
// either side of the operator is kept after it.
func renderBinary(p *printer, n *cst.Node, _ nesting) (string, error) {
	left, op, right := n.ChildByField("left"), n.ChildByField("operator"), n.ChildByField("right")
	if left == nil || op == nil || right == nil {
		return "", malformed(n.Kind, "missing operand or operator")
	}
	breakAfter := p.broke(left, op) || p.broke(op, right)
	return p.seq(n.Children, func(_ *printer, prev, _ *cst.Node) string {
		if prev == op && breakAfter {
			return contMark
		}
		return " "
	}), nil
}

func renderConditional(p *printer, n *cst.Node, _ nesting) (string, error) {
	if n.ChildByField("condition") == nil {
		return "", malformed(n.Kind, "missing condition")
	}
	breaks := map[*cst.Node]bool{}
	var prev *cst.Node
	for _, c := range n.Children {
		if prev != nil && !prev.Named && p.broke(prev, c) {
			breaks[prev] = true
		}
		if prev != nil && !c.Named && p.broke(prev, c) {
			breaks[c] = true
		}
		prev = c
	}
	return p.seq(n.Children, func(_ *printer, prev, _ *cst.Node) string {
		if breaks[prev] {
			return contMark
		}
		return " "
	}), nil
}

func renderCommaExpr(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		switch {
		case next.Kind == ",":
			return ""
		case prev.Kind == "," && p.broke(prev, next):
			return contMark
		}
		return " "
	}), nil
}

// renderUnary glues an operator to its operand.
func renderUnary(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.glueSeq(n.Children), nil
}

func (p *printer) glueSeq(nodes []*cst.Node) string {
	out := ""
	afterComment, lineComment := false, false
	for _, c := range nodes {
		if isNewlineToken(c) {
			continue
		}
		frag := p.render(c, nestInner)
		if frag == "" {
			continue
		}
		switch {
		case out == "":
			out = frag
		case lineComment:
			out += contMark + frag
		case c.Kind == "comment" || afterComment:
			out += " " + frag
		default:
			out = glue(out, frag)
		}
		afterComment = c.Kind == "comment"
		lineComment = afterComment && isLineComment(frag)
	}
	return out
}

func renderConcatenated(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		if p.broke(prev, next) {
			return contMark
		}
		return " "
	}), nil
}

// renderInitializerPair renders `.a.b = v` and `[i] = v`.
func renderInitializerPair(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(_ *printer, prev, next *cst.Node) string {
		if prev.Kind == "=" || next.Kind == "=" || prev.Kind == ":" || next.Kind == ":" {
			return " "
		}
		return ""
	}), nil
}

func renderNew(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		switch next.Kind {
		case "new_declarator", "argument_list", "initializer_list":
			return ""
		}
		return gapWords(p, prev, next)
	}), nil
}

func renderLambda(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		switch {
		case next.Field == "body":
			return " "
		case prev.Field == "captures", next.Kind == "abstract_function_declarator":
			return ""
		}
		return gapWords(p, prev, next)
	}), nil
}
