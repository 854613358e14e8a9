package format

import (
	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

func init() {
	register(renderList, "declaration", "field_declaration", "type_definition", "parameter_declaration",
		"optional_parameter_declaration", "parameter_list", "field_initializer_list",
		"base_class_clause", "static_assert_declaration", "template_parameter_list")
	register(renderWords, "sized_type_specifier", "function_declarator", "bitfield_clause",
		"alias_declaration", "using_declaration", "namespace_alias_definition", "friend_declaration",
		"type_parameter_declaration", "optional_type_parameter_declaration",
		"template_template_parameter_declaration", "attribute_specifier", "ms_declspec_modifier",
		"operator_cast", "concept_definition", "explicit_object_parameter_declaration",
		"default_method_clause", "delete_method_clause", "pure_virtual_clause", "macro_type_specifier",
		"template_instantiation", "lambda_capture_initializer", "gnu_asm_expression",
		"gnu_asm_output_operand_list", "gnu_asm_input_operand_list", "gnu_asm_clobber_list",
		"gnu_asm_output_operand", "gnu_asm_input_operand")
	register(renderList, "structured_binding_declarator")
	register(renderTight, "array_declarator", "abstract_array_declarator", "parenthesized_declarator",
		"abstract_parenthesized_declarator", "field_initializer", "attribute_declaration", "attribute",
		"reference_declarator", "abstract_reference_declarator", "variadic_declarator")
	register(renderVariadicParam, "variadic_parameter_declaration", "variadic_type_parameter_declaration")
	register(renderPointerDeclarator, "pointer_declarator", "abstract_pointer_declarator")
	register(renderInitDeclarator, "init_declarator")
	register(renderFunctionDefinition, "function_definition")
	register(renderTemplateDeclaration, "template_declaration")
}

// renderPointerDeclarator accumulates sigils without interior spaces: `**p`, `*const p`.
func renderPointerDeclarator(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(_ *printer, prev, _ *cst.Node) string {
		if prev.Kind == "*" && !prev.Named {
			return ""
		}
		return " "
	}), nil
}

func renderInitDeclarator(p *printer, n *cst.Node, _ nesting) (string, error) {
	var eq *cst.Node
	breakAfter := false
	var prev *cst.Node
	for _, c := range n.Children {
		if c.Kind == "=" && !c.Named {
			eq = c
			breakAfter = p.broke(prev, c)
		} else if prev != nil && prev == eq {
			breakAfter = breakAfter || p.broke(prev, c)
		}
		prev = c
	}
	return p.seq(n.Children, func(_ *printer, prev, next *cst.Node) string {
		switch {
		case eq != nil && prev == eq && breakAfter:
			return contMark
		case eq != nil && (prev == eq || next == eq):
			return " "
		}
		return ""
	}), nil
}

func renderVariadicParam(p *printer, n *cst.Node, _ nesting) (string, error) {
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		if next.Kind == "..." || prev.Kind == "..." && next.Kind == "variadic_declarator" {
			return ""
		}
		return gapWords(p, prev, next)
	}), nil
}

// renderFunctionDefinition places the body brace on its own line.
func renderFunctionDefinition(p *printer, n *cst.Node, _ nesting) (string, error) {
	body := n.ChildByField("body")
	var header joiner
	var tail []*cst.Node
	for i, c := range n.Children {
		if c == body || c.Kind == "field_initializer_list" || c.Kind == "try_statement" {
			tail = n.Children[i:]
			break
		}
		header.add(p, c, p.render(c, nestInner), gapWords)
	}
	out := header.String()
	if out == "" {
		return "", malformed(n.Kind, "empty header")
	}
	for _, c := range tail {
		frag := p.render(c, nestInner)
		switch {
		case c.Kind == "comment":
			out += " " + frag
		case c.Kind == "field_initializer_list":
			out += contMark + frag
		default:
			out += "\n" + frag
		}
	}
	return out, nil
}

func renderTemplateDeclaration(p *printer, n *cst.Node, _ nesting) (string, error) {
	params := n.ChildByField("parameters")
	if params == nil {
		return "", malformed(n.Kind, "missing parameters")
	}
	return p.seq(n.Children, func(p *printer, prev, next *cst.Node) string {
		switch {
		case next.Kind == ";" && !next.Named:
			return ""
		case prev == params && next.Kind != "requires_clause":
			if p.broke(prev, next) {
				return "\n"
			}
			return " "
		}
		return " "
	}), nil
}
