package format

import (
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

// GroupKind classifies a rendered item for blank-line layout.
type GroupKind uint8

const (
	GroupNone GroupKind = iota
	GroupInclude
	GroupDefine
	GroupPreproc
	GroupComment
	GroupDeclaration
	GroupPrototype
	GroupFunction
	GroupType
	GroupNamespace
	GroupStatement
	GroupControl
	GroupBlock
	GroupLabel
	GroupUnknown

	numGroupKinds
)

var groupNames = [...]string{
	GroupNone:        "none",
	GroupInclude:     "include",
	GroupDefine:      "define",
	GroupPreproc:     "preproc",
	GroupComment:     "comment",
	GroupDeclaration: "declaration",
	GroupPrototype:   "prototype",
	GroupFunction:    "function",
	GroupType:        "type",
	GroupNamespace:   "namespace",
	GroupStatement:   "statement",
	GroupControl:     "control",
	GroupBlock:       "block",
	GroupLabel:       "label",
	GroupUnknown:     "unknown",
}

func (g GroupKind) String() string {
	if int(g) < len(groupNames) {
		return groupNames[g]
	}
	return "unknown"
}

func (g GroupKind) isPreproc() bool {
	return g == GroupInclude || g == GroupDefine || g == GroupPreproc
}

func classify(n *cst.Node) GroupKind {
	switch n.Kind {
	case "comment":
		return GroupComment
	case "preproc_include":
		return GroupInclude
	case "preproc_def", "preproc_function_def":
		return GroupDefine
	case "function_definition":
		return GroupFunction
	case "declaration", "field_declaration":
		if isPrototype(n) {
			return GroupPrototype
		}
		if definesType(n) {
			return GroupType
		}
		return GroupDeclaration
	case "type_definition", "alias_declaration", "using_declaration", "namespace_alias_definition",
		"static_assert_declaration", "friend_declaration":
		if definesType(n) {
			return GroupType
		}
		return GroupDeclaration
	case "struct_specifier", "union_specifier", "enum_specifier", "class_specifier":
		return GroupType
	case "template_declaration":
		for _, c := range n.Children {
			if c.Named && c.Field != "parameters" && c.Kind != "comment" {
				return classify(c)
			}
		}
		return GroupDeclaration
	case "namespace_definition", "linkage_specification":
		return GroupNamespace
	case "labeled_statement", "case_statement", "access_specifier":
		return GroupLabel
	case "compound_statement":
		return GroupBlock
	case "if_statement", "for_statement", "for_range_loop", "while_statement", "do_statement",
		"switch_statement", "try_statement":
		return GroupControl
	case "ERROR":
		return GroupUnknown
	}
	if strings.HasPrefix(n.Kind, "preproc_") {
		return GroupPreproc
	}
	if strings.HasSuffix(n.Kind, "_statement") {
		return GroupStatement
	}
	if _, ok := handlers[n.Kind]; !ok {
		return GroupUnknown
	}
	return GroupStatement
}

// isPrototype reports whether a declaration only declares a function.
func isPrototype(n *cst.Node) bool {
	decls := 0
	proto := false
	for _, c := range n.Children {
		if c.Field != "declarator" {
			continue
		}
		decls++
		proto = innermostFunction(c) != nil
	}
	return decls == 1 && proto
}

// innermostFunction unwraps pointer and reference declarators down to a function declarator.
func innermostFunction(d *cst.Node) *cst.Node {
	for d != nil {
		switch d.Kind {
		case "function_declarator":
			if inner := d.ChildByField("declarator"); inner != nil && inner.Kind == "parenthesized_declarator" {
				return nil
			}
			return d
		case "pointer_declarator", "reference_declarator":
			next := d.ChildByField("declarator")
			if next == nil {
				next = lastNamed(d)
			}
			d = next
		default:
			return nil
		}
	}
	return nil
}

// declaredName returns the identifier a declarator introduces.
func declaredName(d *cst.Node, src []byte) string {
	for d != nil {
		switch d.Kind {
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function":
			return d.Text(src)
		}
		next := d.ChildByField("declarator")
		if next == nil {
			next = lastNamed(d)
		}
		d = next
	}
	return ""
}

func definesType(n *cst.Node) bool {
	t := n.ChildByField("type")
	if t == nil {
		return false
	}
	switch t.Kind {
	case "struct_specifier", "union_specifier", "enum_specifier", "class_specifier":
		return t.ChildByField("body") != nil
	}
	return false
}

func lastNamed(n *cst.Node) *cst.Node {
	if n == nil {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if n.Children[i].Named && n.Children[i].Kind != "comment" {
			return n.Children[i]
		}
	}
	return nil
}
