package format

import (
	"testing"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

func formatTree(t *testing.T, b *cst.Builder, root *cst.Node, opt Options) Result {
	t.Helper()

	fs := source.NewFileSetWithBase("")
	sf := fs.Get(fs.AddVirtual("fmt.c", b.Source()))
	res, err := FormatFile(sf, root, opt)
	if err != nil {
		t.Fatalf("FormatFile failed: %v", err)
	}
	return res
}

// voidFunc builds `void f(void) { ... }` around the statements made by body.
func voidFunc(b *cst.Builder, body func() []*cst.Node) *cst.Node {
	typ := b.Leaf("primitive_type", "void").As("type")
	decl := cst.N("function_declarator",
		b.Leaf("identifier", "f").As("declarator"),
		params(b),
	).As("declarator")
	open := b.Tok("{")
	b.NL()
	kids := append([]*cst.Node{open}, body()...)
	b.NL()
	kids = append(kids, b.Tok("}"))
	return cst.N("function_definition", typ, decl, cst.N("compound_statement", kids...).As("body"))
}

// params builds `(void)`.
func params(b *cst.Builder) *cst.Node {
	return cst.N("parameter_list",
		b.Tok("("),
		cst.N("parameter_declaration", b.Leaf("primitive_type", "void").As("type")),
		b.Tok(")"),
	).As("parameters")
}

// prototype builds `int name(void);`.
func prototype(b *cst.Builder, name string) *cst.Node {
	n := cst.N("declaration",
		b.Leaf("primitive_type", "int").As("type"),
		cst.N("function_declarator", b.Leaf("identifier", name).As("declarator"), params(b)).As("declarator"),
		b.Tok(";"),
	)
	b.NL()
	return n
}

func exprStmt(b *cst.Builder, name string) *cst.Node {
	n := cst.N("expression_statement", b.Leaf("identifier", name), b.Tok(";"))
	b.NL()
	return n
}

func assign(b *cst.Builder, lhs, rhs string) *cst.Node {
	n := cst.N("expression_statement",
		cst.N("assignment_expression",
			b.Leaf("identifier", lhs).As("left"),
			b.Tok("=").As("operator"),
			b.Leaf("number_literal", rhs).As("right"),
		),
		b.Tok(";"),
	)
	b.NL()
	return n
}

func block(b *cst.Builder, body func() []*cst.Node) *cst.Node {
	open := b.Tok("{")
	b.NL()
	kids := append([]*cst.Node{open}, body()...)
	return cst.N("compound_statement", append(kids, b.Tok("}"))...)
}

func returnStmt(b *cst.Builder, value string) *cst.Node {
	n := cst.N("return_statement", b.Tok("return"), b.Leaf("number_literal", value), b.Tok(";"))
	b.NL()
	return n
}

func parens(b *cst.Builder, name string) *cst.Node {
	return cst.N("parenthesized_expression", b.Tok("("), b.Leaf("identifier", name), b.Tok(")"))
}

// ifElse builds `if (x) { return 1; } else { return 0; }`.
func ifElse(b *cst.Builder) *cst.Node {
	kw := b.Tok("if")
	cond := parens(b, "x").As("condition")
	cons := block(b, func() []*cst.Node { return []*cst.Node{returnStmt(b, "1")} }).As("consequence")
	alt := cst.N("else_clause",
		b.Tok("else"),
		block(b, func() []*cst.Node { return []*cst.Node{returnStmt(b, "0")} }),
	).As("alternative")
	b.NL()
	return cst.N("if_statement", kw, cond, cons, alt)
}
