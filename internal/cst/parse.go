package cst

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnknownLanguage is returned when Parse is called without a grammar.
var ErrUnknownLanguage = errors.New("cst: unknown language")

// Parse builds the CST for src. Syntax errors do not fail the parse; they
// surface as ERROR nodes in the tree.
func Parse(ctx context.Context, lang Language, src []byte) (*Node, error) {
	grammar := lang.grammar()
	if grammar == nil {
		return nil, ErrUnknownLanguage
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", lang)
	}
	return convert(root, "")
}

func convert(n *sitter.Node, field string) (*Node, error) {
	out := &Node{
		Kind:  n.Type(),
		Field: field,
		Named: n.IsNamed(),
		Start: n.StartByte(),
		End:   n.EndByte(),
	}
	count, err := safecast.Conv[int](n.ChildCount())
	if err != nil {
		return nil, fmt.Errorf("child count overflow: %w", err)
	}
	if count > 0 {
		out.Children = make([]*Node, 0, count)
	}
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || child.IsMissing() {
			// вставленные парсером токены отсутствуют в источнике
			continue
		}
		cn, err := convert(child, n.FieldNameForChild(i))
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, cn)
	}
	return out, nil
}
