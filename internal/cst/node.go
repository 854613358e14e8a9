// Package cst holds the read-only concrete syntax tree consumed by the formatter
// and the adapter that builds it from tree-sitter grammars.
package cst

import "strings"

// Node is one grammar node. Leaves carry no children; their text is the byte
// range [Start, End) of the source they were parsed from.
type Node struct {
	Kind     string
	Field    string // field name in the parent, "" when unnamed
	Named    bool
	Start    uint32
	End      uint32
	Children []*Node
}

// Text returns the source bytes covered by the node.
func (n *Node) Text(src []byte) string {
	if n == nil {
		return ""
	}
	s, e := int(n.Start), int(n.End)
	if e > len(src) {
		e = len(src)
	}
	if s >= e {
		return ""
	}
	return string(src[s:e])
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsError reports whether the parser marked the node as unrecognised input.
func (n *Node) IsError() bool {
	return n != nil && n.Kind == "ERROR"
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first child with the given kind.
func (n *Node) ChildOfKind(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// NamedChildren returns the named children in source order.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// HasError reports whether any node in the subtree is an ERROR node.
func (n *Node) HasError() bool {
	if n == nil {
		return false
	}
	if n.IsError() {
		return true
	}
	for _, c := range n.Children {
		if c.HasError() {
			return true
		}
	}
	return false
}

// Walk visits the subtree in pre-order; returning false skips the children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Leaves returns the texts of all non-empty leaves in source order.
func (n *Node) Leaves(src []byte) []string {
	var out []string
	n.Walk(func(x *Node) bool {
		if x.IsLeaf() {
			if t := strings.TrimSpace(x.Text(src)); t != "" {
				out = append(out, t)
			}
		}
		return true
	})
	return out
}
