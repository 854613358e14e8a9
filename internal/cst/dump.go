package cst

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes the tree as an indented S-expression. Named leaves show their
// source text; anonymous tokens are quoted.
func Dump(w io.Writer, n *Node, src []byte) error {
	var b strings.Builder
	dumpNode(&b, n, src, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func dumpNode(b *strings.Builder, n *Node, src []byte, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	if n.Field != "" {
		b.WriteString(n.Field)
		b.WriteString(": ")
	}
	if !n.Named {
		b.WriteString(strconv.Quote(n.Kind))
		b.WriteByte('\n')
		return
	}
	fmt.Fprintf(b, "(%s [%d-%d]", n.Kind, n.Start, n.End)
	if n.IsLeaf() {
		fmt.Fprintf(b, " %s)\n", strconv.Quote(n.Text(src)))
		return
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		dumpNode(b, c, src, depth+1)
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(")\n")
}
