package cst

// Builder assembles a tree together with the source text it covers. Tokens are
// separated by a single space unless a newline was requested in between.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) emit(kind, text string, named bool) *Node {
	if n := len(b.buf); n > 0 && b.buf[n-1] != '\n' && b.buf[n-1] != ' ' {
		b.buf = append(b.buf, ' ')
	}
	start := uint32(len(b.buf))
	b.buf = append(b.buf, text...)
	return &Node{Kind: kind, Named: named, Start: start, End: uint32(len(b.buf))}
}

// Tok appends an anonymous token whose kind equals its text.
func (b *Builder) Tok(text string) *Node {
	return b.emit(text, text, false)
}

// Leaf appends a named leaf such as an identifier or a literal.
func (b *Builder) Leaf(kind, text string) *Node {
	return b.emit(kind, text, true)
}

// NL appends a line break before the next token.
func (b *Builder) NL() *Builder {
	b.buf = append(b.buf, '\n')
	return b
}

// Raw appends text that belongs to no node.
func (b *Builder) Raw(text string) *Builder {
	b.buf = append(b.buf, text...)
	return b
}

// Source returns the accumulated text.
func (b *Builder) Source() []byte {
	return b.buf
}

// N creates a named inner node spanning its children.
func N(kind string, children ...*Node) *Node {
	n := &Node{Kind: kind, Named: true, Children: children}
	if len(children) > 0 {
		n.Start = children[0].Start
		n.End = children[len(children)-1].End
	}
	return n
}

// As sets the field name of n in its parent and returns n.
func (n *Node) As(field string) *Node {
	n.Field = field
	return n
}
