package testkit

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"fortio.org/safecast"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span lies within the content bounds
// 2) every child span is non-inverted and contained in its parent span
// 3) siblings appear in source order without overlap
func CheckSpanInvariants(root *cst.Node, content []byte) error {
	if root == nil {
		return fmt.Errorf("nil tree")
	}
	lenContent, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.End, lenContent)
	}
	var check func(n *cst.Node) error
	check = func(n *cst.Node) error {
		if n.End < n.Start {
			return fmt.Errorf("inverted span %s [%d-%d]", n.Kind, n.Start, n.End)
		}
		parent := source.Span{Start: n.Start, End: n.End}
		prevEnd := n.Start
		for _, c := range n.Children {
			if !parent.Contains(source.Span{Start: c.Start, End: c.End}) {
				return fmt.Errorf("%s [%d-%d] outside parent %s [%d-%d]", c.Kind, c.Start, c.End, n.Kind, n.Start, n.End)
			}
			if c.Start < prevEnd {
				return fmt.Errorf("%s [%d-%d] overlaps previous sibling", c.Kind, c.Start, c.End)
			}
			prevEnd = c.End
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}

// Tokens parses src and returns its leaf texts. Whitespace is removed from
// comments and directive tokens so re-indented text compares equal; string,
// char and raw string contents are kept byte for byte.
func Tokens(ctx context.Context, lang cst.Language, src []byte) ([]string, error) {
	root, err := cst.Parse(ctx, lang, src)
	if err != nil {
		return nil, err
	}
	var out []string
	root.Walk(func(n *cst.Node) bool {
		if !n.IsLeaf() {
			return true
		}
		text := n.Text(src)
		// "#  include" и "#include" считаются одним токеном
		if !isLiteralLeaf(n.Kind) {
			text = strings.Join(strings.Fields(text), "")
		}
		if text != "" {
			out = append(out, text)
		}
		return true
	})
	return out, nil
}

// isLiteralLeaf reports leaves whose whitespace belongs to a value.
func isLiteralLeaf(kind string) bool {
	switch kind {
	case "string_content", "raw_string_content", "raw_string_literal", "string_literal",
		"char_literal", "character", "escape_sequence", "raw_string_delimiter":
		return true
	}
	return false
}

// CompareTokens reports the first position where the sequences differ.
func CompareTokens(want, got []string) error {
	for i, n := 0, min(len(want), len(got)); i < n; i++ {
		if want[i] != got[i] {
			return fmt.Errorf("token %d: want %q, got %q", i, want[i], got[i])
		}
	}
	if len(want) != len(got) {
		return fmt.Errorf("token count: want %d, got %d", len(want), len(got))
	}
	return nil
}

// CompareTokenMultiset ignores order. Include sorting and prototype grouping
// reorder tokens; this still proves nothing was added or lost.
func CompareTokenMultiset(want, got []string) error {
	a, b := slices.Clone(want), slices.Clone(got)
	sort.Strings(a)
	sort.Strings(b)
	if err := CompareTokens(a, b); err != nil {
		return fmt.Errorf("token multiset differs: %w", err)
	}
	return nil
}

// FormatFunc formats one source text.
type FormatFunc func(src []byte) ([]byte, error)

// CheckIdempotent formats src twice and fails when the second pass changes
// the output of the first.
func CheckIdempotent(src []byte, format FormatFunc) error {
	once, err := format(src)
	if err != nil {
		return fmt.Errorf("first pass: %w", err)
	}
	twice, err := format(once)
	if err != nil {
		return fmt.Errorf("second pass: %w", err)
	}
	if string(once) != string(twice) {
		return fmt.Errorf("not idempotent at line %d:\nfirst:  %q\nsecond: %q", firstDiffLine(once, twice),
			lineAt(once, firstDiffLine(once, twice)), lineAt(twice, firstDiffLine(once, twice)))
	}
	return nil
}

func firstDiffLine(a, b []byte) int {
	la, lb := strings.Split(string(a), "\n"), strings.Split(string(b), "\n")
	for i, n := 0, min(len(la), len(lb)); i < n; i++ {
		if la[i] != lb[i] {
			return i + 1
		}
	}
	return min(len(la), len(lb)) + 1
}

func lineAt(text []byte, n int) string {
	lines := strings.Split(string(text), "\n")
	if n-1 < len(lines) {
		return lines[n-1]
	}
	return ""
}
