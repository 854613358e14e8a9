package format

import (
	"sort"
	"strings"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
)

// Transitions holds the number of blank lines emitted between two adjacent
// items, indexed by the kinds of the previous and the next item.
type Transitions struct {
	blank [numGroupKinds][numGroupKinds]uint8
}

// Blank returns the blank lines between an item of kind prev and one of kind next.
func (t *Transitions) Blank(prev, next GroupKind) int {
	if prev >= numGroupKinds || next >= numGroupKinds {
		return 1
	}
	return int(t.blank[prev][next])
}

// Set overrides a single entry of the table.
func (t *Transitions) Set(prev, next GroupKind, blank int) {
	if prev >= numGroupKinds || next >= numGroupKinds {
		return
	}
	t.blank[prev][next] = uint8(min(max(blank, 0), 2))
}

// DefaultFileTransitions is the table for file, namespace and class scope.
func DefaultFileTransitions() *Transitions {
	t := &Transitions{}
	for prev := GroupKind(0); prev < numGroupKinds; prev++ {
		for next := GroupKind(0); next < numGroupKinds; next++ {
			t.blank[prev][next] = fileBlank(prev, next)
		}
	}
	return t
}

func fileBlank(prev, next GroupKind) uint8 {
	switch {
	case prev == GroupNone, prev == GroupComment:
		return 0
	case next == GroupComment:
		return 1
	case next == GroupLabel:
		return 1
	case prev == GroupLabel:
		return 0
	case prev.isPreproc() && next.isPreproc():
		if prev == next {
			return 0
		}
		return 1
	case prev.isPreproc() || next.isPreproc():
		return 1
	case isDefinition(prev) || isDefinition(next):
		return 1
	case prev == next:
		return 0
	}
	return 1
}

func isDefinition(g GroupKind) bool {
	return g == GroupFunction || g == GroupType || g == GroupNamespace
}

// DefaultBlockTransitions is the table for statement blocks.
func DefaultBlockTransitions() *Transitions {
	t := &Transitions{}
	for prev := GroupKind(0); prev < numGroupKinds; prev++ {
		for next := GroupKind(0); next < numGroupKinds; next++ {
			switch {
			case prev == GroupNone:
			case prev.isPreproc() && !next.isPreproc():
				t.blank[prev][next] = 1
			case next == GroupType && prev != GroupComment:
				t.blank[prev][next] = 1
			}
		}
	}
	return t
}

// item is one rendered element of a scope.
type item struct {
	kind GroupKind
	text string
	name string // declared name, prototypes only
}

// compose renders the children of one scope and joins them with the blank
// lines given by the scope's transition table. Items are not indented here.
func (p *printer) compose(nodes []*cst.Node, nest nesting, hoist bool) string {
	var items []item
	var prev *cst.Node
	for _, n := range nodes {
		if isNewlineToken(n) {
			continue
		}
		last := len(items) - 1
		switch {
		case !n.Named && (n.Kind == ";" || n.Kind == ":") && last >= 0:
			items[last].text += n.Kind
		case n.Kind == "comment" && last >= 0 && p.sameLine(prev, n):
			items[last].text += " " + p.comment(n)
		default:
			it := item{kind: classify(n), text: p.render(n, nest)}
			if it.kind == GroupPrototype {
				it.name = prototypeName(n, p.src)
			}
			items = append(items, it)
		}
		prev = n
	}
	if hoist {
		items = hoistPrototypes(items)
	}

	table := p.opt.FileTransitions
	if nest == nestStmt {
		table = p.opt.BlockTransitions
	}
	var b strings.Builder
	prevKind := GroupNone
	for i, it := range items {
		if i > 0 {
			b.WriteString(strings.Repeat("\n", 1+table.Blank(prevKind, it.kind)))
		}
		b.WriteString(it.text)
		prevKind = it.kind
	}
	return b.String()
}

// hoistPrototypes gathers function prototypes, together with the comments
// directly above them, into sorted runs. A prototype never moves back across
// a type, a declaration or a directive it may depend on: each stretch between
// such items is sorted on its own, and its run is placed where the stretch's
// first prototype or first function definition appeared.
func hoistPrototypes(items []item) []item {
	out := make([]item, 0, len(items))
	from := 0
	for i, it := range items {
		switch it.kind {
		case GroupPrototype, GroupFunction, GroupComment:
			continue
		}
		out = append(out, hoistStretch(items[from:i])...)
		out = append(out, it)
		from = i + 1
	}
	return append(out, hoistStretch(items[from:])...)
}

func hoistStretch(items []item) []item {
	type unit struct {
		items      []item
		name, text string
	}
	var units []unit
	rest := make([]item, 0, len(items))
	insertAt := -1
	for _, it := range items {
		switch it.kind {
		case GroupPrototype, GroupFunction:
			j := len(rest)
			for j > 0 && rest[j-1].kind == GroupComment {
				j--
			}
			if insertAt < 0 {
				insertAt = j
			}
			if it.kind == GroupFunction {
				rest = append(rest, it)
				continue
			}
			u := unit{name: it.name, text: it.text}
			u.items = append(append(u.items, rest[j:]...), it)
			rest = rest[:j]
			units = append(units, u)
		default:
			rest = append(rest, it)
		}
	}
	if len(units) == 0 {
		return items
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].name != units[j].name {
			return units[i].name < units[j].name
		}
		return units[i].text < units[j].text
	})
	out := make([]item, 0, len(items))
	out = append(out, rest[:insertAt]...)
	for _, u := range units {
		out = append(out, u.items...)
	}
	return append(out, rest[insertAt:]...)
}

func prototypeName(n *cst.Node, src []byte) string {
	if n.Kind == "template_declaration" {
		n = lastNamed(n)
	}
	for _, c := range n.Children {
		if c.Field != "declarator" {
			continue
		}
		if fn := innermostFunction(c); fn != nil {
			return declaredName(fn.ChildByField("declarator"), src)
		}
	}
	return ""
}
