package format

import (
	"fmt"
	"strings"
)

// Style selects how control-flow braces are placed.
type Style uint8

const (
	// StyleStroustrup keeps braces on the header line unless the header spans several lines.
	StyleStroustrup Style = iota
	// StyleKnR keeps every control-flow brace on its header line.
	StyleKnR
	// StyleAllman puts every control-flow brace on its own line.
	StyleAllman
)

func (s Style) String() string {
	switch s {
	case StyleKnR:
		return "knr"
	case StyleAllman:
		return "allman"
	}
	return "stroustrup"
}

// ParseStyle maps a style name to a Style. The empty name selects the default.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stroustrup":
		return StyleStroustrup, nil
	case "knr", "k&r":
		return StyleKnR, nil
	case "allman", "bsd":
		return StyleAllman, nil
	}
	return StyleStroustrup, fmt.Errorf("unknown style %q (want allman, knr or stroustrup)", name)
}

type Options struct {
	Style       Style
	IndentWidth int
	UseTabs     bool

	// FileTransitions and BlockTransitions override the blank-line tables for
	// definition scope and statement blocks.
	FileTransitions  *Transitions
	BlockTransitions *Transitions
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	if o.FileTransitions == nil {
		o.FileTransitions = DefaultFileTransitions()
	}
	if o.BlockTransitions == nil {
		o.BlockTransitions = DefaultBlockTransitions()
	}
	return o
}

// unit returns one indentation level.
func (o Options) unit() string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", o.IndentWidth)
}
