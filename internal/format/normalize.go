package format

import (
	"regexp"
	"sort"
	"strings"
)

// Normalize runs the post-render text passes in order: include sorting,
// pointer spacing, closing of open blocks and whitespace tidy-up. Each pass is
// idempotent and so is the whole chain. Lines starting inside a raw string
// literal are never rewritten. text is taken to come from brace-balanced
// source; FormatFile measures the balance of the real input instead.
func Normalize(text string) string {
	return normalize(text, 0)
}

func normalize(text string, balance int) string {
	text = sortIncludes(text)
	text = fixPointerSpacing(text)
	text = closeOpenBlocks(text, balance)
	return tidy(text)
}

var includeRe = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]*)[>"]`)

// sortIncludes orders each contiguous run of #include lines: system headers
// first, then quoted ones, each alphabetically by path. Equal keys keep order.
// Lines inside block comments and raw strings are not directives.
func sortIncludes(text string) string {
	lines := strings.Split(text, "\n")
	skip := make([]bool, len(lines))
	var st lexState
	for i, line := range lines {
		skip[i] = st.verbatim()
		st.scanLine(line)
	}
	isInclude := func(i int) bool {
		return !skip[i] && includeRe.MatchString(lines[i])
	}
	for i := 0; i < len(lines); {
		if !isInclude(i) {
			i++
			continue
		}
		j := i
		for j < len(lines) && isInclude(j) {
			j++
		}
		run := lines[i:j]
		sort.SliceStable(run, func(a, b int) bool {
			ma, mb := includeRe.FindStringSubmatch(run[a]), includeRe.FindStringSubmatch(run[b])
			if ma[1] != mb[1] {
				return ma[1] == "<"
			}
			return ma[2] < mb[2]
		})
		i = j
	}
	return strings.Join(lines, "\n")
}

var (
	declPtrRe = regexp.MustCompile(`^(\s*)((?:[A-Za-z_][\w:]*\s+)*?[A-Za-z_][\w:]*(?:<[^<>;=()]*>)?)\s*([*&]+)\s*([A-Za-z_(].*)$`)

	typeStarts = map[string]bool{
		"void": true, "char": true, "short": true, "int": true, "long": true, "float": true,
		"double": true, "signed": true, "unsigned": true, "bool": true, "_Bool": true,
		"const": true, "volatile": true, "static": true, "extern": true, "register": true,
		"inline": true, "struct": true, "union": true, "enum": true, "typedef": true, "auto": true,
	}
)

// fixPointerSpacing rewrites `int* p` and `int * p` on declaration-shaped
// lines to `int *p`. Continuation lines, comments and directives are skipped.
func fixPointerSpacing(text string) string {
	lines := strings.Split(text, "\n")
	var st lexState
	prev := ""
	for i, line := range lines {
		inComment := st.verbatim()
		st.scanLine(line)
		trimmed := strings.TrimSpace(line)
		cont := isContinuation(prev)
		if trimmed != "" && trimmed[0] != '#' {
			prev = trimmed
		}
		if inComment || cont || trimmed == "" || trimmed[0] == '#' || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		m := declPtrRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		first := strings.Fields(m[2])[0]
		if !typeStarts[first] && !strings.HasSuffix(first, "_t") {
			continue
		}
		lines[i] = m[1] + m[2] + " " + m[3] + m[4]
	}
	return strings.Join(lines, "\n")
}

func isContinuation(prev string) bool {
	if prev == "" {
		return false
	}
	switch prev[len(prev)-1] {
	case ',', '(', '=', '+', '-', '*', '/', '%', '&', '|', '^', '<', '?', '\\':
		return true
	}
	return false
}

// closeOpenBlocks appends closing braces for blocks the render left open:
// the brace balance of text beyond balance, the balance of its source.
func closeOpenBlocks(text string, balance int) string {
	depth, ok := braceBalance(text)
	depth -= balance
	if depth <= 0 || !ok {
		return text
	}
	text = strings.TrimRight(text, " \t\n")
	return text + strings.Repeat("\n}", depth) + "\n"
}

// braceBalance counts `{` minus `}` outside literals, comments and
// directives. ok is false when text ends inside a comment or raw string.
func braceBalance(text string) (depth int, ok bool) {
	var st lexState
	macro := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !st.verbatim() && (macro || strings.HasPrefix(trimmed, "#")) {
			macro = strings.HasSuffix(trimmed, "\\")
			continue
		}
		b, _ := st.scanLine(line)
		depth += b
	}
	return depth, !st.verbatim()
}

// tidy collapses blank-line runs, drops leading blank lines, trims trailing
// whitespace and ends the text with exactly one newline. The inside of raw
// string literals is kept byte for byte.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	starts, ends := rawLines(lines)
	out := make([]string, 0, len(lines))
	blank := true
	for i, line := range lines {
		if starts[i] {
			out = append(out, line)
			blank = false
			continue
		}
		if !ends[i] {
			line = strings.TrimRight(line, " \t\r")
		}
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
