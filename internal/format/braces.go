package format

import (
	"regexp"
	"strings"
)

var (
	headerRe    = regexp.MustCompile(`^(\}\s*)?(else\s+if|if|for|while|switch|catch|else|do|try)(\s|\(|$)`)
	braceTailRe = regexp.MustCompile(`^(.*\S)\s*\{(\s*(?://.*|/\*.*\*/))?$`)
	contRe      = regexp.MustCompile(`^(else|catch)(\s|\(|\{|$)`)
	loneBraceRe = regexp.MustCompile(`^\{(\s*(?://.*|/\*.*\*/))?$`)
)

// placeBraces restyles control-flow braces. The renderer emits `if (c) {` and
// `} else {`; this pass moves them according to style. Lines starting inside
// block comments or raw strings are left alone.
func placeBraces(text string, style Style) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+8)
	var st lexState
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if st.verbatim() {
			st.scanLine(line)
			out = append(out, line)
			continue
		}
		indent := leadingSpace(line)
		trimmed := strings.TrimSpace(line)

		switch {
		case style == StyleAllman && strings.HasPrefix(trimmed, "}") && contRe.MatchString(strings.TrimSpace(trimmed[1:])):
			out = append(out, indent+"}")
			trimmed = strings.TrimSpace(trimmed[1:])
			line = indent + trimmed
		case style != StyleAllman && trimmed == "}" && i+1 < len(lines) && contRe.MatchString(strings.TrimSpace(lines[i+1])):
			i++
			trimmed = "} " + strings.TrimSpace(lines[i])
			line = indent + trimmed
		}

		if !headerRe.MatchString(trimmed) {
			st.scanLine(line)
			out = append(out, line)
			continue
		}

		// заголовок может занимать несколько строк, пока скобки не закрыты
		header := []string{line}
		_, depth := st.scanLine(line)
		for depth > 0 && i+1 < len(lines) && !st.verbatim() {
			i++
			header = append(header, lines[i])
			_, d := st.scanLine(lines[i])
			depth += d
		}
		last := header[len(header)-1]
		multi := len(header) > 1

		switch {
		case st.verbatim():
		case style == StyleAllman || style == StyleStroustrup && multi:
			if m := braceTailRe.FindStringSubmatch(last); m != nil && !strings.Contains(m[1], "//") {
				header[len(header)-1] = m[1]
				header = append(header, indent+"{"+m[2])
			}
		default:
			if i+1 < len(lines) && !strings.HasSuffix(last, "{") && !hasComment(last) &&
				loneBraceRe.MatchString(strings.TrimSpace(lines[i+1])) {
				i++
				st.scanLine(lines[i])
				header[len(header)-1] = last + " " + strings.TrimSpace(lines[i])
			}
		}
		out = append(out, header...)
	}
	return strings.Join(out, "\n")
}

func hasComment(line string) bool {
	return strings.Contains(line, "//") || strings.Contains(line, "/*")
}
