package format

import "strings"

// lexState tracks block comments and raw string literals across lines of
// rendered text.
type lexState struct {
	inBlockComment bool
	// rawEnd is the `)delim"` sequence closing the raw string we are in.
	rawEnd string
}

// inRaw reports whether the next line starts inside a raw string literal.
func (s *lexState) inRaw() bool {
	return s.rawEnd != ""
}

// verbatim reports whether the next line starts inside a literal or comment
// whose bytes must not be rewritten.
func (s *lexState) verbatim() bool {
	return s.inBlockComment || s.inRaw()
}

// scanLine walks one line outside string and char literals. It reports brace
// and paren depth changes and updates the block comment and raw string state.
func (s *lexState) scanLine(line string) (braces, parens int) {
	i := 0
	if s.rawEnd != "" {
		k := strings.Index(line, s.rawEnd)
		if k < 0 {
			return 0, 0
		}
		i = k + len(s.rawEnd)
		s.rawEnd = ""
	}
	for ; i < len(line); i++ {
		c := line[i]
		if s.inBlockComment {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.inBlockComment = false
				i++
			}
			continue
		}
		switch c {
		case '/':
			if i+1 < len(line) {
				if line[i+1] == '/' {
					return braces, parens
				}
				if line[i+1] == '*' {
					s.inBlockComment = true
					i++
				}
			}
		case '"':
			if isRawPrefix(line, i) {
				end, ok := s.skipRaw(line, i)
				if !ok {
					return braces, parens
				}
				i = end
				continue
			}
			i = skipLiteral(line, i)
		case '\'':
			if !isDigitSeparator(line, i) {
				i = skipLiteral(line, i)
			}
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			parens++
		case ')':
			parens--
		}
	}
	return braces, parens
}

// skipRaw handles the raw string whose quote is at i. It returns the index of
// the closing quote, or false when the literal runs past the end of the line.
func (s *lexState) skipRaw(line string, i int) (int, bool) {
	open := strings.IndexByte(line[i+1:], '(')
	if open < 0 {
		return len(line), true
	}
	open += i + 1
	end := ")" + line[i+1:open] + `"`
	k := strings.Index(line[open+1:], end)
	if k < 0 {
		s.rawEnd = end
		return len(line), false
	}
	return open + 1 + k + len(end) - 1, true
}

// isRawPrefix reports whether the quote at i opens a raw string: R", LR",
// uR", UR" or u8R".
func isRawPrefix(line string, i int) bool {
	if i == 0 || line[i-1] != 'R' {
		return false
	}
	j := i - 1
	switch {
	case j >= 2 && line[j-2:j] == "u8":
		j -= 2
	case j >= 1 && strings.IndexByte("LuU", line[j-1]) >= 0:
		j--
	}
	return j == 0 || !isWordByte(line[j-1])
}

// isDigitSeparator reports whether the quote at i sits inside a number
// literal such as 1'000 or 0xFF'FF.
func isDigitSeparator(line string, i int) bool {
	if i == 0 || i+1 >= len(line) || !isWordByte(line[i-1]) || !isWordByte(line[i+1]) {
		return false
	}
	j := i - 1
	for j > 0 && (isWordByte(line[j-1]) || line[j-1] == '\'' || line[j-1] == '.') {
		j--
	}
	return line[j] >= '0' && line[j] <= '9'
}

// skipLiteral returns the index of the quote closing the literal opened at i.
func skipLiteral(line string, i int) int {
	q := line[i]
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(line)
}

// rawLines reports for each line whether it starts inside a raw string, and
// for each line whether it ends inside one.
func rawLines(lines []string) (starts, ends []bool) {
	starts = make([]bool, len(lines))
	ends = make([]bool, len(lines))
	var st lexState
	for i, line := range lines {
		starts[i] = st.inRaw()
		st.scanLine(line)
		ends[i] = st.inRaw()
	}
	return starts, ends
}

func leadingSpace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}
