package format

import "testing"

func TestPlaceBraces(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		in    string
		want  string
	}{
		{
			name:  "stroustrup multi-line header",
			style: StyleStroustrup,
			in:    "if (a &&\n    b) {\n    x;\n}",
			want:  "if (a &&\n    b)\n{\n    x;\n}",
		},
		{
			name:  "knr keeps multi-line header",
			style: StyleKnR,
			in:    "if (a &&\n    b) {\n    x;\n}",
			want:  "if (a &&\n    b) {\n    x;\n}",
		},
		{
			name:  "knr joins lone brace",
			style: StyleKnR,
			in:    "if (a)\n{\n    x;\n}",
			want:  "if (a) {\n    x;\n}",
		},
		{
			name:  "else joined to closing brace",
			style: StyleStroustrup,
			in:    "if (a) {\n    x;\n}\nelse {\n    y;\n}",
			want:  "if (a) {\n    x;\n} else {\n    y;\n}",
		},
		{
			name:  "allman splits else",
			style: StyleAllman,
			in:    "    if (a) {\n        x;\n    } else {\n        y;\n    }",
			want:  "    if (a)\n    {\n        x;\n    }\n    else\n    {\n        y;\n    }",
		},
		{
			name:  "allman keeps trailing comment",
			style: StyleAllman,
			in:    "while (n) { /* spin */\n}",
			want:  "while (n)\n{ /* spin */\n}",
		},
		{
			name:  "block comment untouched",
			style: StyleAllman,
			in:    "/*\nif (a) {\n*/",
			want:  "/*\nif (a) {\n*/",
		},
		{
			name:  "raw string untouched",
			style: StyleAllman,
			in:    "s = R\"(\nif (x) {\n} else {\n)\";\nif (y) {\n}",
			want:  "s = R\"(\nif (x) {\n} else {\n)\";\nif (y)\n{\n}",
		},
		{
			name:  "raw string with delimiter stays open across lines",
			style: StyleKnR,
			in:    "s = R\"x(\n)\"\n}\nelse {\n)x\";",
			want:  "s = R\"x(\n)\"\n}\nelse {\n)x\";",
		},
		{
			name:  "digit separator is not a char literal",
			style: StyleAllman,
			in:    "    if (n > 1'000) {\n        n--;\n    }\n    while (n) {\n        n--;\n    }",
			want:  "    if (n > 1'000)\n    {\n        n--;\n    }\n    while (n)\n    {\n        n--;\n    }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placeBraces(tt.in, tt.style); got != tt.want {
				t.Fatalf("mismatch:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestSortIncludes(t *testing.T) {
	in := "#include \"z.h\"\n#include <stdio.h>\nint x;\n#include <b.h>\n#include <a.h>"
	want := "#include <stdio.h>\n#include \"z.h\"\nint x;\n#include <a.h>\n#include <b.h>"
	if got := sortIncludes(in); got != want {
		t.Fatalf("mismatch:\nwant %q\ngot  %q", want, got)
	}

	commented := "/*\n#include <z.h>\n#include <a.h>\n*/\n#include <y.h>\n#include <b.h>"
	want = "/*\n#include <z.h>\n#include <a.h>\n*/\n#include <b.h>\n#include <y.h>"
	if got := sortIncludes(commented); got != want {
		t.Fatalf("mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestFixPointerSpacing(t *testing.T) {
	tests := []struct{ in, want string }{
		{"int* p;", "int *p;"},
		{"int * p;", "int *p;"},
		{"char** argv;", "char **argv;"},
		{"size_t* n = 0;", "size_t *n = 0;"},
		{"const char* s;", "const char *s;"},
		{"a * b;", "a * b;"},
		{"// int* p;", "// int* p;"},
		{"#define P int* p", "#define P int* p"},
		{"x = y +\n    int* p;", "x = y +\n    int* p;"},
	}
	for _, tt := range tests {
		if got := fixPointerSpacing(tt.in); got != tt.want {
			t.Errorf("fixPointerSpacing(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCloseOpenBlocks(t *testing.T) {
	const condBraces = "#ifdef A\nvoid f(void) {\n#else\nvoid f(int x) {\n#endif\n    body();\n}\n"
	tests := []struct {
		in      string
		balance int
		want    string
	}{
		{"int main(void)\n{\n    x;", 0, "int main(void)\n{\n    x;\n}\n"},
		{"void f(void)\n{\n    {\n", 0, "void f(void)\n{\n    {\n}\n}\n"},
		{"s = \"{\";", 0, "s = \"{\";"},
		{"#define OPEN {", 0, "#define OPEN {"},
		{"// {", 0, "// {"},
		{"c = '{';", 0, "c = '{';"},
		{"s = R\"(\n{\n)\";\n", 0, "s = R\"(\n{\n)\";\n"},
		{"s = R\"({)\";\n", 0, "s = R\"({)\";\n"},
		{condBraces, 1, condBraces},
		{"#ifdef A\nvoid f(void) {\n#else\nvoid f(int x) {\n#endif\n    body();\n", 1,
			"#ifdef A\nvoid f(void) {\n#else\nvoid f(int x) {\n#endif\n    body();\n}\n"},
	}
	for _, tt := range tests {
		if got := closeOpenBlocks(tt.in, tt.balance); got != tt.want {
			t.Errorf("closeOpenBlocks(%q, %d) = %q, want %q", tt.in, tt.balance, got, tt.want)
		}
	}
}

func TestTidy(t *testing.T) {
	if got := tidy("\n\nint x;   \n\n\n\nint y;"); got != "int x;\n\nint y;\n" {
		t.Fatalf("unexpected %q", got)
	}
	if got := tidy("\n \n"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	raw := "const char *s = R\"(a   \n\n\n  b  )\";\n"
	if got := tidy(raw); got != raw {
		t.Fatalf("raw string changed:\nwant %q\ngot  %q", raw, got)
	}
}

func TestFixPointerSpacingSkipsRawString(t *testing.T) {
	in := "s = R\"(\nint* p;\n)\";\nint* q;"
	want := "s = R\"(\nint* p;\n)\";\nint *q;"
	if got := fixPointerSpacing(in); got != want {
		t.Fatalf("mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestScanLine(t *testing.T) {
	tests := []struct {
		name           string
		line           string
		braces, parens int
		raw            bool
	}{
		{name: "plain", line: "if (a) {", braces: 1, parens: 0},
		{name: "char literal", line: "c = '{'; f(", braces: 0, parens: 1},
		{name: "prefixed char", line: "c = L'('; {", braces: 1, parens: 0},
		{name: "digit separators", line: "if (n > 1'000'000) {", braces: 1, parens: 0},
		{name: "hex separator", line: "x = 0xFF'FF; (", braces: 0, parens: 1},
		{name: "closed raw string", line: `s = R"x({)")x"; {`, braces: 1, parens: 0},
		{name: "prefixed raw string", line: `s = u8R"(})"; }`, braces: -1, parens: 0},
		{name: "open raw string", line: `s = R"(  {`, braces: 0, parens: 0, raw: true},
		{name: "identifier ending in R", line: `FOOR"(" {`, braces: 1, parens: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st lexState
			braces, parens := st.scanLine(tt.line)
			if braces != tt.braces || parens != tt.parens || st.inRaw() != tt.raw {
				t.Fatalf("scanLine(%q) = (%d, %d, raw=%v), want (%d, %d, raw=%v)",
					tt.line, braces, parens, st.inRaw(), tt.braces, tt.parens, tt.raw)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"#include \"b.h\"\n#include <a.h>\n\n\nint* p;\nvoid f(void)\n{\n",
		"/* int* p; */\nchar * s = \"{\";\n",
		"#define X \\\n    {\nint x;\n",
		"const char *s = R\"(a   \n\n\n  b  )\";\n",
		"/*\n#include <b.h>\n#include <a.h>\n*/\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}

func TestDefaultTransitions(t *testing.T) {
	file := DefaultFileTransitions()
	tests := []struct {
		prev, next GroupKind
		want       int
	}{
		{GroupInclude, GroupInclude, 0},
		{GroupInclude, GroupDefine, 1},
		{GroupDefine, GroupFunction, 1},
		{GroupPrototype, GroupPrototype, 0},
		{GroupPrototype, GroupFunction, 1},
		{GroupFunction, GroupFunction, 1},
		{GroupDeclaration, GroupDeclaration, 0},
		{GroupDeclaration, GroupComment, 1},
		{GroupComment, GroupFunction, 0},
		{GroupNone, GroupInclude, 0},
	}
	for _, tt := range tests {
		if got := file.Blank(tt.prev, tt.next); got != tt.want {
			t.Errorf("file Blank(%s, %s) = %d, want %d", tt.prev, tt.next, got, tt.want)
		}
	}

	block := DefaultBlockTransitions()
	if got := block.Blank(GroupStatement, GroupControl); got != 0 {
		t.Errorf("block Blank(statement, control) = %d, want 0", got)
	}
	if got := block.Blank(GroupDefine, GroupStatement); got != 1 {
		t.Errorf("block Blank(define, statement) = %d, want 1", got)
	}
	if got := block.Blank(GroupStatement, GroupType); got != 1 {
		t.Errorf("block Blank(statement, type) = %d, want 1", got)
	}
}

func TestTransitionsSet(t *testing.T) {
	tr := DefaultFileTransitions()
	tr.Set(GroupFunction, GroupFunction, 5)
	if got := tr.Blank(GroupFunction, GroupFunction); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	tr.Set(GroupFunction, GroupFunction, -1)
	if got := tr.Blank(GroupFunction, GroupFunction); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := tr.Blank(numGroupKinds, GroupFunction); got != 1 {
		t.Fatalf("out of range kinds should give 1, got %d", got)
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"", StyleStroustrup},
		{"Stroustrup", StyleStroustrup},
		{"knr", StyleKnR},
		{"K&R", StyleKnR},
		{"allman", StyleAllman},
		{" bsd ", StyleAllman},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseStyle("gnu"); err == nil {
		t.Fatal("expected error for unknown style")
	}
}
