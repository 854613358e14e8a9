package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("int x = @oops;\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.c", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.FmtUnsupportedConstruct,
		source.Span{File: fileID, Start: 8, End: 13},
		"construct emitted verbatim",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/src/test.c:1:9"},
		{name: "Relative path", mode: PathModeRelative, contains: "src/test.c:1:9"},
		{name: "Basename only", mode: PathModeBasename, contains: "test.c:1:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyOpts{Context: 1, PathMode: tt.mode}
			if err := Pretty(&buf, bag, fs, opts); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "WARNING FMT1001: construct emitted verbatim") {
				t.Errorf("Expected severity, code and message, got:\n%s", output)
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Short path - as is", path: "test.c", expected: "test.c:"},
		{
			name:     "Long absolute path - basename",
			path:     "/very/long/absolute/path/to/some/nested/directory/file.c",
			expected: "\nfile.c:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("int x;\n"))
			bag := diag.NewBag(1)
			bag.Add(diag.NewWarning(diag.FmtParseError, source.Span{File: fileID, Start: 4, End: 5}, "w"))

			var buf bytes.Buffer
			buf.WriteByte('\n')
			if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto}); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestPrettySnippetLayout(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("int a;\nint x = @oops;\n")
	fileID := fs.AddVirtual("snip.c", content)

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.FmtRenderPanic, source.Span{File: fileID, Start: 15, End: 20}, "boom"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}

	want := "snip.c:2:9: ERROR FMT1004: boom\n" +
		" 1 | int a;\n" +
		" 2 | int x = @oops;\n" +
		"   |         ^~~~~\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestPrettyNoSnippetForEmptyFile(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("missing.c", nil)

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: fileID}, "no such file"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if got, want := buf.String(), "missing.c:1:1: ERROR IO4001: no such file\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.c", []byte("int x = a +;\n"))

	d := diag.NewWarning(diag.FmtMalformedAssumption, source.Span{File: fileID, Start: 8, End: 11}, "binary expression has no right operand")
	d = d.WithNote(source.Span{File: fileID, Start: 10, End: 11}, "operator here")
	bag := diag.NewBag(1)
	bag.Add(d)

	var hidden, shown bytes.Buffer
	if err := Pretty(&hidden, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if err := Pretty(&shown, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}

	if strings.Contains(hidden.String(), "note:") {
		t.Errorf("notes must be hidden unless requested, got:\n%s", hidden.String())
	}
	if !strings.Contains(shown.String(), "  note: test.c:1:11: operator here\n") {
		t.Errorf("expected note with location, got:\n%s", shown.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.c", []byte("x;\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.FmtParseError, source.Span{File: fileID, Start: 0, End: 1}, "bad"))

	var plain, colored bytes.Buffer
	_ = Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	_ = Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output contains escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
}

func TestUnderline(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		start, end source.LineCol
		pad, mark  string
	}{
		{
			name:  "ascii",
			line:  "int x = y;",
			start: source.LineCol{Line: 1, Col: 5},
			end:   source.LineCol{Line: 1, Col: 6},
			pad:   "    ",
			mark:  "^",
		},
		{
			name:  "tab is copied",
			line:  "\tx = 1;",
			start: source.LineCol{Line: 1, Col: 2},
			end:   source.LineCol{Line: 1, Col: 7},
			pad:   "\t",
			mark:  "^~~~~",
		},
		{
			name:  "wide runes",
			line:  "s = \"日本\";",
			start: source.LineCol{Line: 1, Col: 6},
			end:   source.LineCol{Line: 1, Col: 12},
			pad:   "     ",
			mark:  "^~~~",
		},
		{
			name:  "empty span still marks",
			line:  "abc",
			start: source.LineCol{Line: 1, Col: 2},
			end:   source.LineCol{Line: 1, Col: 2},
			pad:   " ",
			mark:  "^",
		},
		{
			name:  "multi-line span runs to end of line",
			line:  "f(a,",
			start: source.LineCol{Line: 3, Col: 2},
			end:   source.LineCol{Line: 4, Col: 3},
			pad:   " ",
			mark:  "^~~",
		},
		{
			name:  "start past end of line",
			line:  "ab",
			start: source.LineCol{Line: 1, Col: 9},
			end:   source.LineCol{Line: 1, Col: 10},
			pad:   "  ",
			mark:  "^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad, mark := underline(tt.line, tt.start, tt.end)
			if pad != tt.pad || mark != tt.mark {
				t.Fatalf("underline(%q) = (%q, %q), want (%q, %q)", tt.line, pad, mark, tt.pad, tt.mark)
			}
		})
	}
}
