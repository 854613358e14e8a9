package diag

import (
	"testing"

	"github.com/BendyLand/blfmt-sub000/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")
	file := fs.AddVirtual("src/sample.c", []byte("int a;\nfoo bar;\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     FmtUnsupportedConstruct,
			Message:  "unsupported node\nkind",
			Primary:  source.Span{File: file, Start: 7, End: 10},
		},
		{
			Severity: SevError,
			Code:     FmtParseError,
			Message:  "parse error",
			Primary:  source.Span{File: file, Start: 0, End: 3},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 11, End: 14}, Msg: "related"},
			},
		},
	}

	expected := "error FMT1003 src/sample.c:1:1 parse error\n" +
		"warning FMT1001 src/sample.c:2:1 unsupported node kind\n" +
		"note FMT1003 src/sample.c:2:5 related"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
