package diag

import (
	"testing"

	"stck/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	mainFile := fs.Add("/workspace/main.stck", []byte("include \"lib\"\n1 2 +\n"), 0)
	libFile := fs.Add("/workspace/lib/lib.stck", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     PreCircularInclude,
			Message:  "circular include\nof lib",
			Primary:  source.Span{File: libFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: mainFile, Start: 0, End: 7}, Msg: "included from here"},
			},
		},
		{
			Severity: SevWarning,
			Code:     LexInfo,
			Message:  "another",
			Primary:  source.Span{File: mainFile, Start: 14, End: 15},
		},
	}

	expected := "error PRE2004 lib/lib.stck:1:1 circular include of lib\n" +
		"note PRE2004 main.stck:1:1 included from here\n" +
		"warning LEX1000 main.stck:2:1 another"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsSkipsUnknownFiles(t *testing.T) {
	fs := source.NewFileSet()
	diags := []Diagnostic{NewError(PreFileError, source.Span{File: 9}, "missing")}
	if got := FormatShortDiagnostics(diags, fs, false); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
