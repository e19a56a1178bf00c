package testkit

import (
	"strings"
	"testing"

	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/token"
)

func lexAll(t *testing.T, src string, opts lexer.Options) ([]token.Token, *source.FileSet, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.stck", []byte(src)))
	toks, errs := lexer.New(file, opts).Collect()
	if len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	return toks, fs, file
}

func TestCheckLexerSpansAcceptsLexerOutput(t *testing.T) {
	src := "macro \"m\" 1 -2 true \"a\\tb\" end\n\tend! a\"b 9223372036854775807 // c\n"
	opts := lexer.Options{TabIsSpace: true, LineComments: true}
	toks, fs, file := lexAll(t, src, opts)
	if err := CheckLexerSpans(toks, file, opts); err != nil {
		t.Fatal(err)
	}
	if err := CheckResolvedSpans(toks, fs); err != nil {
		t.Fatal(err)
	}
}

func TestCheckLexerSpansRejects(t *testing.T) {
	toks, _, file := lexAll(t, "abc def", lexer.Options{})

	tests := []struct {
		name   string
		mutate func([]token.Token)
		want   string
	}{
		{"empty", func(ts []token.Token) { ts[0].Span.End = ts[0].Span.Start }, "empty span"},
		{"other file", func(ts []token.Token) { ts[1].Span.File = 7 }, "file mismatch"},
		{"beyond content", func(ts []token.Token) { ts[1].Span.End = 99 }, "beyond content"},
		{"overlap", func(ts []token.Token) { ts[1].Span.Start = 2 }, "overlaps"},
		{"wrong payload", func(ts []token.Token) { ts[0].Text = "xyz" }, "re-lexes"},
		{"partial token", func(ts []token.Token) { ts[1].Span.End = 6; ts[1].Text = "de" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := append([]token.Token(nil), toks...)
			tt.mutate(ts)
			err := CheckLexerSpans(ts, file, lexer.Options{})
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckResolvedSpansUnknownFile(t *testing.T) {
	toks, fs, _ := lexAll(t, "x", lexer.Options{})
	toks[0].Span.File = 3
	if err := CheckResolvedSpans(toks, fs); err == nil || !strings.Contains(err.Error(), "unknown file") {
		t.Fatalf("expected unknown file error, got %v", err)
	}
	if err := CheckResolvedSpans(nil, nil); err == nil {
		t.Fatal("expected error for nil file set")
	}
}
