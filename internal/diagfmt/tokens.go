package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"stck/internal/source"
	"stck/internal/token"
)

// SpanJSON is a token span with the file rendered as a path.
type SpanJSON struct {
	File  string `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type TokenOutput struct {
	Kind  string   `json:"kind"`
	Value any      `json:"value,omitempty"`
	Span  SpanJSON `json:"span"`
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet, mode PathMode) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)

		if _, err := fmt.Fprintf(w, "%3d: %-8s", i+1, tok.Kind.String()); err != nil {
			return err
		}

		switch tok.Kind {
		case token.Str:
			fmt.Fprintf(w, " %q", tok.Text)
		case token.Word:
			fmt.Fprintf(w, " %s", tok.Text)
		case token.Int:
			fmt.Fprintf(w, " %d", tok.Int)
		case token.Bool:
			fmt.Fprintf(w, " %t", tok.Bool)
		case token.Macro, token.Include, token.Proc, token.Do, token.End:
		}

		fmt.Fprintf(w, " at %d:%d-%d:%d", startPos.Line, startPos.Col, endPos.Line, endPos.Col)
		if _, err := fmt.Fprintf(w, " %s\n", formatPath(fs.Get(tok.Span.File), fs, mode)); err != nil {
			return err
		}
	}
	return nil
}

// BuildTokensOutput готовит токены к сериализации.
func BuildTokensOutput(tokens []token.Token, fs *source.FileSet, mode PathMode) []TokenOutput {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		output = append(output, TokenOutput{
			Kind:  tok.Kind.String(),
			Value: tok.Payload(),
			Span: SpanJSON{
				File:  formatPath(fs.Get(tok.Span.File), fs, mode),
				Start: tok.Span.Start,
				End:   tok.Span.End,
			},
		})
	}
	return output
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet, mode PathMode) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokensOutput(tokens, fs, mode))
}
