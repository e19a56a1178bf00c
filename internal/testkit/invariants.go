package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/token"
)

// CheckLexerSpans runs the span invariants of a single-file token stream:
// 1) every span is non-empty, points into file and ends within its content
// 2) spans are strictly ordered and never overlap
// 3) re-lexing the bytes under a span yields the same token
func CheckLexerSpans(tokens []token.Token, file *source.File, opts lexer.Options) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	opts.Reporter = nil

	var prevEnd uint32
	for i, tok := range tokens {
		sp := tok.Span
		if err := checkSpan(sp, file.ID, lenContent); err != nil {
			return fmt.Errorf("token %d (%s): %w", i, tok.Kind, err)
		}
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("token %d (%s) span %v overlaps previous token ending at %d", i, tok.Kind, sp, prevEnd)
		}
		prevEnd = sp.End

		// повторный лексинг только байтов токена
		relexed, errs := lexer.Tokenize("relex", string(file.Content[sp.Start:sp.End]), opts)
		if len(errs) > 0 || len(relexed) != 1 {
			return fmt.Errorf("token %d (%s) at %v does not re-lex to a single token", i, tok.Kind, sp)
		}
		if !relexed[0].SameValue(tok) {
			return fmt.Errorf("token %d re-lexes to %s, want %s", i, relexed[0], tok)
		}
	}
	return nil
}

// CheckResolvedSpans checks that every token of a preprocessed stream points
// at a non-empty range inside a file of fs.
func CheckResolvedSpans(tokens []token.Token, fs *source.FileSet) error {
	if fs == nil {
		return fmt.Errorf("nil file set")
	}
	for i, tok := range tokens {
		f := fs.Get(tok.Span.File)
		if f == nil {
			return fmt.Errorf("token %d (%s) points to unknown file %d", i, tok.Kind, tok.Span.File)
		}
		lenContent, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if err := checkSpan(tok.Span, f.ID, lenContent); err != nil {
			return fmt.Errorf("token %d (%s): %w", i, tok.Kind, err)
		}
	}
	return nil
}

func checkSpan(sp source.Span, file source.FileID, contentLen uint32) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty span %v", sp)
	}
	if sp.File != file {
		return fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, file)
	}
	if sp.End > contentLen {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, contentLen)
	}
	return nil
}
