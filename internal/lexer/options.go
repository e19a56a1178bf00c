package lexer

import (
	"stck/internal/diag"
)

// Options tunes the lexer. The zero value lexes the core grammar: whitespace is
// space, '\n' and '\r', and there are no comments.
type Options struct {
	// Reporter receives every lexical error as it happens. May be nil.
	Reporter diag.Reporter
	// LineComments makes "//" at the start of a token skip to the end of the line.
	LineComments bool
	// TabIsSpace treats '\t' as whitespace.
	TabIsSpace bool
}

func (lx *Lexer) isSpace(b byte) bool {
	switch b {
	case ' ', '\n', '\r':
		return true
	case '\t':
		return lx.opts.TabIsSpace
	}
	return false
}
