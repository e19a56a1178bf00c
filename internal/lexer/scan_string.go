package lexer

import (
	"strings"
	"unicode/utf8"

	"stck/internal/diag"
	"stck/internal/token"
)

// scanString читает "..." с escape \n \r \t; любой другой символ после '\'
// берётся как есть. EOF до закрывающей кавычки - UnclosedString.
func (lx *Lexer) scanString() (token.Token, bool) {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'

	var sb strings.Builder
	for {
		b, ok := lx.cursor.Next()
		if !ok {
			lx.errLex(diag.LexUnclosedString, lx.cursor.SpanFrom(start))
			return token.Token{}, false
		}
		switch b {
		case '"':
			sp := lx.cursor.SpanFrom(start)
			if sb.Len() == 0 {
				lx.errLex(diag.LexEmptyString, sp)
				return token.Token{}, false
			}
			return token.NewStr(sb.String(), sp), true
		case '\\':
			if lx.cursor.EOF() {
				lx.errLex(diag.LexUnclosedString, lx.cursor.SpanFrom(start))
				return token.Token{}, false
			}
			lx.scanEscape(&sb)
		default:
			sb.WriteByte(b)
		}
	}
}

func (lx *Lexer) scanEscape(sb *strings.Builder) {
	switch {
	case lx.cursor.Eat('n'):
		sb.WriteByte('\n')
	case lx.cursor.Eat('r'):
		sb.WriteByte('\r')
	case lx.cursor.Eat('t'):
		sb.WriteByte('\t')
	default:
		// неизвестный escape пропускаем буквально, целой руной
		_, size := utf8.DecodeRune(lx.cursor.Rest())
		sb.Write(lx.cursor.Rest()[:size])
		lx.cursor.Advance(size)
	}
}
