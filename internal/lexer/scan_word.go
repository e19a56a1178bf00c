package lexer

import (
	"strconv"

	"stck/internal/diag"
	"stck/internal/token"
)

// scanWord жадно читает всё до пробела или EOF (maximal munch).
// Только цифры → Int, иначе ключевое слово, иначе Word.
func (lx *Lexer) scanWord() (token.Token, bool) {
	start := lx.cursor.Mark()
	numeric := true
	for !lx.cursor.EOF() && !lx.isSpace(lx.cursor.Peek()) {
		if !isDec(lx.cursor.Bump()) {
			numeric = false
		}
	}
	sp := lx.cursor.SpanFrom(start)
	word := string(lx.file.Content[sp.Start:sp.End])

	if numeric {
		v, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			lx.errLex(diag.LexIntOverflow, sp)
			return token.Token{}, false
		}
		return token.NewInt(v, sp), true
	}

	if k, ok := token.LookupKeyword(word); ok {
		if k == token.Bool {
			return token.NewBool(word == "true", sp), true
		}
		return token.NewKeyword(k, sp), true
	}
	return token.NewWord(word, sp), true
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
