package lexer

import (
	"stck/internal/source"
	"stck/internal/token"
)

// Lexer turns one file's content into tokens in a single forward pass.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	errs   Errors
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next возвращает следующий токен. ok=false означает конец входа.
// Ошибочные токены не возвращаются: ошибка записывается, лексер идёт дальше.
func (lx *Lexer) Next() (tok token.Token, ok bool) {
	for {
		lx.skipTrivia()
		if lx.cursor.EOF() {
			return token.Token{}, false
		}

		if lx.cursor.Peek() == '"' {
			tok, ok = lx.scanString()
		} else {
			tok, ok = lx.scanWord()
		}
		if ok {
			return tok, true
		}
	}
}

// Collect lexes the whole file. It returns either the complete token sequence
// or every lexical error found, never both.
func (lx *Lexer) Collect() ([]token.Token, Errors) {
	tokens := make([]token.Token, 0, len(lx.file.Content)/4)
	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if len(lx.errs) > 0 {
		return nil, lx.errs
	}
	return tokens, nil
}

// skipTrivia пропускает пробелы (и комментарии, если включены).
// Span следующего токена начинается строго после них.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if lx.isSpace(b) {
			lx.cursor.Bump()
			continue
		}
		if lx.opts.LineComments {
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '/' && b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
		}
		return
	}
}

// Tokenize is a shortcut for lexing an in-memory source.
func Tokenize(name, src string, opts Options) ([]token.Token, Errors) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	return New(fs.Get(id), opts).Collect()
}
