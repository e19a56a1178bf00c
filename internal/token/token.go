package token

import (
	"strconv"

	"stck/internal/source"
)

// Token is a single lexical unit with its payload and source location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string // Str value or Word name
	Int  int64
	Bool bool
}

// NewStr builds a string literal token.
func NewStr(value string, sp source.Span) Token {
	return Token{Kind: Str, Span: sp, Text: value}
}

// NewInt builds an integer literal token.
func NewInt(value int64, sp source.Span) Token {
	return Token{Kind: Int, Span: sp, Int: value}
}

// NewBool builds a boolean literal token.
func NewBool(value bool, sp source.Span) Token {
	return Token{Kind: Bool, Span: sp, Bool: value}
}

// NewWord builds a word (identifier/atom) token.
func NewWord(name string, sp source.Span) Token {
	return Token{Kind: Word, Span: sp, Text: name}
}

// NewKeyword builds a payload-free keyword token.
func NewKeyword(k Kind, sp source.Span) Token {
	return Token{Kind: k, Span: sp}
}

// Payload returns the token's value as an interface: string, int64, bool or nil.
func (t Token) Payload() any {
	switch t.Kind {
	case Str, Word:
		return t.Text
	case Int:
		return t.Int
	case Bool:
		return t.Bool
	case Macro, Include, Proc, Do, End:
		return nil
	}
	return nil
}

// Lexeme renders the token back into source-like text.
func (t Token) Lexeme() string {
	switch t.Kind {
	case Str:
		return strconv.Quote(t.Text)
	case Word:
		return t.Text
	case Int:
		return strconv.FormatInt(t.Int, 10)
	case Bool:
		return strconv.FormatBool(t.Bool)
	case Macro, Include, Proc, Do, End:
		return t.Kind.Describe()
	}
	return ""
}

// SameValue reports whether two tokens have equal kind and payload, ignoring spans.
func (t Token) SameValue(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Str, Word:
		return t.Text == o.Text
	case Int:
		return t.Int == o.Int
	case Bool:
		return t.Bool == o.Bool
	}
	return true
}

// IsWord reports whether the token is a Word named name.
func (t Token) IsWord(name string) bool { return t.Kind == Word && t.Text == name }

func (t Token) String() string {
	switch t.Kind {
	case Str, Word, Int, Bool:
		return t.Kind.String() + "(" + t.Lexeme() + ")"
	}
	return t.Kind.String()
}
