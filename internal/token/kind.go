package token

import "fmt"

// Kind represents the category of a stck token.
type Kind uint8

const (
	// Str is a string literal; Token.Text holds the decoded value.
	Str Kind = iota + 1
	// Int is a digit-only literal; Token.Int holds the value.
	Int
	// Bool is true/false; Token.Bool holds the value.
	Bool
	// Word is any other atom; Token.Text holds the name.
	Word
	// Macro is the 'macro' directive keyword.
	Macro // macro
	// Include is the 'include' directive keyword.
	Include // include
	// Proc is the 'proc' keyword.
	Proc // proc
	// Do is the 'do' keyword.
	Do // do
	// End is the 'end' keyword.
	End // end
)

// Kinds lists every token kind in declaration order.
var Kinds = [...]Kind{Str, Int, Bool, Word, Macro, Include, Proc, Do, End}

func (k Kind) String() string {
	switch k {
	case Str:
		return "Str"
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case Word:
		return "Word"
	case Macro:
		return "Macro"
	case Include:
		return "Include"
	case Proc:
		return "Proc"
	case Do:
		return "Do"
	case End:
		return "End"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Describe returns the user-facing spelling used in diagnostics:
// literal kinds in angle brackets, keywords as written.
func (k Kind) Describe() string {
	switch k {
	case Str:
		return "<str>"
	case Int:
		return "<int>"
	case Bool:
		return "<bool>"
	case Word:
		return "<word>"
	case Macro:
		return "macro"
	case Include:
		return "include"
	case Proc:
		return "proc"
	case Do:
		return "do"
	case End:
		return "end"
	}
	return k.String()
}

// IsDirective reports whether the kind is consumed by the preprocessor.
func (k Kind) IsDirective() bool {
	return k == Macro || k == Include
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	return k >= Str && k <= End
}
