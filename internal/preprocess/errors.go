package preprocess

import (
	"fmt"
	"path/filepath"
	"strings"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/token"
)

// Error is the single error a failed run returns.
type Error struct {
	Code diag.Code
	// Span points at the offending token.
	Span source.Span

	// Directive is the directive kind involved (InvalidToken, UnexpectedEOF).
	Directive token.Kind
	Expected  token.Kind
	Got       token.Kind

	// Name is the macro name (DuplicateMacro, UnclosedMacro, macro cycles).
	Name string
	// Path is the resolved file path (CircularInclude, FileError, Lex).
	Path string
	// Chain lists include paths or macro names forming a cycle, first to last.
	Chain []string
	// Limit is the exceeded depth (DepthLimit).
	Limit int

	Notes []diag.Note
	// Lex holds the lexical errors of an included file (PreLexError).
	Lex lexer.Errors
	// Err is the underlying I/O error (FileError).
	Err error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the human-readable description without the code prefix.
func (e *Error) Message() string {
	switch e.Code {
	case diag.PreInvalidToken:
		return fmt.Sprintf("expected %s after %s, got %s", e.Expected.Describe(), e.Directive.Describe(), e.Got.Describe())
	case diag.PreUnexpectedEOF:
		return fmt.Sprintf("expected %s after %s, got end of input", e.Expected.Describe(), e.Directive.Describe())
	case diag.PreDuplicateMacro:
		return fmt.Sprintf("macro %q is already defined", e.Name)
	case diag.PreUndefinedMacro:
		return fmt.Sprintf("macro %q is not defined", e.Name)
	case diag.PreUnclosedMacro:
		return fmt.Sprintf("macro %q is never closed with end", e.Name)
	case diag.PreCircularInclude:
		if e.Name != "" {
			return fmt.Sprintf("recursive expansion of macro %q: %s", e.Name, strings.Join(e.Chain, " -> "))
		}
		return fmt.Sprintf("circular include of %s: %s", e.Path, formatChain(e.Chain))
	case diag.PreFileError:
		return fmt.Sprintf("cannot include %s", e.Path)
	case diag.PreDepthLimit:
		return fmt.Sprintf("nesting depth limit of %d exceeded", e.Limit)
	case diag.PreLexError:
		return fmt.Sprintf("%d lexical error(s) in %s", len(e.Lex), e.Path)
	}
	return e.Code.Title()
}

func formatChain(chain []string) string {
	parts := make([]string, 0, len(chain))
	for _, p := range chain {
		parts = append(parts, filepath.Base(p))
	}
	return strings.Join(parts, " -> ")
}

// Diagnostic converts the error into the shared diagnostic model.
func (e *Error) Diagnostic() diag.Diagnostic {
	msg := e.Message()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	d := diag.NewError(e.Code, e.Span, msg)
	d.Notes = append(d.Notes, e.Notes...)
	return d
}

// Diagnostics returns the error itself followed by every wrapped lexical
// error of an included file.
func (e *Error) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, 1+len(e.Lex))
	out = append(out, e.Diagnostic())
	out = append(out, e.Lex.Diagnostics()...)
	return out
}

// Report sends every diagnostic of the error to r.
func (e *Error) Report(r diag.Reporter) {
	if r == nil {
		return
	}
	for _, d := range e.Diagnostics() {
		r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
}
