package lexer

import (
	"fmt"
	"strings"

	"stck/internal/diag"
	"stck/internal/source"
)

// Error is a single lexical error.
type Error struct {
	Code diag.Code
	Span source.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Code.Title(), e.Span)
}

// Diagnostic converts the error into the shared diagnostic model.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     e.Code,
		Message:  e.Code.Title(),
		Primary:  e.Span,
	}
}

// Errors is the complete error report of one Collect call.
type Errors []*Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no lexical errors"
	case 1:
		return es[0].Error()
	}
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%d lexical errors: %s", len(es), strings.Join(parts, "; "))
}

// Diagnostics converts every error.
func (es Errors) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(es))
	for _, e := range es {
		out = append(out, e.Diagnostic())
	}
	return out
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span) {
	e := &Error{Code: code, Span: sp}
	lx.errs = append(lx.errs, e)
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, code.Title()).Emit()
	}
}
