package preprocess

import (
	"fmt"
	"strconv"

	"stck/internal/diag"
	"stck/internal/source"
	"stck/internal/token"
	"stck/internal/trace"
)

type macroDef struct {
	name string
	// site is the span of the name literal.
	site source.Span
	body []token.Token
	// dir resolves includes written inside the body.
	dir string
}

// defineMacro reads `macro "<name>" body... end`. Inside the body a proc
// (with its do), a nested macro and any other do open blocks closed by end;
// the macro's own end is the first one with no block open. The body is
// stored as written.
func (r *run) defineMacro(kw token.Token, c *tokenCursor, dir string) error {
	name, err := r.expectStr(kw, c)
	if err != nil {
		return err
	}

	start := c.pos
	var blocks token.Blocks
	for {
		if c.eof() {
			return unclosedMacroError(kw, name)
		}
		if blocks.Step(c.next().Kind) == token.BlockUnbalanced {
			break
		}
	}
	body := c.toks[start : c.pos-1]

	if prev, ok := r.macros[name.Text]; ok {
		return duplicateMacroError(name, prev)
	}
	r.macros[name.Text] = &macroDef{
		name: name.Text,
		site: name.Span,
		body: body,
		dir:  dir,
	}
	trace.Point(r.tracer, trace.ScopeDirective, "macro.define", name.Text+" ("+strconv.Itoa(len(body))+" tokens)", r.parent)
	return nil
}

// expand splices the body of def in place of use, re-scanning it.
func (r *run) expand(def *macroDef, use token.Token, out *[]token.Token) error {
	for i, e := range r.expanding {
		if e.name == def.name {
			return r.recursiveMacroError(i, def.name, use.Span)
		}
	}
	if err := r.enter(use.Span); err != nil {
		return err
	}
	defer r.leave()

	r.expanding = append(r.expanding, expansion{name: def.name, site: use.Span})
	defer func() { r.expanding = r.expanding[:len(r.expanding)-1] }()

	trace.Point(r.tracer, trace.ScopeDirective, "macro.expand", def.name, r.parent)
	return r.process(def.body, def.dir, out)
}

func (r *run) recursiveMacroError(first int, name string, site source.Span) *Error {
	chain := make([]string, 0, len(r.expanding)-first+1)
	notes := make([]diag.Note, 0, len(r.expanding)-first)
	for i := first; i < len(r.expanding); i++ {
		e := r.expanding[i]
		chain = append(chain, e.name)
		if i == first {
			notes = append(notes, diag.Note{Span: e.site, Msg: fmt.Sprintf("first expansion of %s", e.name)})
		} else {
			notes = append(notes, diag.Note{Span: e.site, Msg: fmt.Sprintf("%s led to this expansion", r.expanding[i-1].name)})
		}
	}
	chain = append(chain, name)
	return &Error{
		Code:  diag.PreCircularInclude,
		Span:  site,
		Name:  name,
		Chain: chain,
		Notes: append(notes, diag.Note{Span: site, Msg: fmt.Sprintf("%s expanded again here", name)}),
	}
}

func duplicateMacroError(name token.Token, prev *macroDef) *Error {
	return &Error{
		Code:  diag.PreDuplicateMacro,
		Span:  name.Span,
		Name:  name.Text,
		Notes: []diag.Note{{Span: prev.site, Msg: "first defined here"}},
	}
}

func unclosedMacroError(kw, name token.Token) *Error {
	return &Error{
		Code:  diag.PreUnclosedMacro,
		Span:  kw.Span,
		Name:  name.Text,
		Notes: []diag.Note{{Span: name.Span, Msg: "this block was never closed"}},
	}
}

func invalidTokenError(directive, got token.Token) *Error {
	return &Error{
		Code:      diag.PreInvalidToken,
		Span:      got.Span,
		Directive: directive.Kind,
		Expected:  token.Str,
		Got:       got.Kind,
	}
}

func unexpectedEOFError(directive token.Token) *Error {
	return &Error{
		Code:      diag.PreUnexpectedEOF,
		Span:      directive.Span,
		Directive: directive.Kind,
		Expected:  token.Str,
	}
}

func depthLimitError(site source.Span, limit int) *Error {
	return &Error{
		Code:  diag.PreDepthLimit,
		Span:  site,
		Limit: limit,
	}
}
