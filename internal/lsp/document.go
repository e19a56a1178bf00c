package lsp

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/driver"
	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/token"
)

type document struct {
	uri      string
	path     string
	text     string
	version  protocol.Integer
	analysis *analysis
}

// analysis is what the editor features read: the document's own tokens and
// the macros it defines, plus the full preprocess result for diagnostics.
type analysis struct {
	file   *source.File
	tokens []token.Token
	macros map[string]source.Span
	result *driver.Result
}

func analyze(ctx context.Context, path, text string, opts driver.Options) *analysis {
	res := driver.PreprocessSource(ctx, path, []byte(text), opts)

	// Лексер без репортера: ошибки уже в res.Bag, здесь нужны только токены.
	lx := lexer.New(res.File, lexer.Options{LineComments: opts.LineComments, TabIsSpace: opts.TabIsSpace})
	var tokens []token.Token
	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return &analysis{
		file:   res.File,
		tokens: tokens,
		macros: macroDefinitions(tokens),
		result: res,
	}
}

// macroDefinitions maps each `macro "name"` in tokens to the span of its name.
// The first definition wins, as in the preprocessor.
func macroDefinitions(tokens []token.Token) map[string]source.Span {
	defs := make(map[string]source.Span)
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Kind != token.Macro || tokens[i+1].Kind != token.Str {
			continue
		}
		name := tokens[i+1].Text
		if _, seen := defs[name]; !seen {
			defs[name] = tokens[i+1].Span
		}
	}
	return defs
}

func (h *Handler) analysisFor(uri string) *analysis {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc := h.docs[canonicalURI(uri)]
	if doc == nil {
		return nil
	}
	return doc.analysis
}
