package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/token"
)

// TextDocumentDefinition jumps from a macro use to its `macro "name"` in the
// same document.
func (h *Handler) TextDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	a := h.analysisFor(params.TextDocument.URI)
	if a == nil {
		return nil, nil
	}
	loc := findDefinition(a, params.Position)
	if loc == nil {
		return nil, nil
	}
	loc.URI = canonicalURI(params.TextDocument.URI)
	return loc, nil
}

func findDefinition(a *analysis, pos protocol.Position) *protocol.Location {
	off := offsetForPositionInFile(a.file, pos)
	for _, tok := range a.tokens {
		if tok.Span.Start > off {
			break
		}
		if tok.Kind != token.Word || off >= tok.Span.End {
			continue
		}
		span, ok := a.macros[tok.Text]
		if !ok {
			return nil
		}
		return &protocol.Location{Range: rangeForSpan(a.file, span)}
	}
	return nil
}
