package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/source"
	"stck/internal/token"
)

var semanticTokenTypes = []string{
	"keyword",
	"macro",
	"string",
	"number",
	"variable",
}

var semanticTokenModifiers = []string{
	"declaration",
	"defaultLibrary",
}

const (
	semKeyword uint32 = iota
	semMacro
	semString
	semNumber
	semVariable
)

const (
	modDeclaration uint32 = 1 << iota
	modDefaultLibrary
)

type semanticToken struct {
	line      uint32
	startChar uint32
	length    uint32
	tokenType uint32
	modifiers uint32
}

func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	a := h.analysisFor(params.TextDocument.URI)
	if a == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(a))}, nil
}

func collectSemanticTokens(a *analysis) []semanticToken {
	out := make([]semanticToken, 0, len(a.tokens))
	for i, tok := range a.tokens {
		typ, mods := classify(a, i, tok)
		st, ok := semanticTokenFor(a.file, tok.Span, typ, mods)
		if ok {
			out = append(out, st)
		}
	}
	return out
}

func classify(a *analysis, i int, tok token.Token) (typ, mods uint32) {
	switch tok.Kind {
	case token.Macro, token.Include, token.Proc, token.Do, token.End:
		return semKeyword, 0
	case token.Bool:
		return semKeyword, modDefaultLibrary
	case token.Int:
		return semNumber, 0
	case token.Str:
		if i > 0 && a.tokens[i-1].Kind == token.Macro {
			return semMacro, modDeclaration
		}
		return semString, 0
	case token.Word:
		if _, ok := a.macros[tok.Text]; ok {
			return semMacro, 0
		}
	}
	return semVariable, 0
}

// semanticTokenFor clips multi-line tokens to their first line; LSP tokens
// may not span lines.
func semanticTokenFor(file *source.File, span source.Span, typ, mods uint32) (semanticToken, bool) {
	start := positionForOffsetInFile(file, span.Start)
	end := positionForOffsetInFile(file, span.End)
	if end.Line != start.Line {
		lineEnd := safeUint32(len(file.Content))
		if int(start.Line) < len(file.LineIdx) {
			lineEnd = file.LineIdx[start.Line]
		}
		end = positionForOffsetInFile(file, lineEnd)
	}
	if end.Character <= start.Character {
		return semanticToken{}, false
	}
	return semanticToken{
		line:      start.Line,
		startChar: start.Character,
		length:    end.Character - start.Character,
		tokenType: typ,
		modifiers: mods,
	}, true
}

// encodeSemanticTokens packs tokens into the relative LSP wire form.
// tokens must be in document order.
func encodeSemanticTokens(tokens []semanticToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, tok := range tokens {
		deltaLine := tok.line - prevLine
		deltaStart := tok.startChar
		if deltaLine == 0 {
			deltaStart = tok.startChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, tok.length, tok.tokenType, tok.modifiers)
		prevLine = tok.line
		prevStart = tok.startChar
	}
	return data
}
