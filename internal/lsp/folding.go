package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/token"
)

type blockEntry struct {
	line uint32
}

func (h *Handler) TextDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	a := h.analysisFor(params.TextDocument.URI)
	if a == nil {
		return []protocol.FoldingRange{}, nil
	}
	return buildFoldingRanges(a), nil
}

// buildFoldingRanges folds every macro, proc and do block that spans lines.
// A proc folds from the proc keyword. Unbalanced `end`s are ignored.
func buildFoldingRanges(a *analysis) []protocol.FoldingRange {
	ranges := make([]protocol.FoldingRange, 0, 8)
	stack := make([]blockEntry, 0, 8)
	var blocks token.Blocks
	for _, tok := range a.tokens {
		switch blocks.Step(tok.Kind) {
		case token.BlockOpen:
			stack = append(stack, blockEntry{line: positionForOffsetInFile(a.file, tok.Span.Start).Line})
		case token.BlockClose:
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			endLine := positionForOffsetInFile(a.file, tok.Span.Start).Line
			if endLine > open.line {
				ranges = append(ranges, protocol.FoldingRange{StartLine: open.line, EndLine: endLine})
			}
		}
	}
	return ranges
}
