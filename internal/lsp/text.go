package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/source"
)

// applyChanges replays didChange events over text. Ranged events patch the
// text in place; whole-document events replace it.
func applyChanges(text string, changes []any) string {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case *protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyRangeChange(text, c)
		case *protocol.TextDocumentContentChangeEvent:
			text = applyRangeChange(text, *c)
		}
	}
	return text
}

func applyRangeChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	// Позиции считаются по текущему тексту, без нормализации.
	file := &source.File{Content: []byte(text), LineIdx: lineIndex(text)}
	start := int(offsetForPositionInFile(file, change.Range.Start))
	end := int(offsetForPositionInFile(file, change.Range.End))
	if start > len(text) {
		start = len(text)
	}
	if end < start {
		end = start
	}
	if end > len(text) {
		end = len(text)
	}
	return text[:start] + change.Text + text[end:]
}

func lineIndex(text string) []uint32 {
	out := make([]uint32, 0, 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, safeUint32(i))
		}
	}
	return out
}
