package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/source"
)

func newFile(t *testing.T, text string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("t.stck", []byte(text)))
}

func TestUTF16Positions(t *testing.T) {
	// "é" is 2 bytes / 1 unit, "🙂" is 4 bytes / 2 units.
	file := newFile(t, "ab\n\"é🙂\" x\n")

	tests := []struct {
		off uint32
		pos protocol.Position
	}{
		{0, protocol.Position{Line: 0, Character: 0}},
		{2, protocol.Position{Line: 0, Character: 2}},
		{3, protocol.Position{Line: 1, Character: 0}},
		{4, protocol.Position{Line: 1, Character: 1}},
		{6, protocol.Position{Line: 1, Character: 2}},
		{10, protocol.Position{Line: 1, Character: 4}},
		{12, protocol.Position{Line: 1, Character: 6}},
		{14, protocol.Position{Line: 2, Character: 0}},
	}
	for _, tt := range tests {
		if got := positionForOffsetInFile(file, tt.off); got != tt.pos {
			t.Errorf("positionForOffsetInFile(%d) = %+v, want %+v", tt.off, got, tt.pos)
		}
		if got := offsetForPositionInFile(file, tt.pos); got != tt.off {
			t.Errorf("offsetForPositionInFile(%+v) = %d, want %d", tt.pos, got, tt.off)
		}
	}
}

func TestPositionClamping(t *testing.T) {
	file := newFile(t, "abc\nde")
	if got := offsetForPositionInFile(file, protocol.Position{Line: 0, Character: 99}); got != 3 {
		t.Fatalf("past end of line: got %d", got)
	}
	if got := offsetForPositionInFile(file, protocol.Position{Line: 9, Character: 0}); got != 6 {
		t.Fatalf("past last line: got %d", got)
	}
	if got := positionForOffsetInFile(file, 99); got != (protocol.Position{Line: 1, Character: 2}) {
		t.Fatalf("offset past end: got %+v", got)
	}
	if got := positionForOffsetInFile(nil, 3); got != (protocol.Position{}) {
		t.Fatalf("nil file: got %+v", got)
	}
}

func TestRangeForSpan(t *testing.T) {
	file := newFile(t, "x\nyy")
	got := rangeForSpan(file, source.Span{File: file.ID, Start: 2, End: 4})
	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 1, Character: 2},
	}
	if got != want {
		t.Fatalf("rangeForSpan = %+v, want %+v", got, want)
	}
}

func TestApplyChanges(t *testing.T) {
	text := "one\ntwo\n"
	text = applyChanges(text, []any{
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 0},
				End:   protocol.Position{Line: 1, Character: 3},
			},
			Text: "2",
		},
		&protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 3},
				End:   protocol.Position{Line: 0, Character: 3},
			},
			Text: "!",
		},
	})
	if text != "one!\n2\n" {
		t.Fatalf("ranged changes: got %q", text)
	}

	text = applyChanges(text, []any{protocol.TextDocumentContentChangeEventWhole{Text: "fresh"}})
	if text != "fresh" {
		t.Fatalf("whole change: got %q", text)
	}
	if got := applyChanges("keep", nil); got != "keep" {
		t.Fatalf("no changes: got %q", got)
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := "/tmp/some dir/a.stck"
	uri := pathToURI(path)
	if uri != "file:///tmp/some%20dir/a.stck" {
		t.Fatalf("pathToURI = %q", uri)
	}
	if got := uriToPath(uri); got != path {
		t.Fatalf("uriToPath = %q", got)
	}
	if got := uriToPath("https://example.com/a.stck"); got != "" {
		t.Fatalf("non-file scheme: got %q", got)
	}
	if got := canonicalURI("file:///tmp/x/../a.stck"); got != "file:///tmp/a.stck" {
		t.Fatalf("canonicalURI = %q", got)
	}
}
