package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans merge",
			a:        Span{File: 1, Start: 2, End: 4},
			b:        Span{File: 1, Start: 10, End: 12},
			expected: Span{File: 1, Start: 2, End: 12},
		},
		{
			name:     "nested span keeps outer",
			a:        Span{File: 1, Start: 0, End: 20},
			b:        Span{File: 1, Start: 5, End: 6},
			expected: Span{File: 1, Start: 0, End: 20},
		},
		{
			name:     "other file is ignored",
			a:        Span{File: 1, Start: 5, End: 6},
			b:        Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 5, End: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	outer := Span{File: 3, Start: 10, End: 20}
	if !outer.Contains(Span{File: 3, Start: 10, End: 20}) {
		t.Error("span must contain itself")
	}
	if !outer.Contains(Span{File: 3, Start: 15, End: 15}) {
		t.Error("empty span inside must be contained")
	}
	if outer.Contains(Span{File: 3, Start: 9, End: 12}) {
		t.Error("span starting before must not be contained")
	}
	if outer.Contains(Span{File: 4, Start: 12, End: 13}) {
		t.Error("span from another file must not be contained")
	}
}

func TestSpan_LenEmptyString(t *testing.T) {
	sp := Span{File: 2, Start: 7, End: 7}
	if !sp.Empty() || sp.Len() != 0 {
		t.Fatalf("expected empty span, got len %d", sp.Len())
	}
	sp.End = 11
	if sp.Empty() || sp.Len() != 4 {
		t.Fatalf("expected len 4, got %d", sp.Len())
	}
	if sp.String() != "2:7-11" {
		t.Fatalf("unexpected String(): %q", sp.String())
	}
}
