package fuzztests

import (
	"testing"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte, limit int) []byte {
	if len(input) > limit {
		return append([]byte(nil), input[:limit]...)
	}
	return append([]byte(nil), input...)
}

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input, maxFuzzInput)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.stck", input)
		file := fs.Get(fileID)

		for _, opts := range []lexer.Options{{}, {LineComments: true, TabIsSpace: true}} {
			bag := diag.NewBag(0)
			opts.Reporter = diag.BagReporter{Bag: bag}
			lx := lexer.New(file, opts)
			var streamed int
			for {
				if _, ok := lx.Next(); !ok {
					break
				}
				streamed++
			}
			opts.Reporter = nil
			toks, errs := lexer.New(file, opts).Collect()
			if bag.Len() != len(errs) {
				t.Fatalf("reported %d errors, collected %d", bag.Len(), len(errs))
			}
			if len(errs) > 0 {
				if toks != nil {
					t.Fatal("Collect returned tokens together with errors")
				}
				continue
			}
			if len(toks) != streamed {
				t.Fatalf("Collect returned %d tokens, Next streamed %d", len(toks), streamed)
			}
			if err := testkit.CheckLexerSpans(toks, file, opts); err != nil {
				t.Fatal(err)
			}
		}
	})
}
