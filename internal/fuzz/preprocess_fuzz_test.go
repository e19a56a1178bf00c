package fuzztests

import (
	"errors"
	"testing"

	"stck/internal/lexer"
	"stck/internal/preprocess"
	"stck/internal/source"
	"stck/internal/testkit"
	"stck/internal/token"
)

const (
	// Expansion can grow exponentially with nesting; small inputs and a low
	// depth keep each run bounded.
	maxPreprocessInput  = 4 << 10
	maxPreprocessTokens = 64
	fuzzMaxDepth        = 3
)

func FuzzPreprocess(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input, maxPreprocessInput)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.stck", input))
		toks, errs := lexer.New(file, lexer.Options{}).Collect()
		if len(errs) > 0 || len(toks) > maxPreprocessTokens {
			return
		}
		// include читал бы произвольные файлы с диска
		for _, tok := range toks {
			if tok.Kind == token.Include {
				return
			}
		}

		opts := preprocess.Options{FileSet: fs, Root: "fuzz.stck", MaxDepth: fuzzMaxDepth}
		out, err := preprocess.New(toks, opts).Preprocess()
		if err != nil {
			var pe *preprocess.Error
			if !errors.As(err, &pe) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if len(pe.Diagnostics()) == 0 {
				t.Fatal("preprocess error without diagnostics")
			}
			return
		}
		if err := testkit.CheckResolvedSpans(out, fs); err != nil {
			t.Fatal(err)
		}

		// Повторный прогон на том же входе даёт тот же результат.
		again, err := preprocess.New(toks, opts).Preprocess()
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if len(again) != len(out) {
			t.Fatalf("second run produced %d tokens, first %d", len(again), len(out))
		}
		for i := range out {
			if out[i] != again[i] {
				t.Fatalf("token %d differs between runs: %v vs %v", i, out[i], again[i])
			}
		}
	})
}
