package driver

import (
	"context"
	"fmt"
	"strconv"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/observ"
	"stck/internal/trace"
)

// Tokenize loads and lexes a single file.
func Tokenize(ctx context.Context, path string, opts Options) (*Result, error) {
	timer := observ.NewTimer()

	loadIdx := timer.Begin("load")
	_, loadSpan := trace.Start(ctx, trace.ScopePass, "load")
	fs := opts.newFileSet()
	fileID, err := fs.Load(path)
	loadSpan.End(path)
	timer.End(loadIdx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(opts.MaxDiagnostics)

	lexIdx := timer.Begin("lex")
	_, lexSpan := trace.Start(ctx, trace.ScopePass, "lex")
	lexOpts := opts.lexerOptions()
	lexOpts.Reporter = diag.BagReporter{Bag: bag}
	tokens, _ := lexer.New(file, lexOpts).Collect()
	lexSpan.WithExtra("tokens", strconv.Itoa(len(tokens))).End(path)
	timer.End(lexIdx, fmt.Sprintf("%d tokens", len(tokens)))

	return &Result{
		Path:    path,
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
		Timing:  timer.Report(),
	}, nil
}
