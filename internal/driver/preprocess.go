package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/observ"
	"stck/internal/preprocess"
	"stck/internal/source"
	"stck/internal/token"
	"stck/internal/trace"
)

// Preprocess loads path, lexes it and resolves all directives.
// The returned error is only set when the root file cannot be read;
// lexical and preprocessing failures are reported through Result.Bag.
func Preprocess(ctx context.Context, path string, opts Options) (*Result, error) {
	timer := observ.NewTimer()

	emit(opts.Progress, path, StageLoad, StatusWorking, nil, 0)
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

	if opts.Cache != nil {
		key := cacheKey(file, opts)
		if cachedFS, tokens, ok := opts.Cache.Restore(key, opts); ok {
			trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache.hit", path, trace.CurrentSpan(ctx).SpanID)
			return &Result{
				Path:    path,
				FileSet: cachedFS,
				File:    cachedFS.Get(0),
				Tokens:  tokens,
				Bag:     diag.NewBag(opts.MaxDiagnostics),
				Timing:  timer.Report(),
				Cached:  true,
			}, nil
		}
	}

	res := run(ctx, fs, file, opts, timer)
	res.Path = path

	if opts.Cache != nil && !res.Failed() {
		if err := opts.Cache.Store(cacheKey(file, opts), fs, res.Tokens, res.Misses); err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{}, "token cache: "+err.Error()))
		}
	}
	return res, nil
}

// PreprocessSource runs the pipeline over in-memory content. path is used
// for include resolution and diagnostics only; nothing is read for it.
func PreprocessSource(ctx context.Context, path string, content []byte, opts Options) *Result {
	fs := opts.newFileSet()
	fileID := fs.AddVirtual(path, content)
	file := fs.Get(fileID)
	res := run(ctx, fs, file, opts, observ.NewTimer())
	res.Path = path
	return res
}

func run(ctx context.Context, fs *source.FileSet, file *source.File, opts Options, timer *observ.Timer) *Result {
	bag := diag.NewBag(opts.MaxDiagnostics)
	res := &Result{FileSet: fs, File: file, Bag: bag}
	path := file.Path

	emit(opts.Progress, path, StageLex, StatusWorking, nil, 0)
	lexIdx := timer.Begin("lex")
	_, lexSpan := trace.Start(ctx, trace.ScopePass, "lex")
	lexOpts := opts.lexerOptions()
	lexOpts.Reporter = diag.BagReporter{Bag: bag}
	tokens, lexErrs := lexer.New(file, lexOpts).Collect()
	lexSpan.WithExtra("tokens", strconv.Itoa(len(tokens))).End(path)
	timer.End(lexIdx, fmt.Sprintf("%d tokens", len(tokens)))
	if lexErrs != nil {
		res.Err = lexErrs
		res.Timing = timer.Report()
		return res
	}

	emit(opts.Progress, path, StagePreprocess, StatusWorking, nil, 0)
	ppIdx := timer.Begin("preprocess")
	_, ppSpan := trace.Start(ctx, trace.ScopePass, "preprocess")
	ppOpts := opts.preprocessOptions(fs, file.Path)
	ppOpts.Tracer = trace.FromContext(ctx)
	ppOpts.TraceParent = ppSpan.ID()
	pp := preprocess.New(tokens, ppOpts)
	out, err := pp.Preprocess()
	res.Misses = pp.Misses()
	ppSpan.WithExtra("tokens", strconv.Itoa(len(out))).End(path)
	timer.End(ppIdx, fmt.Sprintf("%d tokens", len(out)))
	res.Timing = timer.Report()

	if err != nil {
		res.Err = err
		var pe *preprocess.Error
		if errors.As(err, &pe) {
			pe.Report(diag.BagReporter{Bag: bag})
		} else {
			bag.Add(diag.NewError(diag.PreInfo, source.Span{File: file.ID}, err.Error()))
		}
		return res
	}
	res.Tokens = out
	return res
}

// Collect is a convenience wrapper returning only the resolved tokens or
// the first failure.
func Collect(ctx context.Context, path string, opts Options) ([]token.Token, error) {
	res, err := Preprocess(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Tokens, nil
}
