package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stck/internal/diag"
	"stck/internal/preprocess"
	"stck/internal/source"
	"stck/internal/trace"
)

// ListSourceFiles возвращает отсортированный список всех *.stck файлов в директории
func ListSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, preprocess.SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ExpandInputs turns command line arguments into a file list. Directories
// are walked for source files, plain files are kept as given.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		files, err := ListSourceFiles(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// PreprocessFiles runs Preprocess over every path in parallel. Results keep
// the input order. Files that cannot be read produce a Result carrying an
// IOLoadFileError diagnostic instead of aborting the batch.
func PreprocessFiles(ctx context.Context, paths []string, opts Options, jobs int) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range paths {
		emit(opts.Progress, path, StageLoad, StatusQueued, nil, 0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			start := time.Now()
			res, err := Preprocess(trace.WithFile(gctx, path), path, opts)
			if err != nil {
				res = loadFailure(path, opts, err)
			}
			results[i] = res

			stage, status := StagePreprocess, StatusDone
			if res.Failed() {
				status = StatusError
				if err != nil {
					stage = StageLoad
				}
			}
			emit(opts.Progress, path, stage, status, res.Err, time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadFailure(path string, opts Options, err error) *Result {
	bag := diag.NewBag(opts.MaxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, err.Error()))
	return &Result{
		Path:    path,
		FileSet: opts.newFileSet(),
		Bag:     bag,
		Err:     err,
	}
}
