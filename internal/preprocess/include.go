package preprocess

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/token"
	"stck/internal/trace"
)

// include handles `include "<path>"`.
func (r *run) include(kw token.Token, c *tokenCursor, dir string, out *[]token.Token) error {
	lit, err := r.expectStr(kw, c)
	if err != nil {
		return err
	}

	path, tried := r.resolve(lit.Text, dir)
	if path == "" {
		return &Error{
			Code: diag.PreFileError,
			Span: lit.Span,
			Path: tried[0],
			Err:  fs.ErrNotExist,
		}
	}
	return r.includeFile(path, lit.Span, true, out)
}

// includePrelude pulls in the prelude as if the root file started with an
// include of it.
func (r *run) includePrelude(path string, out *[]token.Token) error {
	abs := canonical(path)
	if !isFile(abs) {
		return &Error{Code: diag.PreFileError, Path: abs, Err: fs.ErrNotExist}
	}
	return r.includeFile(abs, source.Span{}, false, out)
}

func (r *run) includeFile(path string, site source.Span, hasSite bool, out *[]token.Token) error {
	if r.included[path] {
		for i, frame := range r.chain {
			if frame.path == path {
				return r.circularIncludeError(i, path, site)
			}
		}
		trace.Point(r.tracer, trace.ScopeFile, "include.skip", path, r.parent)
		return nil
	}
	// помечаем до рекурсии: цикл виден как "уже включён"
	r.included[path] = true

	if err := r.enter(site); err != nil {
		return err
	}
	defer r.leave()

	span := trace.Begin(r.tracer, trace.ScopeFile, "include", r.parent)
	defer span.End(path)

	id, err := r.fs.Load(path)
	if err != nil {
		return &Error{Code: diag.PreFileError, Span: site, Path: path, Err: err}
	}
	toks, lexErrs := lexer.New(r.fs.Get(id), r.opts.Lexer).Collect()
	if lexErrs != nil {
		return &Error{Code: diag.PreLexError, Span: site, Path: path, Lex: lexErrs}
	}

	r.chain = append(r.chain, includeFrame{path: path, site: site, hasSite: hasSite})
	defer func() { r.chain = r.chain[:len(r.chain)-1] }()

	return r.process(toks, filepath.Dir(path), out)
}

func (r *run) circularIncludeError(first int, path string, site source.Span) *Error {
	chain := make([]string, 0, len(r.chain)-first+1)
	var notes []diag.Note
	for i := first; i < len(r.chain); i++ {
		frame := r.chain[i]
		chain = append(chain, frame.path)
		if frame.hasSite {
			notes = append(notes, diag.Note{
				Span: frame.site,
				Msg:  fmt.Sprintf("%s included from here", filepath.Base(frame.path)),
			})
		}
	}
	chain = append(chain, path)
	return &Error{
		Code:  diag.PreCircularInclude,
		Span:  site,
		Path:  path,
		Chain: chain,
		Notes: notes,
	}
}

// resolve maps an include literal to a canonical existing path. It returns
// "" and the candidates tried when nothing exists.
//
// Order: absolute as written; relative to dir; then each include directory
// unless the literal starts with "./" or "../". A literal with no extension
// also tries the same candidate with SourceExt appended.
func (r *run) resolve(lit, dir string) (string, []string) {
	native := filepath.FromSlash(lit)

	var bases []string
	switch {
	case filepath.IsAbs(native):
		bases = []string{native}
	default:
		bases = []string{filepath.Join(dir, native)}
		if !isExplicitRelative(lit) {
			for _, inc := range r.opts.IncludeDirs {
				bases = append(bases, filepath.Join(inc, native))
			}
		}
	}

	tried := make([]string, 0, 2*len(bases))
	for _, base := range bases {
		for _, cand := range candidates(base) {
			abs := canonical(cand)
			tried = append(tried, abs)
			if isFile(abs) {
				r.noteMisses(tried[:len(tried)-1])
				return abs, tried
			}
		}
	}
	return "", tried
}

func (r *run) noteMisses(paths []string) {
	for _, p := range paths {
		if !r.missed[p] {
			r.missed[p] = true
			r.misses = append(r.misses, p)
		}
	}
}

func candidates(base string) []string {
	if filepath.Ext(base) != "" {
		return []string{base}
	}
	return []string{base, base + SourceExt}
}

func isExplicitRelative(lit string) bool {
	return strings.HasPrefix(lit, "./") || strings.HasPrefix(lit, "../")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// canonical returns the absolute, cleaned, symlink-resolved form of path.
// Paths that do not exist are only made absolute.
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
