package preprocess_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stck/internal/diag"
	"stck/internal/lexer"
	"stck/internal/preprocess"
	"stck/internal/source"
	"stck/internal/token"
	"stck/internal/trace"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

func lexFile(t *testing.T, fileSet *source.FileSet, path string, opts lexer.Options) []token.Token {
	t.Helper()
	id, err := fileSet.Load(path)
	require.NoError(t, err)
	toks, lexErrs := lexer.New(fileSet.Get(id), opts).Collect()
	require.Empty(t, lexErrs)
	return toks
}

func runFile(t *testing.T, dir, root string, opts preprocess.Options) ([]token.Token, error) {
	t.Helper()
	fileSet := source.NewFileSet()
	toks := lexFile(t, fileSet, filepath.Join(dir, root), opts.Lexer)
	opts.FileSet = fileSet
	return preprocess.New(toks, opts).Preprocess()
}

func runSource(t *testing.T, src string, opts preprocess.Options) ([]token.Token, error) {
	t.Helper()
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual("mem.stck", []byte(src))
	toks, lexErrs := lexer.New(fileSet.Get(id), opts.Lexer).Collect()
	require.Empty(t, lexErrs)
	opts.FileSet = fileSet
	return preprocess.New(toks, opts).Preprocess()
}

func lexemes(toks []token.Token) string {
	parts := make([]string, 0, len(toks))
	for _, tok := range toks {
		parts = append(parts, tok.Lexeme())
	}
	return strings.Join(parts, " ")
}

func requireCode(t *testing.T, err error, code diag.Code) *preprocess.Error {
	t.Helper()
	require.Error(t, err)
	var pe *preprocess.Error
	require.True(t, errors.As(err, &pe), "expected *preprocess.Error, got %T", err)
	require.Equal(t, code, pe.Code, "got %s", pe.Error())
	return pe
}

func baseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

func TestIdentityWithoutDirectives(t *testing.T) {
	src := `proc main do 1 2 + "s" true false dup end`
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual("id.stck", []byte(src))
	toks, lexErrs := lexer.New(fileSet.Get(id), lexer.Options{}).Collect()
	require.Empty(t, lexErrs)

	out, err := preprocess.New(toks, preprocess.Options{FileSet: fileSet}).Preprocess()
	require.NoError(t, err)
	assert.Equal(t, toks, out)
}

func TestEmptyInput(t *testing.T) {
	out, err := preprocess.New(nil, preprocess.Options{}).Preprocess()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMacroExpansion(t *testing.T) {
	out, err := runSource(t, `macro "inc" 1 + end 5 inc inc`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "5 1 + 1 +", lexemes(out))

	// повторный прогон по результату ничего не меняет
	again, err := preprocess.New(out, preprocess.Options{}).Preprocess()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestMacroBodyKeepsDefinitionSpans(t *testing.T) {
	src := `macro "two" 2 end two`
	out, err := runSource(t, src, preprocess.Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2", src[out[0].Span.Start:out[0].Span.End])
}

func TestMacroBodyWithBlocks(t *testing.T) {
	out, err := runSource(t, `macro "countdown" while dup 0 > do 1 - end end countdown`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "while dup 0 > do 1 - end", lexemes(out))

	out, err = runSource(t, `macro "defmain" proc main do 1 end end defmain 2`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "proc main do 1 end 2", lexemes(out))

	out, err = runSource(t, `macro "loop" proc main do while dup do 1 - end end end loop`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "proc main do while dup do 1 - end end", lexemes(out))

	// proc без do всё равно занимает один end
	out, err = runSource(t, `macro "p" proc q end p`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "proc q end", lexemes(out))

	_, err = runSource(t, `macro "defmain" proc main do 1 end`, preprocess.Options{})
	requireCode(t, err, diag.PreUnclosedMacro)
}

func TestNestedMacroDefinition(t *testing.T) {
	out, err := runSource(t, `macro "outer" macro "inner" 9 end inner end outer inner`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "9 9", lexemes(out))
}

func TestMacroForwardReference(t *testing.T) {
	out, err := runSource(t, `macro "a" b end macro "b" 2 end a`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "2", lexemes(out))
}

func TestUnknownWordsPassThrough(t *testing.T) {
	out, err := runSource(t, `foo bar "macro"`, preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, `foo bar "macro"`, lexemes(out))
}

func TestDuplicateMacro(t *testing.T) {
	src := `macro "x" 1 end macro "x" 2 end`
	_, err := runSource(t, src, preprocess.Options{})
	pe := requireCode(t, err, diag.PreDuplicateMacro)
	assert.Equal(t, "x", pe.Name)
	assert.Equal(t, uint32(strings.LastIndex(src, `"x"`)), pe.Span.Start)
	require.Len(t, pe.Notes, 1)
	assert.Equal(t, "first defined here", pe.Notes[0].Msg)
	assert.Equal(t, uint32(6), pe.Notes[0].Span.Start)
}

func TestRecursiveMacro(t *testing.T) {
	_, err := runSource(t, `macro "r" 1 r end r`, preprocess.Options{})
	pe := requireCode(t, err, diag.PreCircularInclude)
	assert.Equal(t, []string{"r", "r"}, pe.Chain)

	_, err = runSource(t, `macro "a" b end macro "b" a end a`, preprocess.Options{})
	pe = requireCode(t, err, diag.PreCircularInclude)
	assert.Equal(t, "a", pe.Name)
	assert.Equal(t, []string{"a", "b", "a"}, pe.Chain)
	require.Len(t, pe.Notes, 3)
	assert.Equal(t, "first expansion of a", pe.Notes[0].Msg)
	assert.Equal(t, "a led to this expansion", pe.Notes[1].Msg)
	assert.Equal(t, "a expanded again here", pe.Notes[2].Msg)
	assert.Contains(t, pe.Error(), "a -> b -> a")
}

func TestInvalidToken(t *testing.T) {
	_, err := runSource(t, `macro foo 1 end`, preprocess.Options{})
	pe := requireCode(t, err, diag.PreInvalidToken)
	assert.Equal(t, token.Macro, pe.Directive)
	assert.Equal(t, token.Str, pe.Expected)
	assert.Equal(t, token.Word, pe.Got)
	assert.Equal(t, uint32(6), pe.Span.Start)

	_, err = runSource(t, `include 42`, preprocess.Options{})
	pe = requireCode(t, err, diag.PreInvalidToken)
	assert.Equal(t, token.Int, pe.Got)
	assert.Equal(t, "expected <str> after include, got <int>", pe.Message())
}

func TestDirectiveAtEndOfInput(t *testing.T) {
	_, err := runSource(t, `1 include`, preprocess.Options{})
	pe := requireCode(t, err, diag.PreUnexpectedEOF)
	assert.Equal(t, token.Include, pe.Directive)
	assert.Equal(t, uint32(2), pe.Span.Start)

	_, err = runSource(t, `macro`, preprocess.Options{})
	requireCode(t, err, diag.PreUnexpectedEOF)
}

func TestUnclosedMacro(t *testing.T) {
	_, err := runSource(t, `macro "m" do 1 end`, preprocess.Options{})
	pe := requireCode(t, err, diag.PreUnclosedMacro)
	assert.Equal(t, "m", pe.Name)
	assert.Equal(t, uint32(0), pe.Span.Start)
	require.Len(t, pe.Notes, 1)
	assert.Equal(t, "this block was never closed", pe.Notes[0].Msg)
}

func TestMacroDepthLimit(t *testing.T) {
	src := `macro "m1" m2 end macro "m2" m3 end macro "m3" m4 end macro "m4" 4 end m1`

	out, err := runSource(t, src, preprocess.Options{MaxDepth: 4})
	require.NoError(t, err)
	assert.Equal(t, "4", lexemes(out))

	_, err = runSource(t, src, preprocess.Options{MaxDepth: 3})
	pe := requireCode(t, err, diag.PreDepthLimit)
	assert.Equal(t, 3, pe.Limit)
}

func TestIncludeSplicesOnce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "a.stck" include "a" 1`,
		"a.stck":    `macro "two" 2 end 0`,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "0 1", lexemes(out))
}

func TestIncludeSharesMacros(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck":     `macro "one" 1 end include "lib/b" two`,
		"lib/b.stck":    `macro "two" one one + end`,
		"lib/none.stck": ``,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "1 1 +", lexemes(out))
}

func TestIncludedTokensKeepTheirFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck":  `include "sub/x"`,
		"sub/x.stck": "\n  42",
	})
	fileSet := source.NewFileSet()
	toks := lexFile(t, fileSet, filepath.Join(dir, "main.stck"), lexer.Options{})
	out, err := preprocess.New(toks, preprocess.Options{FileSet: fileSet}).Preprocess()
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := fileSet.Get(out[0].Span.File)
	require.NotNil(t, f)
	assert.Equal(t, "x.stck", filepath.Base(f.Path))
	assert.Equal(t, "42", fileSet.Text(out[0].Span))
}

func TestCircularInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "b"`,
		"b.stck":    `include "c"`,
		"c.stck":    `include "b"`,
	})
	_, err := runFile(t, dir, "main.stck", preprocess.Options{})
	pe := requireCode(t, err, diag.PreCircularInclude)
	assert.Equal(t, []string{"b.stck", "c.stck", "b.stck"}, baseNames(pe.Chain))
	assert.Len(t, pe.Notes, 2)
	assert.Contains(t, pe.Error(), "b.stck -> c.stck -> b.stck")
}

func TestSelfInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `1 include "main"`,
	})
	_, err := runFile(t, dir, "main.stck", preprocess.Options{})
	pe := requireCode(t, err, diag.PreCircularInclude)
	assert.Equal(t, []string{"main.stck", "main.stck"}, baseNames(pe.Chain))
}

func TestDiamondIncludeIsNotCircular(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck":  `include "left" include "right"`,
		"left.stck":  `include "base" 1`,
		"right.stck": `include "base" 2`,
		"base.stck":  `0`,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "0 1 2", lexemes(out))
}

func TestMissingInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "nope"`,
	})
	_, err := runFile(t, dir, "main.stck", preprocess.Options{})
	pe := requireCode(t, err, diag.PreFileError)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "nope", filepath.Base(pe.Path))
	assert.Equal(t, uint32(8), pe.Span.Start)
}

func TestIncludedFileLexErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "bad"`,
		"bad.stck":  `"" 99999999999999999999`,
	})
	fileSet := source.NewFileSet()
	toks := lexFile(t, fileSet, filepath.Join(dir, "main.stck"), lexer.Options{})
	_, err := preprocess.New(toks, preprocess.Options{FileSet: fileSet}).Preprocess()
	pe := requireCode(t, err, diag.PreLexError)

	require.Len(t, pe.Lex, 2)
	assert.Equal(t, diag.LexEmptyString, pe.Lex[0].Code)
	assert.Equal(t, diag.LexIntOverflow, pe.Lex[1].Code)
	bad := fileSet.Get(pe.Lex[0].Span.File)
	require.NotNil(t, bad)
	assert.Equal(t, "bad.stck", filepath.Base(bad.Path))
	assert.Len(t, pe.Diagnostics(), 3)
}

func TestIncludeDirectories(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app/main.stck": `include "std" 1`,
		"app/rel.stck":  `include "./std"`,
		"lib/std.stck":  `0`,
	})
	opts := preprocess.Options{IncludeDirs: []string{filepath.Join(dir, "lib")}}

	out, err := runFile(t, dir, "app/main.stck", opts)
	require.NoError(t, err)
	assert.Equal(t, "0 1", lexemes(out))

	// явный относительный путь не ищется в каталогах библиотек
	_, err = runFile(t, dir, "app/rel.stck", opts)
	requireCode(t, err, diag.PreFileError)
}

func TestIncludeRecordsMissedCandidates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app/main.stck": `include "std" include "std" 1`,
		"lib/std.stck":  `0`,
	})
	fileSet := source.NewFileSet()
	toks := lexFile(t, fileSet, filepath.Join(dir, "app/main.stck"), lexer.Options{})
	pp := preprocess.New(toks, preprocess.Options{
		FileSet:     fileSet,
		IncludeDirs: []string{filepath.Join(dir, "lib")},
	})
	out, err := pp.Preprocess()
	require.NoError(t, err)
	assert.Equal(t, "0 1", lexemes(out))

	misses := pp.Misses()
	require.Len(t, misses, 3)
	assert.Equal(t, []string{"app", "app", "lib"}, []string{
		filepath.Base(filepath.Dir(misses[0])),
		filepath.Base(filepath.Dir(misses[1])),
		filepath.Base(filepath.Dir(misses[2])),
	})
	assert.Equal(t, []string{"std", "std.stck", "std"}, baseNames(misses))
}

func TestIncludeInsideMacroResolvesFromDefinition(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck":       `include "lib/defs" use-helper use-helper`,
		"lib/defs.stck":   `macro "use-helper" include "helper" end`,
		"lib/helper.stck": `7`,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{})
	require.NoError(t, err)
	assert.Equal(t, "7", lexemes(out))
}

func TestIncludeDepthLimit(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "a"`,
		"a.stck":    `include "b"`,
		"b.stck":    `include "c"`,
		"c.stck":    `3`,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{MaxDepth: 3})
	require.NoError(t, err)
	assert.Equal(t, "3", lexemes(out))

	_, err = runFile(t, dir, "main.stck", preprocess.Options{MaxDepth: 2})
	requireCode(t, err, diag.PreDepthLimit)
}

func TestPrelude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"prelude.stck": `macro "two" 2 end`,
		"main.stck":    `include "prelude" two`,
	})
	out, err := runFile(t, dir, "main.stck", preprocess.Options{Prelude: filepath.Join(dir, "prelude.stck")})
	require.NoError(t, err)
	assert.Equal(t, "2", lexemes(out))

	_, err = runFile(t, dir, "main.stck", preprocess.Options{Prelude: filepath.Join(dir, "missing.stck")})
	requireCode(t, err, diag.PreFileError)
}

func TestRunsAreIndependent(t *testing.T) {
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual("twice.stck", []byte(`macro "m" 1 end m`))
	toks, lexErrs := lexer.New(fileSet.Get(id), lexer.Options{}).Collect()
	require.Empty(t, lexErrs)

	p := preprocess.New(toks, preprocess.Options{FileSet: fileSet})
	first, err := p.Preprocess()
	require.NoError(t, err)
	second, err := p.Preprocess()
	require.NoError(t, err, "a second run must not see the first run's macros")
	assert.Equal(t, first, second)
}

func TestLexerOptionsApplyToIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": "include \"c\" // tail\n",
		"c.stck":    "1\t2 // one\n",
	})
	opts := preprocess.Options{Lexer: lexer.Options{LineComments: true, TabIsSpace: true}}
	out, err := runFile(t, dir, "main.stck", opts)
	require.NoError(t, err)
	assert.Equal(t, "1 2", lexemes(out))
}

func TestTraceEvents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.stck": `include "a" m`,
		"a.stck":    `macro "m" 1 end`,
	})
	var buf bytes.Buffer
	tracer := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	_, err := runFile(t, dir, "main.stck", preprocess.Options{Tracer: tracer})
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "include")
	assert.Contains(t, got, "macro.define")
	assert.Contains(t, got, "macro.expand")
}
