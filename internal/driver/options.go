package driver

import (
	"slices"

	"stck/internal/lexer"
	"stck/internal/preprocess"
	"stck/internal/project"
	"stck/internal/source"
)

// Options configures one pipeline run.
type Options struct {
	MaxDiagnostics int
	// BaseDir is used for relative path rendering.
	BaseDir string
	// NFC normalizes loaded files to Unicode NFC.
	NFC bool

	LineComments bool
	TabIsSpace   bool

	IncludeDirs []string
	Prelude     string
	MaxDepth    int

	// Cache stores resolved token streams between runs. May be nil.
	Cache *DiskCache
	// Progress receives per-file stage events. May be nil.
	Progress ProgressSink
}

func (o Options) lexerOptions() lexer.Options {
	return lexer.Options{
		LineComments: o.LineComments,
		TabIsSpace:   o.TabIsSpace,
	}
}

func (o Options) newFileSet() *source.FileSet {
	fs := source.NewFileSetWithBase(o.BaseDir)
	fs.SetLoadOptions(source.LoadOptions{NFC: o.NFC})
	return fs
}

func (o Options) preprocessOptions(fs *source.FileSet, root string) preprocess.Options {
	return preprocess.Options{
		FileSet:     fs,
		Root:        root,
		IncludeDirs: o.IncludeDirs,
		Prelude:     o.Prelude,
		MaxDepth:    o.MaxDepth,
		Lexer:       o.lexerOptions(),
	}
}

// WithManifest layers stck.toml settings under o. Values already set in o
// win; include directories from the manifest are searched after o's.
func (o Options) WithManifest(m *project.Manifest) Options {
	if m == nil {
		return o
	}
	cfg := m.Config
	o.IncludeDirs = append(slices.Clone(o.IncludeDirs), m.IncludeDirs()...)
	if o.Prelude == "" {
		o.Prelude = m.Prelude()
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = cfg.Preprocess.MaxDepth
	}
	o.LineComments = o.LineComments || cfg.Lexer.LineComments
	o.TabIsSpace = o.TabIsSpace || cfg.Lexer.TabIsSpace
	if o.BaseDir == "" {
		o.BaseDir = m.Root
	}
	return o
}
