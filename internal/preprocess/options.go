package preprocess

import (
	"stck/internal/lexer"
	"stck/internal/source"
	"stck/internal/trace"
)

const (
	// DefaultMaxDepth bounds include nesting plus macro expansion nesting.
	DefaultMaxDepth = 256
	// SourceExt is appended to include paths written without an extension.
	SourceExt = ".stck"
)

// Options configures a Preprocessor.
type Options struct {
	// FileSet owns the root tokens' files and receives every included file.
	// When nil a private set is created.
	FileSet *source.FileSet
	// Root is the path of the file the root tokens were lexed from. When
	// empty it is taken from the first token's file in FileSet.
	Root string
	// IncludeDirs are searched, in order, for include paths that are
	// neither absolute nor explicitly relative ("./", "../").
	IncludeDirs []string
	// Prelude is included before the root tokens when set.
	Prelude string
	// MaxDepth <= 0 means DefaultMaxDepth.
	MaxDepth int
	// Lexer is used for every included file.
	Lexer lexer.Options
	// Tracer receives include and macro events. May be nil.
	Tracer trace.Tracer
	// TraceParent is the parent span id for emitted events.
	TraceParent uint64
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
