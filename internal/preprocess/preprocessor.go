package preprocess

import (
	"path/filepath"

	"stck/internal/source"
	"stck/internal/token"
	"stck/internal/trace"
)

// Preprocessor holds the root token stream of one file.
type Preprocessor struct {
	tokens []token.Token
	opts   Options
	misses []string
}

func New(tokens []token.Token, opts Options) *Preprocessor {
	if opts.FileSet == nil {
		opts.FileSet = source.NewFileSet()
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Preprocessor{tokens: tokens, opts: opts}
}

// Misses returns the include candidates the last Preprocess call checked
// and found missing before settling on an existing file. A file later
// created at one of these paths would change how that include resolves.
func (p *Preprocessor) Misses() []string {
	return p.misses
}

// FileSet returns the set included files were loaded into.
func (p *Preprocessor) FileSet() *source.FileSet {
	return p.opts.FileSet
}

// Preprocess runs all directives and returns the resolved stream.
// Each call is an independent run with fresh tables.
func (p *Preprocessor) Preprocess() ([]token.Token, error) {
	r := newRun(p.opts)
	defer func() { p.misses = r.misses }()

	root := p.rootPath()
	dir := "."
	if root != "" {
		r.included[root] = true
		r.chain = append(r.chain, includeFrame{path: root})
		dir = filepath.Dir(root)
	}

	out := make([]token.Token, 0, len(p.tokens))
	if p.opts.Prelude != "" {
		if err := r.includePrelude(p.opts.Prelude, &out); err != nil {
			return nil, err
		}
	}
	if err := r.process(p.tokens, dir, &out); err != nil {
		return nil, err
	}

	trace.Point(r.tracer, trace.ScopeFile, "preprocess.done", root, r.parent)
	return out, nil
}

func (p *Preprocessor) rootPath() string {
	if p.opts.Root != "" {
		return canonical(p.opts.Root)
	}
	if len(p.tokens) == 0 {
		return ""
	}
	f := p.opts.FileSet.Get(p.tokens[0].Span.File)
	if f == nil {
		return ""
	}
	return canonical(f.Path)
}

// run is the state of a single Preprocess call.
type run struct {
	fs     *source.FileSet
	opts   Options
	tracer trace.Tracer
	parent uint64

	macros   map[string]*macroDef
	included map[string]bool
	// активная цепочка include, от корня к текущему файлу
	chain []includeFrame
	// активные раскрытия макросов, от внешнего к внутреннему
	expanding []expansion
	depth     int

	misses []string
	missed map[string]bool
}

type includeFrame struct {
	path    string
	site    source.Span
	hasSite bool
}

type expansion struct {
	name string
	site source.Span
}

func newRun(opts Options) *run {
	return &run{
		fs:       opts.FileSet,
		opts:     opts,
		tracer:   opts.Tracer,
		parent:   opts.TraceParent,
		macros:   make(map[string]*macroDef),
		included: make(map[string]bool),
		missed:   make(map[string]bool),
	}
}

// process walks toks, appending resolved tokens to out. dir is the directory
// relative includes in toks are resolved against.
func (r *run) process(toks []token.Token, dir string, out *[]token.Token) error {
	c := tokenCursor{toks: toks}
	for !c.eof() {
		tok := c.next()
		var err error
		switch tok.Kind {
		case token.Macro:
			err = r.defineMacro(tok, &c, dir)
		case token.Include:
			err = r.include(tok, &c, dir, out)
		case token.Word:
			if def, ok := r.macros[tok.Text]; ok {
				err = r.expand(def, tok, out)
			} else {
				*out = append(*out, tok)
			}
		default:
			*out = append(*out, tok)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// enter reserves one nesting level or reports DepthLimit at site.
func (r *run) enter(site source.Span) error {
	if r.depth >= r.opts.maxDepth() {
		return depthLimitError(site, r.opts.maxDepth())
	}
	r.depth++
	return nil
}

func (r *run) leave() { r.depth-- }

// expectStr reads the Str operand of a directive.
func (r *run) expectStr(directive token.Token, c *tokenCursor) (token.Token, error) {
	if c.eof() {
		return token.Token{}, unexpectedEOFError(directive)
	}
	operand := c.next()
	if operand.Kind != token.Str {
		return token.Token{}, invalidTokenError(directive, operand)
	}
	return operand, nil
}

// tokenCursor is an explicit read position over a token slice.
type tokenCursor struct {
	toks []token.Token
	pos  int
}

func (c *tokenCursor) eof() bool { return c.pos >= len(c.toks) }

func (c *tokenCursor) next() token.Token {
	tok := c.toks[c.pos]
	c.pos++
	return tok
}
