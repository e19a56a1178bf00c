package lsp

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/driver"
	"stck/internal/project"
	"stck/internal/version"
)

// ServerName is reported to clients during initialize.
const ServerName = "stck"

// Handler serves stck documents over LSP. Every open document is lexed and
// preprocessed on open, change and save; the resulting diagnostics are
// published for the document and for any included file they point into.
type Handler struct {
	mu        sync.Mutex
	docs      map[string]*document
	published map[string]map[string]struct{}
	base      driver.Options
	log       commonlog.Logger
}

// NewHandler returns a handler. base is layered over the stck.toml found
// next to each document.
func NewHandler(base driver.Options) *Handler {
	return &Handler{
		docs:      make(map[string]*document),
		published: make(map[string]map[string]struct{}),
		base:      base,
		log:       commonlog.GetLogger("stck.lsp"),
	}
}

// Protocol wires the handler into a glsp protocol table.
func (h *Handler) Protocol() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		SetTrace:                       h.SetTrace,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentDidSave:            h.TextDocumentDidSave,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
		TextDocumentFoldingRange:       h.TextDocumentFoldingRange,
		TextDocumentDefinition:         h.TextDocumentDefinition,
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.log.Info("initialize")
	v := version.Version
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindIncremental),
				Save:      &protocol.SaveOptions{IncludeText: ptrBool(true)},
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     semanticTokenTypes,
					TokenModifiers: semanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
			FoldingRangeProvider: ptrBool(true),
			DefinitionProvider:   ptrBool(true),
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &v,
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	h.log.Info("shutdown")
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs = make(map[string]*document)
	h.published = make(map[string]map[string]struct{})
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	doc := &document{
		uri:     uri,
		path:    uriToPath(uri),
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
	}
	h.mu.Lock()
	h.docs[uri] = doc
	h.mu.Unlock()
	h.refresh(ctx, doc)
	return nil
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	h.mu.Lock()
	doc, ok := h.docs[uri]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	h.mu.Unlock()
	h.refresh(ctx, doc)
	return nil
}

func (h *Handler) TextDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	h.mu.Lock()
	doc, ok := h.docs[uri]
	if ok && params.Text != nil {
		doc.text = *params.Text
	}
	h.mu.Unlock()
	if ok {
		h.refresh(ctx, doc)
	}
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	h.mu.Lock()
	delete(h.docs, uri)
	h.mu.Unlock()
	h.publish(ctx, uri, nil)
	return nil
}

// refresh re-analyzes doc and publishes the outcome.
func (h *Handler) refresh(ctx *glsp.Context, doc *document) {
	h.mu.Lock()
	text, path := doc.text, doc.path
	h.mu.Unlock()

	opts := h.optionsFor(path)
	a := analyze(context.Background(), path, text, opts)
	h.log.Debugf("analyzed %s: %d tokens, %d diagnostics", path, len(a.tokens), a.result.Bag.Len())

	h.mu.Lock()
	if doc.text == text {
		doc.analysis = a
	}
	h.mu.Unlock()
	h.publish(ctx, doc.uri, groupDiagnostics(a.result, doc.uri))
}

func (h *Handler) optionsFor(path string) driver.Options {
	opts := h.base
	m, ok, err := project.LoadManifest(filepath.Dir(path))
	if err != nil {
		h.log.Warningf("%v", err)
		return opts
	}
	if ok {
		opts = opts.WithManifest(m)
	}
	return opts
}

// publish sends the diagnostics produced for owner and clears files that
// owner published to last time but not now.
func (h *Handler) publish(ctx *glsp.Context, owner string, grouped map[string][]protocol.Diagnostic) {
	h.mu.Lock()
	prev := h.published[owner]
	next := make(map[string]struct{}, len(grouped))
	for uri := range grouped {
		next[uri] = struct{}{}
	}
	if len(next) == 0 {
		delete(h.published, owner)
	} else {
		h.published[owner] = next
	}
	h.mu.Unlock()

	for _, uri := range sortedKeys(grouped) {
		notifyDiagnostics(ctx, uri, grouped[uri])
	}
	for uri := range prev {
		if _, ok := next[uri]; !ok {
			notifyDiagnostics(ctx, uri, nil)
		}
	}
	if _, ok := grouped[owner]; !ok {
		if _, had := prev[owner]; !had {
			notifyDiagnostics(ctx, owner, nil)
		}
	}
}


func notifyDiagnostics(ctx *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
