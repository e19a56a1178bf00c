package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"stck/internal/project"
	"stck/internal/source"
	"stck/internal/token"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 2

// DiskCache хранит разрешённые потоки токенов на диске, ключ - хеш
// корневого файла и опций запуска.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores a resolved token stream and the files it came from.
type DiskPayload struct {
	Schema uint16

	// Files in FileSet order; token spans refer to these indices.
	FilePaths  []string
	FileHashes []project.Digest
	// Include candidates that were checked and missing. If one appears,
	// an include may now resolve to a different file.
	Missing []string

	Tokens []CachedToken
}

// CachedToken is the serialized form of token.Token.
type CachedToken struct {
	Kind  uint8
	File  uint32
	Start uint32
	End   uint32
	Text  string `msgpack:",omitempty"`
	Int   int64  `msgpack:",omitempty"`
	Bool  bool   `msgpack:",omitempty"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "tokens", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close() //nolint:errcheck

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "tokens"))
}

// Store records a successful run.
func (c *DiskCache) Store(key project.Digest, fs *source.FileSet, tokens []token.Token, missing []string) error {
	payload := &DiskPayload{
		Schema:     diskCacheSchemaVersion,
		FilePaths:  make([]string, 0, fs.Len()),
		FileHashes: make([]project.Digest, 0, fs.Len()),
		Missing:    missing,
		Tokens:     make([]CachedToken, 0, len(tokens)),
	}
	for i := 0; i < fs.Len(); i++ {
		f := fs.Get(source.FileID(i)) // #nosec G115 -- bounded by fs.Len
		if f.Flags&source.FileVirtual != 0 {
			return fmt.Errorf("cannot cache virtual file %s", f.Path)
		}
		payload.FilePaths = append(payload.FilePaths, f.Path)
		payload.FileHashes = append(payload.FileHashes, f.Hash)
	}
	for _, tok := range tokens {
		payload.Tokens = append(payload.Tokens, CachedToken{
			Kind:  uint8(tok.Kind),
			File:  uint32(tok.Span.File),
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Text:  tok.Text,
			Int:   tok.Int,
			Bool:  tok.Bool,
		})
	}
	return c.Put(key, payload)
}

// Restore rebuilds a cached run. Every recorded file is reloaded in the
// original order and must still have the recorded hash, and every recorded
// missing include candidate must still be absent.
func (c *DiskCache) Restore(key project.Digest, opts Options) (*source.FileSet, []token.Token, bool) {
	var payload DiskPayload
	ok, err := c.Get(key, &payload)
	if err != nil || !ok || len(payload.FilePaths) != len(payload.FileHashes) {
		return nil, nil, false
	}

	for _, path := range payload.Missing {
		if _, err := os.Stat(path); err == nil {
			return nil, nil, false
		}
	}

	fs := opts.newFileSet()
	for i, path := range payload.FilePaths {
		id, err := fs.Load(path)
		if err != nil || fs.Get(id).Hash != payload.FileHashes[i] {
			return nil, nil, false
		}
	}

	tokens := make([]token.Token, 0, len(payload.Tokens))
	for _, ct := range payload.Tokens {
		kind := token.Kind(ct.Kind)
		// в разрешённом потоке директив не бывает
		if !kind.IsValid() || kind.IsDirective() || int(ct.File) >= fs.Len() {
			return nil, nil, false
		}
		tokens = append(tokens, token.Token{
			Kind: kind,
			Span: source.Span{File: source.FileID(ct.File), Start: ct.Start, End: ct.End},
			Text: ct.Text,
			Int:  ct.Int,
			Bool: ct.Bool,
		})
	}
	return fs, tokens, true
}

// cacheKey combines the root file hash with every option that changes the
// resolved stream.
func cacheKey(root *source.File, opts Options) project.Digest {
	path := root.Path
	if abs, err := source.AbsolutePath(path); err == nil {
		path = abs
	}
	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteByte(0)
	sb.WriteString(strings.Join(opts.IncludeDirs, "\x00"))
	sb.WriteByte(0)
	sb.WriteString(opts.Prelude)
	sb.WriteByte(0)
	sb.WriteString(strconv.Itoa(opts.MaxDepth))
	sb.WriteString(strconv.FormatBool(opts.LineComments))
	sb.WriteString(strconv.FormatBool(opts.TabIsSpace))
	sb.WriteString(strconv.FormatBool(opts.NFC))
	return project.Combine(project.Digest(root.Hash), project.Digest(sha256.Sum256([]byte(sb.String()))))
}
