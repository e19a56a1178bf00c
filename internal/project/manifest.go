package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"stck/internal/diag"
)

// ManifestName is the project file looked up from the input directory.
const ManifestName = "stck.toml"

// Manifest is a decoded stck.toml with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of stck.toml.
type Config struct {
	Package    PackageConfig    `toml:"package"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Lexer      LexerConfig      `toml:"lexer"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type PreprocessConfig struct {
	IncludeDirs []string `toml:"include_dirs"`
	MaxDepth    int      `toml:"max_depth"`
	Prelude     string   `toml:"prelude"`
}

type LexerConfig struct {
	LineComments bool `toml:"line_comments"`
	TabIsSpace   bool `toml:"tab_is_space"`
}

// ManifestError is a stck.toml that could not be used.
type ManifestError struct {
	Path string
	Code diag.Code
	Msg  string
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// FindManifest walks up from startDir to locate stck.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing stck.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// LoadManifest finds and decodes the manifest governing startDir.
// ok is false when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// ReadManifest decodes and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, &ManifestError{Path: path, Code: diag.ProjInvalidToml, Msg: "failed to parse TOML", Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &ManifestError{Path: path, Code: diag.ProjInvalidToml, Msg: "unknown keys: " + strings.Join(keys, ", ")}
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, &ManifestError{Path: path, Code: diag.ProjInvalidToml, Msg: "missing [package].name"}
	}
	if cfg.Preprocess.MaxDepth < 0 {
		return nil, &ManifestError{Path: path, Code: diag.ProjInvalidToml, Msg: "[preprocess].max_depth must not be negative"}
	}

	m := &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}
	for _, dir := range m.IncludeDirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, &ManifestError{Path: path, Code: diag.ProjBadIncludeDir, Msg: "include directory does not exist: " + dir}
		}
	}
	return m, nil
}

// IncludeDirs returns [preprocess].include_dirs resolved against the project root.
func (m *Manifest) IncludeDirs() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Config.Preprocess.IncludeDirs))
	for _, dir := range m.Config.Preprocess.IncludeDirs {
		out = append(out, m.resolve(dir))
	}
	return out
}

// Prelude returns the prelude path resolved against the project root, or "".
func (m *Manifest) Prelude() string {
	if m == nil || strings.TrimSpace(m.Config.Preprocess.Prelude) == "" {
		return ""
	}
	return m.resolve(m.Config.Preprocess.Prelude)
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}
