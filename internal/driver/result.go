package driver

import (
	"stck/internal/diag"
	"stck/internal/observ"
	"stck/internal/source"
	"stck/internal/token"
)

// Result is the outcome of one file run.
type Result struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	// Tokens is nil when the run failed.
	Tokens []token.Token
	Bag    *diag.Bag
	// Err is the preprocessing error, if any.
	Err    error
	Timing observ.Report
	// Cached is set when Tokens came from the disk cache.
	Cached bool
	// Misses are include candidates that did not exist during the run.
	Misses []string
}

// Failed reports whether the run produced any error diagnostics.
func (r *Result) Failed() bool {
	return r == nil || r.Bag == nil || r.Bag.HasErrors()
}
