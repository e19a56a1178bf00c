// Package diag defines the diagnostic model shared by the lexer, the
// preprocessor and every consumer (CLI, LSP, tests).
//
// Diagnostic is the central record: Severity, a stable numeric Code, a short
// Message, the Primary span and optional Notes that add context such as the
// include chain or the first definition of a macro.
//
// Producers emit through a Reporter (usually BagReporter, which stores into a
// Bag) or build Diagnostic values directly from their error types. Package diag
// performs no IO and no formatting; rendering lives in internal/diagfmt.
package diag
