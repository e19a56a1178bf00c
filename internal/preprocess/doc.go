// Package preprocess resolves the compile-time directives of a lexed stck
// program: macro definitions, macro uses and file includes.
//
// The output is a flat token stream with no Macro or Include tokens left.
// One Preprocess call is one run: the macro table, the set of included
// files, the active include chain and the macro expansion stack all live in
// a run value and are dropped when the call returns, so independent runs
// never observe each other.
//
// Unlike the lexer, the preprocessor stops at the first error and returns
// it as *Error.
package preprocess
