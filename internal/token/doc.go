// Package token defines the lexical token model of the stck language.
// Invariants:
//   - Kind is a closed set: Str, Int, Bool, Word, Macro, Include, Proc, Do, End.
//   - The payload matches the kind: Text for Str/Word, Int for Int, Bool for Bool,
//     nothing for keywords.
//   - Span points at the token's own bytes in its file; quotes are part of a Str span.
//   - Word is the fallback for any atom that is not numeric, boolean or a keyword.
package token
