// Package trace provides a tracing subsystem for the stck front-end.
//
// The trace package records pipeline phases (load, lex, preprocess) and
// per-file include events to help diagnose slow or runaway preprocessing.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	stck preprocess --trace=- --trace-level=detail main.stck
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only driver-level failures
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-file events (includes)
//   - LevelDebug: Everything including macro definitions and expansions
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "lex", parentID)
//	defer span.End("")
package trace
