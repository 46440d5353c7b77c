// Package trace records what the matcher and the scenario driver are doing.
//
// Tracing is off unless a tracer is configured:
//
//	typematch check --trace=- --trace-level=detail cases.toml
//
// Implementations:
//
//   - Nop: no-op tracer used when tracing is disabled
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Scopes, coarse to fine:
//
//   - ScopeDriver: CLI commands and file loading
//   - ScopeCase: one scenario case
//   - ScopeMatch: one top-level match invocation
//   - ScopeRule: individual matcher rules (debug only)
//
// A level admits every scope up to its own granularity: phase shows driver
// and case events, detail adds match spans, debug adds rule points.
//
//	span := trace.Begin(t, trace.ScopeMatch, "match", parent)
//	defer span.End("")
package trace
