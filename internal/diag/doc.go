// Package diag defines the diagnostic model shared by the matcher and the
// scenario driver.
//
// A Diagnostic carries a Severity, a stable numeric Code, a short Message,
// the Subject it is about (a scenario case, a declaration file) and ordered
// key/value Notes such as "expected" and "actual". Producers emit through a
// Reporter; BagReporter collects into a bounded Bag and DedupReporter drops
// repeats. Rendering lives in internal/diagfmt; this package does no IO.
//
// Code ranges:
//
//   - 1000–1999 LOAD: scenario files, notation, declarations
//   - 3000–3999 CASE: a case whose outcome differs from its expectation
//   - 4000–4999 TM: matcher mismatch kinds
package diag
