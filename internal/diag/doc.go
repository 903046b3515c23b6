// Package diag defines the diagnostic model shared by the script parser,
// the ownership checker and the CLI.
//
// Diagnostic is the central record: severity, a stable numeric Code, a short
// message, the primary source.Span, optional notes and optional fix
// suggestions. Producers emit through the Reporter interface so they stay
// decoupled from storage; BagReporter aggregates into a Bag, which supports
// sorting and deduplication for deterministic output.
//
// The package performs no formatting or IO. Rendering lives in
// internal/diagfmt, fix construction in internal/fix, orchestration in
// internal/driver.
package diag
