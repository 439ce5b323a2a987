// Package diag defines the diagnostic model shared by the marker scanner,
// the literal converter, and the driver.
//
// Diagnostic is the central record: severity, a compact numeric Code with a
// stable string form, a human-oriented message, the primary source.Span, and
// optional notes. Producers emit through a Reporter so they stay decoupled
// from storage; Bag aggregates diagnostics with a limit and supports
// deterministic sorting and deduplication.
//
// The package performs no formatting or IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
package diag
