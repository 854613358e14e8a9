// Package diag defines the diagnostic model shared by the parser adapter, the
// formatter core, the driver and the configuration loader.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings such as
//     constructs emitted verbatim, parse errors recovered by the grammar,
//     unreadable files and invalid configuration values.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or rendering.
//
// # Scope
//
// Package diag does not perform IO or terminal rendering. Pretty and JSON
// output live in internal/diagfmt; collection per file happens in
// internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable prefixed ID (FMT, IO, CFG).
//   - Message: short human oriented text.
//   - Primary: the source.Span the finding refers to.
//   - Notes: optional secondary spans with extra context.
//
// Formatter findings never abort a run. A construct without a rule is emitted
// verbatim and reported as FmtUnsupportedConstruct; a rule whose assumption
// about node shape failed reports FmtMalformedAssumption.
package diag
