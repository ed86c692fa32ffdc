// Package diag defines the diagnostic model shared by the conversion engine
// and the tools around it.
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (CNVxxxx for conversions, CSTxxxx for constant folding,
// UNIxxxx for universe fixtures), a short Message, the Primary span and
// optional Notes. Notes carry secondary context such as the signatures of
// two conflicting conversion operators.
//
// Producers emit through a Reporter. BagReporter stores into a Bag,
// DedupReporter filters repeats, and NopReporter drops everything so that
// speculative overload probing never leaves diagnostics behind.
//
// Package diag performs no formatting beyond the single-line Bag.Format used
// by tests and the CLI.
package diag
