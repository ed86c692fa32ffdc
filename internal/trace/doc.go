// Package trace is the structured event log of the conversion engine.
//
// Events are grouped by Scope: driver (a CLI command), batch (one
// ClassifyBatch run), query (one top-level conversion request) and rule
// (the classification step that matched). Level filters scopes; at
// LevelDebug every matched rule is recorded.
//
// Tracers: StreamTracer writes text or NDJSON as events arrive, RingTracer
// keeps the most recent events in memory for tests and post-mortem dumps,
// MultiTracer fans out to both. Nop is used when tracing is off.
package trace
