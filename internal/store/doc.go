// Package store persists channel trace events to SQLite.
//
// The event log is append-only and idempotent: an event is identified by
// its (channel, seq) pair and duplicate writes are silently ignored, so
// re-recording a deterministic scenario never corrupts an existing log.
// Reads return events in seq order - the logical clock, never wall time,
// orders the log.
package store
