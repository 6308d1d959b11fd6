// Package trace collects and serializes channel trace events.
//
// A Recorder is a rendez.Hook that accumulates events in memory; the
// canonical JSON serialization turns a recorded trace into bytes stable
// enough for golden-file comparison and content hashing. Determinism is
// the whole point: two runs of the same scenario must produce the same
// bytes, so the serialization sorts object keys by UTF-16 code units,
// NFC-normalizes strings and forbids floats and nulls outright.
package trace
