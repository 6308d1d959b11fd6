// Package harness executes YAML conformance scenarios against a channel.
//
// A scenario is a sequence of steps (post, recv, fail) driven against a
// single channel with a fixed identity, followed by assertions over the
// values read and the recorded trace. Because channel IDs and the logical
// clock are deterministic, the same scenario always produces the same
// trace bytes, which makes golden-file comparison meaningful: the golden
// file in testdata/golden/ is the source of truth for a scenario's
// observable behavior.
//
// Scenario files are validated twice: structurally against the embedded
// CUE schema (catches wrong types and unknown ops before execution) and
// semantically in Go (catches step combinations the schema cannot
// express, e.g. expect and expect_error on the same step).
//
// Step ordering matters. The harness is sequential: a recv step resolves
// from values already queued by earlier post steps, or fails with the
// latched error. A recv against an empty, live channel blocks until the
// per-step timeout expires and fails the scenario.
package harness
