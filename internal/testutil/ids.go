// Package testutil provides deterministic helpers for channel tests.
//
// Production channels stamp themselves with UUIDv7 identities, which vary
// run to run. Golden-trace tests need the same bytes every run, so the
// fixed generator hands out a predetermined identity sequence instead.
package testutil

import "sync"

// FixedIDGenerator returns predetermined channel IDs in order.
//
// This enables deterministic trace comparison: the same scenario with the
// same FixedIDGenerator produces byte-identical event logs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedIDGenerator("chan-1", "chan-2")
//	gen.Generate() // "chan-1"
//	gen.Generate() // "chan-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test created more channels than expected).
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining returns how many IDs are left unconsumed.
func (g *FixedIDGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
