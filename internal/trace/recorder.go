package trace

import (
	"sort"
	"sync"

	"github.com/roach88/rendez"
)

// Recorder accumulates trace events from one or more channels.
//
// Record is safe from any goroutine; pass it to rendez.WithHook. Events
// arriving from concurrent dispatch paths may land out of seq order, so
// Snapshot returns them sorted by seq - the logical clock, not arrival,
// is the authoritative order.
type Recorder struct {
	mu     sync.Mutex
	events []rendez.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an event. Implements rendez.Hook.
func (r *Recorder) Record(ev rendez.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Snapshot returns a copy of the recorded events in seq order.
func (r *Recorder) Snapshot() []rendez.Event {
	r.mu.Lock()
	out := make([]rendez.Event, len(r.events))
	copy(out, r.events)
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
