package rendez

// EventKind distinguishes trace event types.
type EventKind string

const (
	// EventPost records a value entering the pending queue.
	EventPost EventKind = "post"
	// EventDeliver records a value being handed to a reader.
	EventDeliver EventKind = "deliver"
	// EventAck records the matching writer's receipt being resolved.
	EventAck EventKind = "ack"
	// EventError records the terminal error latching.
	EventError EventKind = "error"
	// EventDrop records a pending value discarded by the latch.
	EventDrop EventKind = "drop"
)

// Event is one entry in a channel's trace.
//
// Seq comes from the channel's logical clock. Value holds the payload for
// post/deliver/ack/drop events; Err holds the error text when the payload
// is the terminal marker or the event is the latch itself.
type Event struct {
	Seq     int64     `json:"seq"`
	Channel string    `json:"channel"`
	Kind    EventKind `json:"kind"`
	Value   any       `json:"value,omitempty"`
	Err     string    `json:"error,omitempty"`
}

// Hook observes trace events. Hooks run outside the channel mutex, after
// the state transition they describe, in seq order for any single
// channel. A hook must not block the caller for long; persisting or
// formatting belongs to whatever the hook feeds.
type Hook func(Event)
