package rendez

import "github.com/google/uuid"

// IDGenerator produces channel identities for trace correlation.
// Implemented by UUIDv7Generator (production) and by the fixed generator
// in internal/testutil for deterministic golden traces.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 channel IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort by
// creation time - convenient when scanning a recorded event log that
// interleaves several channels.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails, which does not happen in practice.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
