package store

import (
	"context"
	"fmt"

	"github.com/roach88/rendez"
	"github.com/roach88/rendez/internal/trace"
)

// WriteEvent inserts one trace event, tagged with the scenario that
// produced it. Uses ON CONFLICT DO NOTHING for idempotency: rewriting
// the same (channel, seq) is silently ignored, so re-recording a
// deterministic scenario against the same log is safe.
//
// The payload is stored as canonical JSON, making a stored trace
// byte-comparable with a golden file.
func (s *Store) WriteEvent(ctx context.Context, scenario string, ev rendez.Event) error {
	value, errText, err := eventColumns(ev)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (channel_id, seq, kind, value, error, scenario)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, ev.Channel, ev.Seq, string(ev.Kind), value, errText, scenario)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteEvents inserts a batch of events inside one transaction.
func (s *Store) WriteEvents(ctx context.Context, scenario string, events []rendez.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		value, errText, cerr := eventColumns(ev)
		if cerr != nil {
			return fmt.Errorf("write events: %w", cerr)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (channel_id, seq, kind, value, error, scenario)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, ev.Channel, ev.Seq, string(ev.Kind), value, errText, scenario); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// eventColumns maps optional event fields to nullable columns.
func eventColumns(ev rendez.Event) (value, errText any, err error) {
	if ev.Value != nil {
		b, merr := trace.MarshalValue(ev.Value)
		if merr != nil {
			return nil, nil, merr
		}
		value = string(b)
	}
	if ev.Err != "" {
		errText = ev.Err
	}
	return value, errText, nil
}
