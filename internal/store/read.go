package store

import (
	"context"
	"database/sql"
	"fmt"
)

// StoredEvent is one row of the event log. Value holds canonical JSON
// text; Err holds the error text for error-shaped events.
type StoredEvent struct {
	Channel  string `json:"channel"`
	Seq      int64  `json:"seq"`
	Kind     string `json:"kind"`
	Value    string `json:"value,omitempty"`
	Err      string `json:"error,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

// ReadChannel returns all events for a channel in seq order.
func (s *Store) ReadChannel(ctx context.Context, channelID string) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, seq, kind, value, error, scenario
		FROM events
		WHERE channel_id = ?
		ORDER BY seq
	`, channelID)
	if err != nil {
		return nil, fmt.Errorf("read channel: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ReadScenario returns all events recorded under a scenario name, in
// (channel, seq) order.
func (s *Store) ReadScenario(ctx context.Context, scenario string) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, seq, kind, value, error, scenario
		FROM events
		WHERE scenario = ?
		ORDER BY channel_id, seq
	`, scenario)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListChannels returns the distinct channel IDs present in the log.
func (s *Store) ListChannels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT channel_id FROM events ORDER BY channel_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]StoredEvent, error) {
	var events []StoredEvent
	for rows.Next() {
		var (
			ev      StoredEvent
			value   sql.NullString
			errText sql.NullString
		)
		if err := rows.Scan(&ev.Channel, &ev.Seq, &ev.Kind, &value, &errText, &ev.Scenario); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Value = value.String
		ev.Err = errText.String
		events = append(events, ev)
	}
	return events, rows.Err()
}
