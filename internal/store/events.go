package store

import (
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// AppendEvent appends one row to the append-only event log ().
func (s *Store) AppendEvent(action string, payload map[string]any) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO events (action, payload) VALUES (?, ?)`, action, marshalJSON(payload))
	if err != nil {
		return 0, fmt.Errorf("store: append event %s: %w", action, err)
	}
	return res.LastInsertId()
}

// EventsSince returns every event recorded at or after since, ordered
// oldest first.
func (s *Store) EventsSince(since time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT id, timestamp, action, payload FROM events WHERE timestamp >= ? ORDER BY id ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("store: events since: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var payload string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &payload); err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		e.Payload = map[string]any{}
		_ = unmarshalJSON(payload, &e.Payload)
		events = append(events, e)
	}
	return events, rows.Err()
}
