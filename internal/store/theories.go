package store

import (
	"database/sql"
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// RecordTheory inserts a submitted theory and returns its id.
func (s *Store) RecordTheory(t model.TheoryRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO theories (player, text, confidence, supporters, deadline) VALUES (?, ?, ?, ?, ?)`,
		t.Player, t.Text, string(t.Confidence), marshalJSON(t.Supporters), t.Deadline,
	)
	if err != nil {
		return 0, fmt.Errorf("store: record theory: %w", err)
	}
	return res.LastInsertId()
}

// TheoryByID returns a single theory row.
func (s *Store) TheoryByID(id int64) (*model.TheoryRecord, error) {
	row := s.db.QueryRow(`SELECT id, timestamp, player, text, confidence, supporters, deadline FROM theories WHERE id = ?`, id)
	var t model.TheoryRecord
	var confidence, supporters string
	if err := row.Scan(&t.ID, &t.Timestamp, &t.Player, &t.Text, &confidence, &supporters, &t.Deadline); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: theory by id %d: %w", id, err)
	}
	t.Confidence = model.Confidence(confidence)
	_ = unmarshalJSON(supporters, &t.Supporters)
	return &t, nil
}

// TheoriesByPlayer returns every theory a player has submitted, newest
// first.
func (s *Store) TheoriesByPlayer(player string) ([]model.TheoryRecord, error) {
	rows, err := s.db.Query(`SELECT id, timestamp, player, text, confidence, supporters, deadline FROM theories WHERE player = ? ORDER BY id DESC`, player)
	if err != nil {
		return nil, fmt.Errorf("store: theories by player %s: %w", player, err)
	}
	defer rows.Close()

	var theories []model.TheoryRecord
	for rows.Next() {
		var t model.TheoryRecord
		var confidence, supporters string
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Player, &t.Text, &confidence, &supporters, &t.Deadline); err != nil {
			return nil, fmt.Errorf("store: scan theory: %w", err)
		}
		t.Confidence = model.Confidence(confidence)
		_ = unmarshalJSON(supporters, &t.Supporters)
		theories = append(theories, t)
	}
	return theories, rows.Err()
}
