package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// LaunchConference inserts a newly launched conference keyed by code.
func (s *Store) LaunchConference(c model.Conference) error {
	_, err := s.db.Exec(
		`INSERT INTO conferences (code, player, theory_id, confidence, supporters, opposition, launched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Player, c.TheoryID, string(c.Confidence), marshalJSON(c.Supporters), marshalJSON(c.Opposition), c.LaunchedAt,
	)
	if err != nil {
		return fmt.Errorf("store: launch conference %s: %w", c.Code, err)
	}
	return nil
}

// ResolveConference records a resolved conference's outcome.
func (s *Store) ResolveConference(code string, outcome model.ExpeditionOutcome, reputationDelta int, result map[string]any, resolvedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE conferences SET outcome = ?, reputation_delta = ?, result = ?, resolved_at = ? WHERE code = ?`,
		string(outcome), reputationDelta, marshalJSON(result), resolvedAt, code,
	)
	if err != nil {
		return fmt.Errorf("store: resolve conference %s: %w", code, err)
	}
	return nil
}

// PendingConferences returns every launched conference awaiting resolution.
func (s *Store) PendingConferences() ([]model.Conference, error) {
	rows, err := s.db.Query(
		`SELECT code, player, theory_id, confidence, supporters, opposition, outcome, reputation_delta, result, launched_at, resolved_at
		 FROM conferences WHERE outcome IS NULL ORDER BY launched_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: pending conferences: %w", err)
	}
	defer rows.Close()

	var conferences []model.Conference
	for rows.Next() {
		c, err := scanConferenceRows(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan conference: %w", err)
		}
		conferences = append(conferences, *c)
	}
	return conferences, rows.Err()
}

// ConferenceByCode returns a single conference row.
func (s *Store) ConferenceByCode(code string) (*model.Conference, error) {
	row := s.db.QueryRow(
		`SELECT code, player, theory_id, confidence, supporters, opposition, outcome, reputation_delta, result, launched_at, resolved_at
		 FROM conferences WHERE code = ?`, code,
	)
	c, err := scanConference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: conference by code %s: %w", code, err)
	}
	return c, nil
}

func scanConference(row *sql.Row) (*model.Conference, error)      { return scanConferenceGeneric(row) }
func scanConferenceRows(rows *sql.Rows) (*model.Conference, error) { return scanConferenceGeneric(rows) }

func scanConferenceGeneric(row scannable) (*model.Conference, error) {
	var c model.Conference
	var confidence, supporters, opposition, result string
	var outcome sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(&c.Code, &c.Player, &c.TheoryID, &confidence, &supporters, &opposition,
		&outcome, &c.ReputationDelta, &result, &c.LaunchedAt, &resolvedAt); err != nil {
		return nil, err
	}
	c.Confidence = model.Confidence(confidence)
	_ = unmarshalJSON(supporters, &c.Supporters)
	_ = unmarshalJSON(opposition, &c.Opposition)
	if outcome.Valid {
		o := model.ExpeditionOutcome(outcome.String)
		c.Outcome = &o
	}
	c.Result = map[string]any{}
	_ = unmarshalJSON(result, &c.Result)
	c.ResolvedAt = timeFromNull(resolvedAt)
	return &c, nil
}
