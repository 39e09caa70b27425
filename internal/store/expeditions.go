package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// QueueExpedition inserts a newly queued expedition keyed by its code.
func (s *Store) QueueExpedition(e model.ExpeditionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO expeditions (code, player, type, objective, team, funding, prep, prep_depth, confidence, queued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Code, e.Player, string(e.Type), e.Objective, marshalJSON(e.Team), marshalJSON(e.Funding),
		marshalJSON(e.Prep), string(e.PrepDepth), string(e.Confidence), e.QueuedAt,
	)
	if err != nil {
		return fmt.Errorf("store: queue expedition %s: %w", e.Code, err)
	}
	return nil
}

// ResolveExpedition records the resolver's outcome for a queued
// expedition.
func (s *Store) ResolveExpedition(code string, outcome model.ExpeditionOutcome, reputationDelta int, result model.ExpeditionResult, resolvedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE expeditions SET outcome = ?, reputation_delta = ?, result = ?, resolved_at = ? WHERE code = ?`,
		string(outcome), reputationDelta, marshalJSON(result), resolvedAt, code,
	)
	if err != nil {
		return fmt.Errorf("store: resolve expedition %s: %w", code, err)
	}
	return nil
}

// ExpeditionByCode returns a single expedition row.
func (s *Store) ExpeditionByCode(code string) (*model.ExpeditionRecord, error) {
	row := s.db.QueryRow(
		`SELECT code, player, type, objective, team, funding, prep, prep_depth, confidence, outcome, reputation_delta, result, queued_at, resolved_at
		 FROM expeditions WHERE code = ?`, code,
	)
	e, err := scanExpedition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: expedition by code %s: %w", code, err)
	}
	return e, nil
}

// PendingExpeditions returns every queued expedition awaiting
// resolution, for resolve_pending_expeditions ().
func (s *Store) PendingExpeditions() ([]model.ExpeditionRecord, error) {
	rows, err := s.db.Query(
		`SELECT code, player, type, objective, team, funding, prep, prep_depth, confidence, outcome, reputation_delta, result, queued_at, resolved_at
		 FROM expeditions WHERE outcome IS NULL ORDER BY queued_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: pending expeditions: %w", err)
	}
	defer rows.Close()

	var expeditions []model.ExpeditionRecord
	for rows.Next() {
		e, err := scanExpeditionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan expedition: %w", err)
		}
		expeditions = append(expeditions, *e)
	}
	return expeditions, rows.Err()
}

func scanExpedition(row *sql.Row) (*model.ExpeditionRecord, error) {
	return scanExpeditionGeneric(row)
}

func scanExpeditionRows(rows *sql.Rows) (*model.ExpeditionRecord, error) {
	return scanExpeditionGeneric(rows)
}

func scanExpeditionGeneric(row scannable) (*model.ExpeditionRecord, error) {
	var e model.ExpeditionRecord
	var expType, team, funding, prep, prepDepth, confidence, result string
	var outcome sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(&e.Code, &e.Player, &expType, &e.Objective, &team, &funding, &prep, &prepDepth,
		&confidence, &outcome, &e.ReputationDelta, &result, &e.QueuedAt, &resolvedAt); err != nil {
		return nil, err
	}
	e.Type = model.ExpeditionType(expType)
	e.PrepDepth = model.PrepDepth(prepDepth)
	e.Confidence = model.Confidence(confidence)
	_ = unmarshalJSON(team, &e.Team)
	_ = unmarshalJSON(funding, &e.Funding)
	_ = unmarshalJSON(prep, &e.Prep)
	if outcome.Valid {
		o := model.ExpeditionOutcome(outcome.String)
		e.Outcome = &o
	}
	var res model.ExpeditionResult
	_ = unmarshalJSON(result, &res)
	e.Result = &res
	e.ResolvedAt = timeFromNull(resolvedAt)
	return &e, nil
}
