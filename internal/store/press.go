package store

import (
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// ArchivePress writes a press release straight to the permanent record,
// for layers dispatched with zero delay ().
func (s *Store) ArchivePress(rel model.PressRelease) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO press_records (type, headline, body, metadata) VALUES (?, ?, ?, ?)`,
		rel.Type, rel.Headline, rel.Body, marshalJSON(rel.Metadata),
	)
	if err != nil {
		return 0, fmt.Errorf("store: archive press: %w", err)
	}
	return res.LastInsertId()
}

// PressRecords returns archived press in reverse-chronological order,
// bounded by limit (0 means no bound).
func (s *Store) PressRecords(limit int) ([]model.PressRecord, error) {
	query := `SELECT id, timestamp, type, headline, body, metadata FROM press_records ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: press records: %w", err)
	}
	defer rows.Close()
	return scanPressRecords(rows)
}

func scanPressRecords(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.PressRecord, error) {
	var records []model.PressRecord
	for rows.Next() {
		var rec model.PressRecord
		var metadata string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Release.Type, &rec.Release.Headline, &rec.Release.Body, &metadata); err != nil {
			return nil, fmt.Errorf("store: scan press record: %w", err)
		}
		rec.Release.Metadata = map[string]any{}
		_ = unmarshalJSON(metadata, &rec.Release.Metadata)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// EnqueuePressRelease schedules a press release for dispatch at releaseAt.
func (s *Store) EnqueuePressRelease(releaseAt time.Time, rel model.PressRelease) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO queued_press (release_at, type, headline, body, metadata) VALUES (?, ?, ?, ?, ?)`,
		releaseAt, rel.Type, rel.Headline, rel.Body, marshalJSON(rel.Metadata),
	)
	if err != nil {
		return 0, fmt.Errorf("store: enqueue press release: %w", err)
	}
	return res.LastInsertId()
}

// DueQueuedPress returns every queued press release whose release_at
// has passed as of now, ordered oldest first so dispatch preserves
// narrative sequence.
func (s *Store) DueQueuedPress(now time.Time) ([]model.QueuedPress, error) {
	rows, err := s.db.Query(
		`SELECT id, release_at, created_at, type, headline, body, metadata FROM queued_press WHERE release_at <= ? ORDER BY release_at ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: due queued press: %w", err)
	}
	defer rows.Close()

	var queued []model.QueuedPress
	for rows.Next() {
		var q model.QueuedPress
		var metadata string
		if err := rows.Scan(&q.ID, &q.ReleaseAt, &q.CreatedAt, &q.Release.Type, &q.Release.Headline, &q.Release.Body, &metadata); err != nil {
			return nil, fmt.Errorf("store: scan queued press: %w", err)
		}
		q.Release.Metadata = map[string]any{}
		_ = unmarshalJSON(metadata, &q.Release.Metadata)
		queued = append(queued, q)
	}
	return queued, rows.Err()
}

// ClearQueuedPress removes a dispatched queued-press row by id.
func (s *Store) ClearQueuedPress(id int64) error {
	_, err := s.db.Exec(`DELETE FROM queued_press WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: clear queued press %d: %w", id, err)
	}
	return nil
}

// CountQueuedPress returns the number of press releases still awaiting
// dispatch, used by the admin interface ().
func (s *Store) CountQueuedPress() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM queued_press`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count queued press: %w", err)
	}
	return n, nil
}

// ListQueuedPress returns every queued press release regardless of due
// date, ordered by scheduled release time.
func (s *Store) ListQueuedPress() ([]model.QueuedPress, error) {
	return s.DueQueuedPress(farFuture())
}

func farFuture() time.Time {
	return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
}
