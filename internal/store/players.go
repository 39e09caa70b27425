package store

import (
	"database/sql"
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// playerRow is the cached shape of a players row, invalidated on every
// write: a map cache beside the source of truth in SQLite rather than
// a second durable store.
type playerRow = model.Player

// UpsertPlayer inserts or fully replaces a player row and refreshes the
// in-memory cache entry.
func (s *Store) UpsertPlayer(p model.Player) error {
	_, err := s.db.Exec(
		`INSERT INTO players (id, display_name, reputation, influence, cooldowns)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			reputation = excluded.reputation,
			influence = excluded.influence,
			cooldowns = excluded.cooldowns`,
		p.ID, p.DisplayName, p.Reputation, marshalJSON(p.Influence), marshalJSON(p.Cooldowns),
	)
	if err != nil {
		return fmt.Errorf("store: upsert player %s: %w", p.ID, err)
	}
	s.mu.Lock()
	cp := p
	s.players[p.ID] = &cp
	s.mu.Unlock()
	return nil
}

// GetPlayer returns a player by id, serving from cache when present.
func (s *Store) GetPlayer(id string) (*model.Player, error) {
	s.mu.RLock()
	if cached, ok := s.players[id]; ok {
		p := *cached
		s.mu.RUnlock()
		return &p, nil
	}
	s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, display_name, reputation, influence, cooldowns FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get player %s: %w", id, err)
	}
	s.mu.Lock()
	cp := *p
	s.players[id] = &cp
	s.mu.Unlock()
	return p, nil
}

// AllPlayers returns every player row, bypassing the cache so callers
// doing a full scan (digest tick, admin listing) always see committed
// state.
func (s *Store) AllPlayers() ([]model.Player, error) {
	rows, err := s.db.Query(`SELECT id, display_name, reputation, influence, cooldowns FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: all players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		p, err := scanPlayerRows(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPlayer(row *sql.Row) (*model.Player, error) {
	return scanPlayerGeneric(row)
}

func scanPlayerRows(rows *sql.Rows) (*model.Player, error) {
	return scanPlayerGeneric(rows)
}

func scanPlayerGeneric(row scannable) (*model.Player, error) {
	var p model.Player
	var influence, cooldowns string
	if err := row.Scan(&p.ID, &p.DisplayName, &p.Reputation, &influence, &cooldowns); err != nil {
		return nil, err
	}
	p.Influence = map[string]int{}
	p.Cooldowns = map[string]int{}
	_ = unmarshalJSON(influence, &p.Influence)
	_ = unmarshalJSON(cooldowns, &p.Cooldowns)
	return &p, nil
}
