package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// UpsertInfluenceDebt adds to (or creates) a player's debt to a faction
// from a given source, accumulating amount rather than replacing it.
func (s *Store) UpsertInfluenceDebt(player, faction string, source model.DebtSource, amountDelta int) error {
	_, err := s.db.Exec(
		`INSERT INTO influence_debts (player, faction, source, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT(player, faction, source) DO UPDATE SET amount = amount + excluded.amount`,
		player, faction, string(source), amountDelta,
	)
	if err != nil {
		return fmt.Errorf("store: upsert influence debt %s/%s: %w", player, faction, err)
	}
	return nil
}

// PayInfluenceDebt reduces a debt by amount, clamping at zero and
// deleting the row once paid off.
func (s *Store) PayInfluenceDebt(player, faction string, source model.DebtSource, amount int) error {
	_, err := s.db.Exec(
		`UPDATE influence_debts SET amount = MAX(0, amount - ?) WHERE player = ? AND faction = ? AND source = ?`,
		amount, player, faction, string(source),
	)
	if err != nil {
		return fmt.Errorf("store: pay influence debt %s/%s: %w", player, faction, err)
	}
	_, err = s.db.Exec(`DELETE FROM influence_debts WHERE player = ? AND faction = ? AND source = ? AND amount <= 0`, player, faction, string(source))
	if err != nil {
		return fmt.Errorf("store: clear paid influence debt %s/%s: %w", player, faction, err)
	}
	return nil
}

// RecordReprisal bumps a debt's reprisal level and stamps last_reprisal.
func (s *Store) RecordReprisal(player, faction string, source model.DebtSource) error {
	_, err := s.db.Exec(
		`UPDATE influence_debts SET reprisal_level = reprisal_level + 1, last_reprisal = datetime('now') WHERE player = ? AND faction = ? AND source = ?`,
		player, faction, string(source),
	)
	if err != nil {
		return fmt.Errorf("store: record reprisal %s/%s: %w", player, faction, err)
	}
	return nil
}

// DebtsByPlayer returns every outstanding debt for a player.
func (s *Store) DebtsByPlayer(player string) ([]model.InfluenceDebt, error) {
	rows, err := s.db.Query(
		`SELECT player, faction, source, amount, reprisal_level, last_reprisal FROM influence_debts WHERE player = ? AND amount > 0`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("store: debts by player %s: %w", player, err)
	}
	defer rows.Close()

	var debts []model.InfluenceDebt
	for rows.Next() {
		var d model.InfluenceDebt
		var source string
		var lastReprisal sql.NullTime
		if err := rows.Scan(&d.Player, &d.Faction, &source, &d.Amount, &d.ReprisalLevel, &lastReprisal); err != nil {
			return nil, fmt.Errorf("store: scan influence debt: %w", err)
		}
		d.Source = model.DebtSource(source)
		d.LastReprisal = timePtrFromNull(lastReprisal)
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// AllOutstandingDebts returns every debt across all players, used by
// the digest tick's reprisal pass.
func (s *Store) AllOutstandingDebts() ([]model.InfluenceDebt, error) {
	rows, err := s.db.Query(`SELECT player, faction, source, amount, reprisal_level, last_reprisal FROM influence_debts WHERE amount > 0`)
	if err != nil {
		return nil, fmt.Errorf("store: all outstanding debts: %w", err)
	}
	defer rows.Close()

	var debts []model.InfluenceDebt
	for rows.Next() {
		var d model.InfluenceDebt
		var source string
		var lastReprisal sql.NullTime
		if err := rows.Scan(&d.Player, &d.Faction, &source, &d.Amount, &d.ReprisalLevel, &lastReprisal); err != nil {
			return nil, fmt.Errorf("store: scan influence debt: %w", err)
		}
		d.Source = model.DebtSource(source)
		d.LastReprisal = timePtrFromNull(lastReprisal)
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// CreateSeasonalCommitment inserts a new recurring per-faction pledge.
func (s *Store) CreateSeasonalCommitment(c model.SeasonalCommitment) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO seasonal_commitments (player, faction, tier, base_cost, start_at, end_at, last_processed, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Player, c.Faction, c.Tier, c.BaseCost, c.StartAt, c.EndAt, c.LastProcessed, orderedOr(c.Status, "active"),
	)
	if err != nil {
		return 0, fmt.Errorf("store: create seasonal commitment: %w", err)
	}
	return res.LastInsertId()
}

func orderedOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// DueSeasonalCommitments returns active commitments not yet processed
// this tick (last_processed older than cutoff).
func (s *Store) DueSeasonalCommitments(cutoff time.Time) ([]model.SeasonalCommitment, error) {
	rows, err := s.db.Query(
		`SELECT id, player, faction, tier, base_cost, start_at, end_at, last_processed, status
		 FROM seasonal_commitments WHERE status = 'active' AND last_processed < ?`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("store: due seasonal commitments: %w", err)
	}
	defer rows.Close()

	var commitments []model.SeasonalCommitment
	for rows.Next() {
		var c model.SeasonalCommitment
		if err := rows.Scan(&c.ID, &c.Player, &c.Faction, &c.Tier, &c.BaseCost, &c.StartAt, &c.EndAt, &c.LastProcessed, &c.Status); err != nil {
			return nil, fmt.Errorf("store: scan seasonal commitment: %w", err)
		}
		commitments = append(commitments, c)
	}
	return commitments, rows.Err()
}

// MarkSeasonalCommitmentProcessed stamps last_processed and, when
// complete, flips status.
func (s *Store) MarkSeasonalCommitmentProcessed(id int64, processedAt time.Time, status string) error {
	_, err := s.db.Exec(`UPDATE seasonal_commitments SET last_processed = ?, status = ? WHERE id = ?`, processedAt, status, id)
	if err != nil {
		return fmt.Errorf("store: mark seasonal commitment processed %d: %w", id, err)
	}
	return nil
}

// CreateFactionProject inserts a new faction-wide progress project.
func (s *Store) CreateFactionProject(p model.FactionProject) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO faction_projects (name, faction, progress, target, status, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Faction, p.Progress, p.Target, orderedOr(p.Status, "active"), marshalJSON(p.Metadata),
	)
	if err != nil {
		return 0, fmt.Errorf("store: create faction project %s: %w", p.Name, err)
	}
	return res.LastInsertId()
}

// AddFactionProjectProgress increments a project's progress and returns
// the resulting row.
func (s *Store) AddFactionProjectProgress(id int64, delta float64) (*model.FactionProject, error) {
	_, err := s.db.Exec(`UPDATE faction_projects SET progress = progress + ?, updated_at = datetime('now') WHERE id = ?`, delta, id)
	if err != nil {
		return nil, fmt.Errorf("store: add faction project progress %d: %w", id, err)
	}
	return s.FactionProjectByID(id)
}

// CompleteFactionProject marks a project complete.
func (s *Store) CompleteFactionProject(id int64) error {
	_, err := s.db.Exec(`UPDATE faction_projects SET status = 'complete', updated_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: complete faction project %d: %w", id, err)
	}
	return nil
}

// FactionProjectByID returns a single project row.
func (s *Store) FactionProjectByID(id int64) (*model.FactionProject, error) {
	row := s.db.QueryRow(`SELECT id, name, faction, progress, target, status, metadata, updated_at FROM faction_projects WHERE id = ?`, id)
	var p model.FactionProject
	var metadata string
	if err := row.Scan(&p.ID, &p.Name, &p.Faction, &p.Progress, &p.Target, &p.Status, &metadata, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: faction project by id %d: %w", id, err)
	}
	p.Metadata = map[string]any{}
	_ = unmarshalJSON(metadata, &p.Metadata)
	return &p, nil
}

// ActiveFactionProjects returns every project still in progress.
func (s *Store) ActiveFactionProjects() ([]model.FactionProject, error) {
	rows, err := s.db.Query(`SELECT id, name, faction, progress, target, status, metadata, updated_at FROM faction_projects WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("store: active faction projects: %w", err)
	}
	defer rows.Close()

	var projects []model.FactionProject
	for rows.Next() {
		var p model.FactionProject
		var metadata string
		if err := rows.Scan(&p.ID, &p.Name, &p.Faction, &p.Progress, &p.Target, &p.Status, &metadata, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan faction project: %w", err)
		}
		p.Metadata = map[string]any{}
		_ = unmarshalJSON(metadata, &p.Metadata)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// RecordFactionInvestment inserts a direct influence sink into a faction.
func (s *Store) RecordFactionInvestment(inv model.FactionInvestment) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO faction_investments (player, faction, amount, program) VALUES (?, ?, ?, ?)`,
		inv.Player, inv.Faction, inv.Amount, inv.Program,
	)
	if err != nil {
		return 0, fmt.Errorf("store: record faction investment: %w", err)
	}
	return res.LastInsertId()
}

// RecordArchiveEndowment inserts a direct influence sink that pays down
// debts and grants reputation.
func (s *Store) RecordArchiveEndowment(end model.ArchiveEndowment) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO archive_endowments (player, faction, amount, program) VALUES (?, ?, ?, ?)`,
		end.Player, end.Faction, end.Amount, end.Program,
	)
	if err != nil {
		return 0, fmt.Errorf("store: record archive endowment: %w", err)
	}
	return res.LastInsertId()
}
