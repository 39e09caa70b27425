package store

import (
	"database/sql"
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// UpsertScholar inserts or replaces a scholar row.
func (s *Store) UpsertScholar(sc model.Scholar) error {
	_, err := s.db.Exec(
		`INSERT INTO scholars (id, name, seed, archetype, disciplines, methods, drives, virtues, vices, taboos, stats, politics, catchphrase, memory, career, contract)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, archetype = excluded.archetype,
			disciplines = excluded.disciplines, methods = excluded.methods,
			drives = excluded.drives, virtues = excluded.virtues,
			vices = excluded.vices, taboos = excluded.taboos,
			stats = excluded.stats, politics = excluded.politics,
			catchphrase = excluded.catchphrase, memory = excluded.memory,
			career = excluded.career, contract = excluded.contract`,
		sc.ID, sc.Name, sc.Seed, sc.Archetype, marshalJSON(sc.Disciplines), marshalJSON(sc.Methods),
		marshalJSON(sc.Drives), marshalJSON(sc.Virtues), marshalJSON(sc.Vices), marshalJSON(sc.Taboos),
		marshalJSON(sc.Stats), marshalJSON(sc.Politics), sc.Catchphrase, marshalJSON(sc.Memory),
		marshalJSON(sc.Career), marshalJSON(sc.Contract),
	)
	if err != nil {
		return fmt.Errorf("store: upsert scholar %s: %w", sc.ID, err)
	}
	return nil
}

// ScholarByID returns a single scholar by id.
func (s *Store) ScholarByID(id string) (*model.Scholar, error) {
	row := s.db.QueryRow(
		`SELECT id, name, seed, archetype, disciplines, methods, drives, virtues, vices, taboos, stats, politics, catchphrase, memory, career, contract
		 FROM scholars WHERE id = ?`, id,
	)
	sc, err := scanScholar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: scholar by id %s: %w", id, err)
	}
	return sc, nil
}

// RetireScholar permanently removes a scholar from the roster (
// invariant 9's over-max retirement path).
func (s *Store) RetireScholar(id string) error {
	_, err := s.db.Exec(`DELETE FROM scholars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: retire scholar %s: %w", id, err)
	}
	return nil
}

// AllScholars returns every scholar in the repository.
func (s *Store) AllScholars() ([]model.Scholar, error) {
	rows, err := s.db.Query(
		`SELECT id, name, seed, archetype, disciplines, methods, drives, virtues, vices, taboos, stats, politics, catchphrase, memory, career, contract
		 FROM scholars ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: all scholars: %w", err)
	}
	defer rows.Close()

	var scholars []model.Scholar
	for rows.Next() {
		sc, err := scanScholarRows(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan scholar: %w", err)
		}
		scholars = append(scholars, *sc)
	}
	return scholars, rows.Err()
}

func scanScholar(row *sql.Row) (*model.Scholar, error) {
	return scanScholarGeneric(row)
}

func scanScholarRows(rows *sql.Rows) (*model.Scholar, error) {
	return scanScholarGeneric(rows)
}

func scanScholarGeneric(row scannable) (*model.Scholar, error) {
	var sc model.Scholar
	var disciplines, methods, drives, virtues, vices, taboos, stats, politics, memory, career, contract string
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Seed, &sc.Archetype, &disciplines, &methods, &drives, &virtues,
		&vices, &taboos, &stats, &politics, &sc.Catchphrase, &memory, &career, &contract); err != nil {
		return nil, err
	}
	_ = unmarshalJSON(disciplines, &sc.Disciplines)
	_ = unmarshalJSON(methods, &sc.Methods)
	_ = unmarshalJSON(drives, &sc.Drives)
	_ = unmarshalJSON(virtues, &sc.Virtues)
	_ = unmarshalJSON(vices, &sc.Vices)
	_ = unmarshalJSON(taboos, &sc.Taboos)
	_ = unmarshalJSON(stats, &sc.Stats)
	sc.Politics = map[string]float64{}
	_ = unmarshalJSON(politics, &sc.Politics)
	mem := model.NewMemory(0.98)
	_ = unmarshalJSON(memory, mem)
	sc.Memory = mem
	_ = unmarshalJSON(career, &sc.Career)
	_ = unmarshalJSON(contract, &sc.Contract)
	return &sc, nil
}
