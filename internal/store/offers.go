package store

import (
	"database/sql"
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// CreateOffer inserts a defection offer or counter-offer.
func (s *Store) CreateOffer(o model.OfferRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO offers (scholar, target_faction, rival, patron, offer_type, influence_offered, terms, status, parent_offer_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Scholar, o.TargetFaction, o.Rival, o.Patron, string(o.OfferType),
		marshalJSON(o.InfluenceOffered), marshalJSON(o.Terms), string(orderedOfferStatus(o.Status)), o.ParentOfferID,
	)
	if err != nil {
		return 0, fmt.Errorf("store: create offer for %s: %w", o.Scholar, err)
	}
	return res.LastInsertId()
}

func orderedOfferStatus(s model.OfferStatus) model.OfferStatus {
	if s == "" {
		return model.OfferPending
	}
	return s
}

// UpdateOfferStatus transitions an offer's status and stamps resolved_at.
func (s *Store) UpdateOfferStatus(id int64, status model.OfferStatus) error {
	_, err := s.db.Exec(`UPDATE offers SET status = ?, resolved_at = datetime('now') WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("store: update offer status %d: %w", id, err)
	}
	return nil
}

// OfferByID returns a single offer row.
func (s *Store) OfferByID(id int64) (*model.OfferRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, scholar, target_faction, rival, patron, offer_type, influence_offered, terms, status, parent_offer_id, created_at, resolved_at
		 FROM offers WHERE id = ?`, id,
	)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: offer by id %d: %w", id, err)
	}
	return o, nil
}

// OffersForScholar returns every offer concerning a scholar, newest first.
func (s *Store) OffersForScholar(scholar string) ([]model.OfferRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, scholar, target_faction, rival, patron, offer_type, influence_offered, terms, status, parent_offer_id, created_at, resolved_at
		 FROM offers WHERE scholar = ? ORDER BY id DESC`, scholar,
	)
	if err != nil {
		return nil, fmt.Errorf("store: offers for scholar %s: %w", scholar, err)
	}
	defer rows.Close()

	var offers []model.OfferRecord
	for rows.Next() {
		o, err := scanOfferRows(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func scanOffer(row *sql.Row) (*model.OfferRecord, error)      { return scanOfferGeneric(row) }
func scanOfferRows(rows *sql.Rows) (*model.OfferRecord, error) { return scanOfferGeneric(rows) }

func scanOfferGeneric(row scannable) (*model.OfferRecord, error) {
	var o model.OfferRecord
	var offerType, influenceOffered, terms, status string
	var resolvedAt sql.NullTime
	if err := row.Scan(&o.ID, &o.Scholar, &o.TargetFaction, &o.Rival, &o.Patron, &offerType,
		&influenceOffered, &terms, &status, &o.ParentOfferID, &o.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	o.OfferType = model.OfferType(offerType)
	o.Status = model.OfferStatus(status)
	o.InfluenceOffered = map[string]int{}
	_ = unmarshalJSON(influenceOffered, &o.InfluenceOffered)
	o.Terms = map[string]bool{}
	_ = unmarshalJSON(terms, &o.Terms)
	o.ResolvedAt = timeFromNull(resolvedAt)
	return &o, nil
}
