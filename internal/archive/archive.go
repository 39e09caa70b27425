// Package archive defines the read-only archive exporter port: a
// projection over persisted press, events, and scholars that the
// (externally driven) static-HTML exporter consumes. The core never
// renders pages; it only exposes the queries the exporter needs, a
// thin read-side wrapper around *store.Store rather than a second copy
// of the data.
package archive

import (
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/foxglove-games/greatwork/internal/store"
)

// Snapshot is one externally-consumable view of the archive: the press
// record feed plus the roster and event log it was generated from.
type Snapshot struct {
	GeneratedAt time.Time
	Press       []model.PressRecord
	Scholars    []model.Scholar
	Events      []model.Event
}

// Exporter is a read-only consumer of persisted state. Anything
// implementing it can drive a static-HTML (or any other) rendering
// without reaching into the store directly.
type Exporter interface {
	PressFeed(limit int) ([]model.PressRecord, error)
	Roster() ([]model.Scholar, error)
	EventLog(since time.Time) ([]model.Event, error)
	Snapshot(now time.Time, pressLimit int) (Snapshot, error)
}

// StoreExporter is the default Exporter, a thin read-only wrapper
// around *store.Store. It takes no lock of its own: all of its
// underlying queries are already safe for concurrent use alongside the
// game service's single-writer mutations, since they only ever read.
type StoreExporter struct {
	store *store.Store
}

// NewStoreExporter constructs an Exporter over st.
func NewStoreExporter(st *store.Store) *StoreExporter {
	return &StoreExporter{store: st}
}

// PressFeed returns archived press in reverse-chronological order,
// bounded by limit (0 means unbounded).
func (e *StoreExporter) PressFeed(limit int) ([]model.PressRecord, error) {
	return e.store.PressRecords(limit)
}

// Roster returns every scholar currently in the game.
func (e *StoreExporter) Roster() ([]model.Scholar, error) {
	return e.store.AllScholars()
}

// EventLog returns every event recorded at or after since: an
// append-only stream of (id, timestamp, action, payload_json).
func (e *StoreExporter) EventLog(since time.Time) ([]model.Event, error) {
	return e.store.EventsSince(since)
}

// Snapshot gathers a consistent-enough view for one export pass: the
// most recent pressLimit press releases, the full roster, and every
// event since the beginning of the log.
func (e *StoreExporter) Snapshot(now time.Time, pressLimit int) (Snapshot, error) {
	press, err := e.PressFeed(pressLimit)
	if err != nil {
		return Snapshot{}, err
	}
	roster, err := e.Roster()
	if err != nil {
		return Snapshot{}, err
	}
	events, err := e.EventLog(time.Time{})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{GeneratedAt: now, Press: press, Scholars: roster, Events: events}, nil
}
