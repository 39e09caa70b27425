// Package store provides SQLite-backed persistence for Great Work game
// state: a single *sql.DB wrapped in a Store, a schema applied with
// CREATE TABLE IF NOT EXISTS, and one exported method per operation
// rather than a generic ORM. JSON-valued columns (maps, string slices)
// are marshalled/unmarshalled at the Go boundary.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the Great Work.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	players map[string]*playerRow
}

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	reputation INTEGER NOT NULL DEFAULT 0,
	influence TEXT NOT NULL DEFAULT '{}',
	cooldowns TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
	action TEXT NOT NULL,
	payload TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS scholars (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	seed INTEGER NOT NULL,
	archetype TEXT NOT NULL,
	disciplines TEXT NOT NULL DEFAULT '[]',
	methods TEXT NOT NULL DEFAULT '[]',
	drives TEXT NOT NULL DEFAULT '[]',
	virtues TEXT NOT NULL DEFAULT '[]',
	vices TEXT NOT NULL DEFAULT '[]',
	taboos TEXT NOT NULL DEFAULT '[]',
	stats TEXT NOT NULL DEFAULT '{}',
	politics TEXT NOT NULL DEFAULT '{}',
	catchphrase TEXT NOT NULL DEFAULT '',
	memory TEXT NOT NULL DEFAULT '{}',
	career TEXT NOT NULL DEFAULT '{}',
	contract TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS theories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
	player TEXT NOT NULL,
	text TEXT NOT NULL,
	confidence TEXT NOT NULL,
	supporters TEXT NOT NULL DEFAULT '[]',
	deadline TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS expeditions (
	code TEXT PRIMARY KEY,
	player TEXT NOT NULL,
	type TEXT NOT NULL,
	objective TEXT NOT NULL,
	team TEXT NOT NULL DEFAULT '[]',
	funding TEXT NOT NULL DEFAULT '[]',
	prep TEXT NOT NULL DEFAULT '{}',
	prep_depth TEXT NOT NULL,
	confidence TEXT NOT NULL,
	outcome TEXT,
	reputation_delta INTEGER NOT NULL DEFAULT 0,
	result TEXT NOT NULL DEFAULT '{}',
	queued_at DATETIME NOT NULL DEFAULT (datetime('now')),
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS press_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
	type TEXT NOT NULL,
	headline TEXT NOT NULL,
	body TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS queued_press (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	release_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	type TEXT NOT NULL,
	headline TEXT NOT NULL,
	body TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_type TEXT NOT NULL,
	actor_id TEXT NOT NULL DEFAULT '',
	subject_id TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	scheduled_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	source_table TEXT NOT NULL DEFAULT '',
	source_id INTEGER NOT NULL DEFAULT 0,
	result TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_orders_due ON orders (status, scheduled_at);

CREATE TABLE IF NOT EXISTS offers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scholar TEXT NOT NULL,
	target_faction TEXT NOT NULL,
	rival TEXT NOT NULL DEFAULT '',
	patron TEXT NOT NULL DEFAULT '',
	offer_type TEXT NOT NULL,
	influence_offered TEXT NOT NULL DEFAULT '{}',
	terms TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	parent_offer_id INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS mentorships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	scholar TEXT NOT NULL,
	start DATETIME NOT NULL DEFAULT (datetime('now')),
	status TEXT NOT NULL DEFAULT 'pending',
	track TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS conferences (
	code TEXT PRIMARY KEY,
	player TEXT NOT NULL,
	theory_id INTEGER NOT NULL,
	confidence TEXT NOT NULL,
	supporters TEXT NOT NULL DEFAULT '[]',
	opposition TEXT NOT NULL DEFAULT '[]',
	outcome TEXT,
	reputation_delta INTEGER NOT NULL DEFAULT 0,
	result TEXT NOT NULL DEFAULT '{}',
	launched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS symposium_topics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date DATETIME NOT NULL DEFAULT (datetime('now')),
	topic TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'voting',
	winner INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS symposium_proposals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	topic TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created DATETIME NOT NULL DEFAULT (datetime('now')),
	expire_at DATETIME NOT NULL,
	priority INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS symposium_votes (
	topic_id INTEGER NOT NULL,
	player TEXT NOT NULL,
	option INTEGER NOT NULL,
	PRIMARY KEY (topic_id, player)
);

CREATE TABLE IF NOT EXISTS symposium_pledges (
	topic_id INTEGER NOT NULL,
	player TEXT NOT NULL,
	amount INTEGER NOT NULL,
	faction TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	resolved_at DATETIME,
	PRIMARY KEY (topic_id, player)
);

CREATE TABLE IF NOT EXISTS symposium_participation (
	player TEXT PRIMARY KEY,
	miss_streak INTEGER NOT NULL DEFAULT 0,
	grace_window_start DATETIME,
	grace_miss_consumed INTEGER NOT NULL DEFAULT 0,
	last_voted_at DATETIME
);

CREATE TABLE IF NOT EXISTS influence_debts (
	player TEXT NOT NULL,
	faction TEXT NOT NULL,
	source TEXT NOT NULL,
	amount INTEGER NOT NULL DEFAULT 0,
	reprisal_level INTEGER NOT NULL DEFAULT 0,
	last_reprisal DATETIME,
	PRIMARY KEY (player, faction, source)
);

CREATE TABLE IF NOT EXISTS seasonal_commitments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	faction TEXT NOT NULL,
	tier TEXT NOT NULL,
	base_cost INTEGER NOT NULL,
	start_at DATETIME NOT NULL,
	end_at DATETIME NOT NULL,
	last_processed DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS faction_projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	faction TEXT NOT NULL,
	progress REAL NOT NULL DEFAULT 0,
	target REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	metadata TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS faction_investments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	faction TEXT NOT NULL,
	amount INTEGER NOT NULL,
	program TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS archive_endowments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player TEXT NOT NULL,
	faction TEXT NOT NULL,
	amount INTEGER NOT NULL,
	program TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS timeline (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	current_year INTEGER NOT NULL DEFAULT 1,
	last_advanced DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Open creates or opens the SQLite database at dbPath, applies the
// schema, and seeds the timeline singleton row.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO timeline (id, current_year, last_advanced) VALUES (1, 1, datetime('now'))`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: seed timeline: %w", err)
	}
	return &Store{db: db, players: make(map[string]*playerRow)}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for callers (the dispatcher) that
// need a transaction spanning multiple store operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

func marshalJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func unmarshalJSON(raw string, dst any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

func timeFromNull(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

func timePtrFromNull(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
