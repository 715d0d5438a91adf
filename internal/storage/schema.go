// ABOUTME: SQL schema definition and initialization.
// ABOUTME: Defines tables for log records, separators, and history order.
package storage

import "strings"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS log_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_name TEXT NOT NULL,
	muscle TEXT,
	sets INTEGER,
	reps INTEGER,
	weight REAL,
	logged_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS separators (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_order (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL CHECK (kind IN ('EXERCISE', 'SEPARATOR')),
	item_id INTEGER NOT NULL,
	position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_log_records_logged ON log_records(logged_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_order_position ON history_order(position);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS log_records (
	id BIGSERIAL PRIMARY KEY,
	exercise_name TEXT NOT NULL,
	muscle TEXT,
	sets INTEGER,
	reps INTEGER,
	weight DOUBLE PRECISION,
	logged_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS separators (
	id BIGSERIAL PRIMARY KEY,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history_order (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL CHECK (kind IN ('EXERCISE', 'SEPARATOR')),
	item_id BIGINT NOT NULL,
	position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_log_records_logged ON log_records(logged_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_order_position ON history_order(position);
`

// initSchema creates or updates the database schema.
// Statements run one at a time so every driver accepts them.
func (d *DB) initSchema() error {
	schema := sqliteSchema
	if d.dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
