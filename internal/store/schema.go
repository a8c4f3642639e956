package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func DialectOf(db *sqlx.DB) Dialect {
	switch db.DriverName() {
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return Postgres
	}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS scs (
		id BIGINT PRIMARY KEY,
		request_date DATE,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		requester TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		purchase_date DATE,
		order_id BIGINT,
		lead_time_days BIGINT,
		payment_term_days BIGINT,
		amount NUMERIC CHECK (amount >= 0),
		supplier TEXT NOT NULL DEFAULT '',
		buyer TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS scs_order_id_idx ON scs (order_id)`,
	`CREATE TABLE IF NOT EXISTS savings (
		id BIGINT PRIMARY KEY,
		saving_date DATE,
		order_id BIGINT,
		supplier TEXT NOT NULL DEFAULT '',
		initial_amount NUMERIC,
		final_amount NUMERIC,
		reduction_amount NUMERIC,
		reduction_percent NUMERIC,
		negotiation_notes TEXT NOT NULL DEFAULT '',
		saving_type TEXT NOT NULL DEFAULT '',
		buyer TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_snapshot (
		upload_time TIMESTAMPTZ NOT NULL,
		source_file TEXT NOT NULL,
		sc_count INTEGER NOT NULL,
		saving_count INTEGER NOT NULL,
		missing_columns TEXT NOT NULL DEFAULT '[]'
	)`,
}

// SQLite keeps dates, instants and money as TEXT so nothing is coerced
// through REAL on the way in.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS scs (
		id INTEGER PRIMARY KEY,
		request_date TEXT,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		requester TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		purchase_date TEXT,
		order_id INTEGER,
		lead_time_days INTEGER,
		payment_term_days INTEGER,
		amount TEXT CHECK (amount IS NULL OR CAST(amount AS REAL) >= 0),
		supplier TEXT NOT NULL DEFAULT '',
		buyer TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS scs_order_id_idx ON scs (order_id)`,
	`CREATE TABLE IF NOT EXISTS savings (
		id INTEGER PRIMARY KEY,
		saving_date TEXT,
		order_id INTEGER,
		supplier TEXT NOT NULL DEFAULT '',
		initial_amount TEXT,
		final_amount TEXT,
		reduction_amount TEXT,
		reduction_percent TEXT,
		negotiation_notes TEXT NOT NULL DEFAULT '',
		saving_type TEXT NOT NULL DEFAULT '',
		buyer TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_snapshot (
		upload_time TEXT NOT NULL,
		source_file TEXT NOT NULL,
		sc_count INTEGER NOT NULL,
		saving_count INTEGER NOT NULL,
		missing_columns TEXT NOT NULL DEFAULT '[]'
	)`,
}

// Migrate creates the tables for the connected dialect. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := postgresSchema
	if DialectOf(db) == SQLite {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
