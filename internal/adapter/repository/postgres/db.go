package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=etfguard sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the tables the repositories need. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                UUID PRIMARY KEY,
	telegram_chat_id  BIGINT NOT NULL UNIQUE,
	telegram_username TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id            UUID PRIMARY KEY,
	user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	symbol        VARCHAR(10) NOT NULL,
	quantity      INTEGER NOT NULL CHECK (quantity > 0),
	average_price NUMERIC(19, 4) NOT NULL CHECK (average_price > 0),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, symbol)
);

CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions (symbol);

CREATE TABLE IF NOT EXISTS dividends (
	id               UUID PRIMARY KEY,
	symbol           VARCHAR(10) NOT NULL,
	ex_dividend_date DATE NOT NULL,
	payment_date     DATE NOT NULL,
	amount_per_share NUMERIC(19, 4) NOT NULL,
	roc_percentage   NUMERIC(7, 4),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (symbol, ex_dividend_date)
);

CREATE TABLE IF NOT EXISTS instruments (
	symbol               VARCHAR(10) PRIMARY KEY,
	name                 TEXT NOT NULL,
	types                TEXT[] NOT NULL,
	payment_day_of_month INTEGER NOT NULL,
	description          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS instrument_readings (
	id                UUID PRIMARY KEY,
	symbol            VARCHAR(10) NOT NULL,
	price             NUMERIC(19, 4) NOT NULL,
	nav               NUMERIC(19, 4) NOT NULL,
	as_of             DATE NOT NULL,
	premium           NUMERIC(12, 4),
	leverage          NUMERIC(12, 4),
	previous_leverage NUMERIC(12, 4),
	roc_percentage    NUMERIC(7, 4),
	nasdaq_trend      NUMERIC(12, 4),
	last_distribution NUMERIC(19, 4),
	recorded_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_instrument_readings_latest ON instrument_readings (symbol, recorded_at DESC);
`
