// Package storage handles operational telemetry persistence in SQLite.
// Recommendation data itself is never persisted — it lives only in the
// in-process cache. SQLite holds LLM call records (cost tracking) and
// refresh-cycle records (served by the stats endpoint).
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Blank import: registers the SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS llm_calls (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    provider     TEXT NOT NULL,
    model        TEXT NOT NULL,
    prompt_chars INTEGER NOT NULL DEFAULT 0,
    success      BOOLEAN NOT NULL DEFAULT 0,
    duration_ms  INTEGER,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS refreshes (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    record_count INTEGER NOT NULL DEFAULT 0,
    fallback     BOOLEAN NOT NULL DEFAULT 0,
    duration_ms  INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_llm_calls_provider ON llm_calls(provider);
CREATE INDEX IF NOT EXISTS idx_refreshes_created_at ON refreshes(created_at);
`

// NewDatabase creates a new SQLite connection and runs migrations.
// The DSN configures SQLite pragmas:
//   - WAL mode: allows concurrent reads while writing
//   - busy_timeout: wait up to 5s instead of failing on lock contention
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
