package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS detections (
    id TEXT PRIMARY KEY,
    is_ai_generated INTEGER NOT NULL,
    confidence REAL NOT NULL,
    model_consensus TEXT NOT NULL,
    reasoning TEXT NOT NULL,
    indicators TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
