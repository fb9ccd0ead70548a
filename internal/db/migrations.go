package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{migrationCreateBlobsSQLite}
	if db.Dialect == Postgres {
		migrations = []string{migrationCreateBlobsPostgres}
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateBlobsSQLite = `
CREATE TABLE IF NOT EXISTS blobs (
    id TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    size INTEGER NOT NULL,
    data BLOB NOT NULL,
    created_at TEXT NOT NULL
);
`

const migrationCreateBlobsPostgres = `
CREATE TABLE IF NOT EXISTS blobs (
    id UUID PRIMARY KEY,
    content_type TEXT NOT NULL,
    size BIGINT NOT NULL,
    data BYTEA NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
