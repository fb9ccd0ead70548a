package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/secureview/internal/db"
	"github.com/google/uuid"
)

// SQLStore keeps blobs in the blobs table
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a store on an open database
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

// Put stores data under a fresh UUID
func (s *SQLStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id := uuid.New().String()

	var err error
	if s.db.Dialect == db.Postgres {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO blobs (id, content_type, size, data)
			VALUES ($1, $2, $3, $4)`,
			id, contentType, len(data), data,
		)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO blobs (id, content_type, size, data, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, contentType, len(data), data, time.Now().UTC().Format(time.RFC3339),
		)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert blob: %w", err)
	}
	return id, nil
}

// Get loads a blob. Malformed IDs are reported as ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (*Blob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	b := &Blob{ID: id}
	var created any
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT content_type, data, created_at FROM blobs WHERE id = ?`),
		id,
	).Scan(&b.ContentType, &b.Data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	switch v := created.(type) {
	case time.Time:
		b.CreatedAt = v
	case string:
		b.CreatedAt, _ = time.Parse(time.RFC3339, v)
	}
	return b, nil
}
