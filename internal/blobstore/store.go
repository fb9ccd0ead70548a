// Package blobstore keeps uploaded documents and serves them back by ID.
package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown blob IDs
var ErrNotFound = errors.New("blob not found")

// Blob is a stored document
type Blob struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Store puts and gets blobs
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) (*Blob, error)
}
