package blobstore

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache"
	"github.com/existflow/secureview/internal/logger"
)

// DefaultCacheTTL is how long a fetched blob stays in memory
const DefaultCacheTTL = 10 * time.Minute

// cacheShards is kept low so that a shard of a bounded cache can still hold
// a maximum-size upload
const cacheShards = 16

// CacheConfig sizes the read cache
type CacheConfig struct {
	Size int // MB, 0 means unbounded
	TTL  time.Duration
}

// CachedStore serves repeated reads of the same blob from memory. Links are
// opened many times within their hour, each open fetching the whole PDF.
type CachedStore struct {
	Store
	cache *bigcache.BigCache
}

// NewCachedStore wraps store with a bigcache read cache
func NewCachedStore(store Store, config CacheConfig) (*CachedStore, error) {
	defaults := bigcache.DefaultConfig(DefaultCacheTTL)
	defaults.Shards = cacheShards

	if config.TTL != 0 {
		defaults.LifeWindow = config.TTL
	}

	if config.Size != 0 {
		defaults.HardMaxCacheSize = config.Size
	}

	cache, err := bigcache.NewBigCache(defaults)
	if err != nil {
		return nil, err
	}

	return &CachedStore{Store: store, cache: cache}, nil
}

// Put stores the blob and primes the cache with it
func (c *CachedStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id, err := c.Store.Put(ctx, data, contentType)
	if err != nil {
		return "", err
	}
	c.set(&Blob{ID: id, ContentType: contentType, Data: data, CreatedAt: time.Now()})
	return id, nil
}

// Get returns the cached blob or loads it from the underlying store
func (c *CachedStore) Get(ctx context.Context, id string) (*Blob, error) {
	if entry, err := c.cache.Get(id); err == nil {
		if b, ok := decodeEntry(id, entry); ok {
			return b, nil
		}
	}

	b, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(b)
	return b, nil
}

// Close releases the cache
func (c *CachedStore) Close() error {
	return c.cache.Close()
}

func (c *CachedStore) set(b *Blob) {
	if err := c.cache.Set(b.ID, encodeEntry(b)); err != nil {
		logger.Warn("Failed to cache blob", logger.F("id", b.ID), logger.F("error", err))
	}
}

// entry layout: created (8 bytes, unix ms) | content type length (2 bytes) |
// content type | data
func encodeEntry(b *Blob) []byte {
	buf := make([]byte, 10, 10+len(b.ContentType)+len(b.Data))
	binary.BigEndian.PutUint64(buf[0:8], uint64(b.CreatedAt.UnixMilli()))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(b.ContentType)))
	buf = append(buf, b.ContentType...)
	return append(buf, b.Data...)
}

func decodeEntry(id string, entry []byte) (*Blob, bool) {
	if len(entry) < 10 {
		return nil, false
	}
	created := int64(binary.BigEndian.Uint64(entry[0:8]))
	n := int(binary.BigEndian.Uint16(entry[8:10]))
	if len(entry) < 10+n {
		return nil, false
	}
	return &Blob{
		ID:          id,
		CreatedAt:   time.UnixMilli(created),
		ContentType: string(entry[10 : 10+n]),
		Data:        entry[10+n:],
	}, true
}
