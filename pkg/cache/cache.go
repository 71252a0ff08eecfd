// Package cache stores crop results keyed by document content and options.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: shared cache with a TTL index
//
// Keys come from a [Keyer] so that deployments can namespace them
// ([ScopedKeyer]) without touching the pipeline.
package cache

import (
	"context"
	"time"
)

// TTLCrop is how long a cropped viewBox stays cached. A result depends only
// on the document bytes and the crop options, so it never goes stale; the
// TTL just bounds storage.
const TTLCrop = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. hit is false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// NullCache never stores anything; every Get misses. It is used when
// caching is disabled.
type NullCache struct{}

// NewNullCache returns a disabled cache.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
