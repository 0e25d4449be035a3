// Package cache stores fingerprints of previously exported documents so
// unchanged materials can be skipped on re-export. Backends: a file cache
// for CLI use, a Redis cache for the HTTP service, and a null cache that
// disables skipping entirely.
//
// The cache is strictly an optimization: every operation failure is safe to
// ignore, and a cold or broken cache only means documents are rewritten.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DocKey builds the cache key for one exported document: a library, a
// material, and the style it was encoded in.
func DocKey(library, material, style string) string {
	return hashKey("doc", library, material, style)
}
