// Package cache stores fetched page image bytes between runs.
//
// Page images referenced by URL are downloaded once and kept in a [Cache]
// keyed by a hash of the reference. Three backends are provided:
//
//   - [FileCache]: files under ~/.cache/papersync, for the CLI
//   - [RedisCache]: a shared Redis instance, for several server replicas
//   - [Discard]: no caching
//
// Keys come from a [Keyer]; [NewScopedKeyer] prefixes them so that two
// documents served from one Redis never share entries by accident.
package cache

import (
	"context"
	"time"
)

// DefaultPageTTL is how long fetched page bytes stay cached.
const DefaultPageTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// PageKey returns the key for the page image at ref (URL or path).
	PageKey(ref string) string
}

// DefaultKeyer hashes references into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PageKey implements Keyer.
func (DefaultKeyer) PageKey(ref string) string {
	return pageKey(ref)
}
