// Package cache provides the caching layers used by pointlayer.
//
// Two very different caches live here:
//
//   - [Memo] is a tiny, bounded, in-process map owned by a single layer
//     instance. It memoizes accessors by structural key so that equal column
//     bindings hand back the same accessor pointer.
//   - [Cache] is a byte-oriented artifact store (file, Redis, or null) used by
//     the pipeline runner and the HTTP server to avoid re-rendering outputs for
//     an unchanged dataset and configuration.
//
// Keys for [Cache] are produced by a [Keyer] so that multi-tenant callers can
// wrap the default keyer with a prefix (see [NewScopedKeyer]).
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs for cached pipeline outputs.
const (
	TTLArtifact = 7 * 24 * time.Hour
)

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	ConfigHash string `json:"config_hash"`
	FilterHash string `json:"filter_hash,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Hovered    int    `json:"hovered"`
	Brushing   bool   `json:"brushing,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns the key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
