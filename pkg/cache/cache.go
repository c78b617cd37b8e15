// Package cache stores rendered upset artifacts.
//
// # Overview
//
// A [Cache] is a byte store with per-entry TTLs. Four backends are provided:
//
//   - [FileCache]: files under a directory, used by the CLI
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//   - [RedisCache]: a shared Redis instance for the chart server
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// [Open] picks a backend from [Options].
//
// # Keys
//
// A [Keyer] derives keys from the hash of the input file and the options
// that affect the output, so two renders of the same data at the same size
// share one entry. [ScopedKeyer] prefixes keys to keep callers apart.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a key/value store for serialized artifacts.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey is the key of a computed layout.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey is the key of one rendered output format.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	LayoutKeyOpts
	Format   string   `json:"format"`
	Selected []string `json:"selected,omitempty"`
	Palette  string   `json:"palette,omitempty"` // hash of palette overrides
	Scale    float64  `json:"scale,omitempty"`
	Static   bool     `json:"static,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
