// Package cache stores rendered artifacts keyed by a hash of their inputs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] turns a document hash and render options into a key. Any change
// to the options yields a different key, so entries never need invalidation
// beyond their TTL:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(docJSON), cache.ArtifactKeyOpts{Format: "svg"})
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// DefaultTTL is how long artifacts are kept when callers pass no TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey addresses one rendered output of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string   `json:"format"`
	Slices   []string `json:"slices,omitempty"`
	MinWidth float64  `json:"min_width,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	// Layout is the stored layout ID. Only snapshots report it, so only
	// their keys carry it.
	Layout string `json:"layout,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the document hash together with opts into
// "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	data, _ := json.Marshal([]any{docHash, opts})
	return "artifact:" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Callers hash a document's canonical
// JSON to address its artifacts.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}
