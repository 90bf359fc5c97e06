// Package cache stores rendered export artifacts and previews.
//
// Backends:
//   - [NullCache]: stores nothing (caching disabled)
//   - [MemoryCache]: process-local map, for tests and single-node servers
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// Keys are produced by a [Keyer] from the content hash of the element
// document plus the options that affect the output, so identical documents
// hit the same entry regardless of which project they belong to.
// [ScopedKeyer] adds a prefix, such as the build version.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports a miss with hit=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	TTLArtifact = 24 * time.Hour
	TTLPreview  = time.Hour
)

// ArtifactKeyOpts are the export options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Title     string `json:"title,omitempty"`
	Component string `json:"component,omitempty"`
}

// PreviewKeyOpts are the render options that change a preview page.
type PreviewKeyOpts struct {
	Viewport string `json:"viewport"`
	Mode     string `json:"mode,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
	PreviewKey(docHash string, opts PreviewKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns the key of an export artifact.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// PreviewKey returns the key of a rendered preview page.
func (DefaultKeyer) PreviewKey(docHash string, opts PreviewKeyOpts) string {
	return hashKey("preview", docHash, opts)
}
