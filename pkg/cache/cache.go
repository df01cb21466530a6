// Package cache provides content-addressed caching for layout results and
// rendered artifacts.
//
// Layout is the expensive step of the render path: the same document content
// always produces the same node geometry and SVG, so results are cached under
// a hash of the content plus the layout options. Several backends are
// available:
//
//   - FileCache: per-machine cache under a directory, used by the CLI
//   - RedisCache: shared cache for hosts serving many views
//   - MongoCache: durable cache backed by a collection
//   - NullCache: disables caching
//
// All backends implement the Cache interface and store opaque bytes; key
// construction lives in the Keyer so backends stay interchangeable.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached layouts stay valid. Layouts are pure
// functions of their key, so the TTL only bounds storage growth.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key-value store with expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the options that change layout output for identical
// content.
type LayoutKeyOpts struct {
	Engine string // layout engine name, e.g. "dot"
}

// ArtifactKeyOpts are the options that change a rendered artifact for an
// identical layout.
type ArtifactKeyOpts struct {
	Format string // artifact format, e.g. "svg"
}

// Keyer generates cache keys for the different cached value types.
type Keyer interface {
	// LayoutKey generates a key for a layout result given the document
	// content hash.
	LayoutKey(contentHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact given the
	// layout hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: typed prefix plus SHA-256 over
// the identifying inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a layout result.
func (k *DefaultKeyer) LayoutKey(contentHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", contentHash, opts.Engine)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format)
}
