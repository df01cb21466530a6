package layout

import (
	"context"
	"encoding/json"

	"github.com/flowpane/flowpane/pkg/cache"
	"github.com/flowpane/flowpane/pkg/observability"
)

// namer is implemented by engines that identify themselves for cache keys.
type namer interface {
	Name() string
}

// Cached decorates an Engine with a content-addressed result cache.
// Layout results are pure functions of their content, so a hit is always
// valid; corrupt entries fall through to the inner engine.
type Cached struct {
	inner Engine
	store cache.Cache
	keyer cache.Keyer
	opts  cache.LayoutKeyOpts
}

// NewCached wraps engine with the given cache backend. A nil keyer uses
// the default key scheme.
func NewCached(engine Engine, store cache.Cache, keyer cache.Keyer) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	opts := cache.LayoutKeyOpts{}
	if n, ok := engine.(namer); ok {
		opts.Engine = n.Name()
	}
	return &Cached{inner: engine, store: store, keyer: keyer, opts: opts}
}

// Layout returns the cached result for content, or delegates to the inner
// engine and stores the outcome. Cache failures are logged as misses and
// never fail the layout.
func (c *Cached) Layout(ctx context.Context, content string) (*Result, error) {
	key := c.keyer.LayoutKey(cache.Hash([]byte(content)), c.opts)

	if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
		var result Result
		if err := json.Unmarshal(data, &result); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return &result, nil
		}
		// Corrupt entry: drop it and recompute.
		_ = c.store.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	result, err := c.inner.Layout(ctx, content)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.store.Set(ctx, key, data, cache.DefaultTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return result, nil
}

// Close releases the cache backend.
func (c *Cached) Close() error {
	return c.store.Close()
}

// Ensure Cached implements Engine.
var _ Engine = (*Cached)(nil)
