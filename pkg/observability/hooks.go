// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about render execution, channel traffic, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    observability.SetChannelHooks(&myChannelHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, rev)
//	// ... do layout ...
//	observability.Render().OnRenderComplete(ctx, rev, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the view's render lifecycle.
type RenderHooks interface {
	// OnRenderStart records a render request entering the layout engine.
	OnRenderStart(ctx context.Context, rev uint64)

	// OnRenderComplete records a finished render attempt. Superseded
	// completions are reported with superseded=true and a nil error.
	OnRenderComplete(ctx context.Context, rev uint64, nodeCount int, duration time.Duration, superseded bool, err error)
}

// =============================================================================
// Channel Hooks
// =============================================================================

// ChannelHooks receives events from message channel endpoints.
type ChannelHooks interface {
	// OnSend records a message queued for the peer.
	OnSend(ctx context.Context, msgType string)

	// OnReceive records a message handed to the receiving event loop.
	OnReceive(ctx context.Context, msgType string)

	// OnDrop records a message that could not be delivered.
	OnDrop(ctx context.Context, msgType string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, uint64) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, uint64, int, time.Duration, bool, error) {
}

// NoopChannelHooks is a no-op implementation of ChannelHooks.
type NoopChannelHooks struct{}

func (NoopChannelHooks) OnSend(context.Context, string)    {}
func (NoopChannelHooks) OnReceive(context.Context, string) {}
func (NoopChannelHooks) OnDrop(context.Context, string)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks  RenderHooks  = NoopRenderHooks{}
	channelHooks ChannelHooks = NoopChannelHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any renders run.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetChannelHooks registers custom channel hooks.
// This should be called once at application startup before any channel opens.
func SetChannelHooks(h ChannelHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		channelHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Channel returns the registered channel hooks.
func Channel() ChannelHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return channelHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	channelHooks = NoopChannelHooks{}
	cacheHooks = NoopCacheHooks{}
}
