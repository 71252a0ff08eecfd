// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about crop execution, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCropHooks(&myCropHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Crop().OnRenderStart(ctx, docs, width, height)
//	// ... render ...
//	observability.Crop().OnRenderComplete(ctx, docs, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Crop Hooks
// =============================================================================

// CropHooks receives events from the crop pipeline.
type CropHooks interface {
	// OnNormalize fires once per batch after every document was parsed.
	OnNormalize(ctx context.Context, docs int, duration time.Duration, err error)

	// Render events. width and height are the canvas size in pixels.
	OnRenderStart(ctx context.Context, docs, width, height int)
	OnRenderComplete(ctx context.Context, docs int, duration time.Duration, err error)

	// OnExtractComplete fires after boundary extraction and remapping.
	OnExtractComplete(ctx context.Context, docs int, duration time.Duration, err error)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCropHooks is a no-op implementation of CropHooks.
type NoopCropHooks struct{}

func (NoopCropHooks) OnNormalize(context.Context, int, time.Duration, error)       {}
func (NoopCropHooks) OnRenderStart(context.Context, int, int, int)                 {}
func (NoopCropHooks) OnRenderComplete(context.Context, int, time.Duration, error)  {}
func (NoopCropHooks) OnExtractComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	cropHooks  CropHooks  = NoopCropHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetCropHooks registers custom crop hooks.
// This should be called once at application startup before any crop operations.
func SetCropHooks(h CropHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cropHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Crop returns the registered crop hooks.
func Crop() CropHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cropHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cropHooks = NoopCropHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
