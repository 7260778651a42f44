// Package observability provides hooks for metrics, tracing, and logging.
//
// Hooks let a host application observe formatting passes and cache traffic
// without pointlayer depending on a particular metrics backend. Defaults are
// no-ops; main registers real implementations at startup.
//
//	observability.SetLayerHooks(&promLayerHooks{})
//
// Libraries emit events through the registry:
//
//	observability.Layer().OnFormat(ctx, layerID, stats)
package observability

import (
	"context"
	"sync"
	"time"
)

// FormatStats describes one formatting pass of a layer.
type FormatStats struct {
	// RowsCold is true when the retained row set was rebuilt (bounds are
	// recomputed too when BoundsUpdated is set).
	RowsCold bool `json:"rows_cold"`
	// GlyphsCold is true when the label glyph set was rebuilt.
	GlyphsCold bool `json:"glyphs_cold"`
	// BoundsUpdated is true when the position accessor changed.
	BoundsUpdated bool `json:"bounds_updated"`
	// Retained and Dropped count rows kept and rejected by the finite-position filter.
	Retained int           `json:"retained"`
	Dropped  int           `json:"dropped"`
	Duration time.Duration `json:"duration_ns"`
}

// LayerHooks receives events from layer formatting and rendering.
type LayerHooks interface {
	OnFormat(ctx context.Context, layerID string, stats FormatStats)
	OnRender(ctx context.Context, layerID string, drawables int, duration time.Duration)
}

// PipelineHooks receives events from the pipeline runner.
type PipelineHooks interface {
	OnLoadComplete(ctx context.Context, source string, rows int, duration time.Duration, err error)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopLayerHooks is a no-op implementation of LayerHooks.
type NoopLayerHooks struct{}

func (NoopLayerHooks) OnFormat(context.Context, string, FormatStats)        {}
func (NoopLayerHooks) OnRender(context.Context, string, int, time.Duration) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	layerHooks    LayerHooks    = NoopLayerHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetLayerHooks registers custom layer hooks. Nil is ignored.
func SetLayerHooks(h LayerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layerHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layer returns the registered layer hooks.
func Layer() LayerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layerHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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
	layerHooks = NoopLayerHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
