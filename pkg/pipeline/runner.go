package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pointlayer/pkg/cache"
		"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/observability"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the preview share it to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → format → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	ds, cfg, err := r.Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.Config = cfg
	result.Stats.Rows = ds.Len()
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded dataset",
		"id", ds.ID,
		"rows", ds.Len(),
		"fields", len(ds.Fields),
		"duration", result.Stats.LoadTime)

	// Stage 2: Format
	formatStart := time.Now()
	id := opts.LayerID
	if id == "" {
		id = ds.ID
	}
	l := layer.NewPointLayer(cfg, layer.WithID(id), layer.WithLogger(opts.Logger))
	d, err := l.FormatLayerData(ctx, ds, opts.FilteredRows(ds), false)
	if err != nil {
		return nil, fmt.Errorf("format layer %s: %w", id, err)
	}
	result.Layer = l
	result.Descriptor = d
	result.Meta = l.Meta()
	result.Stats.Retained = len(d.Data)
	result.Stats.FormatTime = time.Since(formatStart)

	r.Logger.Info("formatted layer",
		"layer", id,
		"retained", len(d.Data),
		"labels", len(d.LabelCharacterSet),
		"duration", result.Stats.FormatTime)

	// Stage 3: Render
	renderStart := time.Now()
	in := RenderInput{Layer: l, Descriptor: d, DatasetHash: ds.Hash}
	result.Drawables = Drawables(ctx, in, opts)
	result.Stats.Drawables = len(result.Drawables)
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Prepare loads the dataset and resolves the layer config.
func (r *Runner) Prepare(ctx context.Context, opts Options) (*table.Dataset, layer.Config, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, layer.Config{}, err
	}

	start := time.Now()
	ds, err := Load(opts)
	rows := 0
	if ds != nil {
		rows = ds.Len()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.DataPath, rows, time.Since(start), err)
	if err != nil {
		return nil, layer.Config{}, err
	}

	cfg, err := ResolveConfig(ds, opts)
	if err != nil {
		return nil, layer.Config{}, err
	}
	opts.Logger.Debug("resolved layer config",
		"lat", cfg.Columns.Lat.Value,
		"lng", cfg.Columns.Lng.Value,
		"color", fieldName(cfg.ColorField),
		"size", fieldName(cfg.SizeField))
	return ds, cfg, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, in RenderInput, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	configHash := renderHash(in.Layer, opts)

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(in.DatasetHash, opts.ArtifactKeyOpts(format, configHash))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact:"+format)
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact:"+format)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	start := time.Now()
	drawables := Drawables(ctx, in, opts)
	artifacts, err := RenderArtifacts(in, drawables, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(in.DatasetHash, opts.ArtifactKeyOpts(format, configHash))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact:"+format, len(data))
	}

	return artifacts, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, in RenderInput, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, in, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func fieldName(f *table.Field) string {
	if f == nil {
		return ""
	}
	return f.Name
}
