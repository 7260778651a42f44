// Package pkg provides the core libraries for pointlayer.
//
// # Overview
//
// Pointlayer turns rows of a tabular dataset into map points: a position per
// row, plus fill color, outline color, radius and an optional text label
// derived from dataset fields through scales. The packages are organized as:
//
//  1. [table] - Datasets (CSV, GeoJSON) and lat/lng column detection
//  2. [scale], [color] - Scale functions and color ranges
//  3. [layer] - The point layer: formatting passes, render descriptors, drawables
//  4. [config] - TOML layer configuration bound against a dataset
//  5. [render] - Reference sinks (SVG, JSON, PNG, PDF, braille)
//  6. [pipeline] - Orchestration (load → format → render) with artifact caching
//  7. [cache], [errors], [observability] - Shared infrastructure
//
// # Architecture
//
//	CSV / GeoJSON
//	     ↓
//	[table] Dataset
//	     ↓
//	[layer] FormatLayerData → Descriptor (accessors, bounds, glyph set)
//	     ↓
//	[layer] RenderLayer → Drawables (points, hovered overlay, labels)
//	     ↓
//	[render] SVG / PNG / PDF / JSON
//
// A [layer.PointLayer] keeps the accessors, scales and the previous pass so
// that a repeated pass over unchanged data only recomputes what changed.
//
// # Quick Start
//
//	ds, _ := table.Load("trips.csv", "")
//	cfg := layer.FindDefaultLayerProps(ds, nil)[0].UpdateLayerDomain(ds)
//	l := layer.NewPointLayer(cfg)
//
//	d, _ := l.FormatLayerData(ctx, ds, ds.AllIndices(), false)
//	drawables := l.RenderLayer(ctx, d, layer.InteractionContext{})
//	svg := render.RenderSVG(drawables, l.Meta().Bounds)
//
// [table]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/table
// [scale]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/scale
// [color]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/color
// [layer]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/layer
// [config]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/observability
// [layer.PointLayer]: https://pkg.go.dev/github.com/matzehuels/pointlayer/pkg/layer#PointLayer
package pkg
