// Package render provides reference sinks for point layer output.
//
// A real deployment hands [layer.Drawable] values to a GPU engine. The sinks
// here exist so the encoding can be inspected without one:
//
//   - [RenderSVG] draws drawables into a static SVG over the layer bounds
//   - [RenderJSON] evaluates every accessor of a descriptor into plain data
//   - [RenderBraille] rasterizes points onto a terminal braille grid
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool (from librsvg).
//
//	svg := render.RenderSVG(drawables, meta.Bounds, render.WithSize(800, 600))
//	png, err := render.ToPNG(svg, 2.0)
//
// All sinks share [Viewport], an equirectangular projection that fits the
// bounds into the output while keeping the aspect ratio.
package render
