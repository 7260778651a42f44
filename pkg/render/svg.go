package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/ajstarks/svgo"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/layer"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	padding       float64
	background    string
	title         string
	minRadius     float64
	fontFamily    string
}

// WithSize sets the canvas size in pixels. The default is 800x600.
func WithSize(w, h float64) SVGOption { return func(r *svgRenderer) { r.width, r.height = w, h } }

// WithPadding sets the margin kept clear around the layer bounds.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithBackground sets the canvas fill. An empty color leaves the canvas
// transparent.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithTitle adds a <title> element to the document.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithMinRadius keeps points visible when their radius projects to less
// than px pixels.
func WithMinRadius(px float64) SVGOption { return func(r *svgRenderer) { r.minRadius = px } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		width:      800,
		height:     600,
		padding:    24,
		background: "#1c1c1c",
		minRadius:  1,
		fontFamily: "Helvetica, Arial, sans-serif",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws drawables in order, so overlays land on top of the
// layer they decorate. Coordinates are rounded to whole pixels.
func RenderSVG(drawables []layer.Drawable, bounds layer.Bounds, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	v := NewViewport(bounds, r.width, r.height, r.padding)
	w, h := px(r.width), px(r.height)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	if r.title != "" {
		canvas.Title(r.title)
	}
	if r.background != "" {
		canvas.Rect(0, 0, w, h, attr("fill", r.background))
	}

	for _, d := range drawables {
		switch d.Kind {
		case layer.KindScatterplot:
			renderPoints(canvas, v, d, r.minRadius)
		case layer.KindText:
			renderLabels(canvas, v, d, r.fontFamily)
		}
	}

	canvas.End()
	return buf.Bytes()
}

func renderPoints(canvas *svg.SVG, v Viewport, d layer.Drawable, minRadius float64) {
	p := d.Props
	canvas.Group(attr("id", d.ID), `class="points"`)
	for _, pt := range d.Data {
		pos := d.GetPosition.At(pt)
		x, y := v.Project(pos[0], pos[1])
		rad := pixelRadius(v, d.GetRadius.At(pt), p, minRadius)

		style := []string{fmt.Sprintf(`data-index="%d"`, pt.Index)}
		if p.Filled {
			c := d.GetFillColor.At(pt)
			style = append(style, attr("fill", c.Hex()), fmt.Sprintf(`fill-opacity="%.3f"`, p.Opacity*c.Opacity()))
		} else {
			style = append(style, `fill="none"`)
		}
		if p.Stroked {
			c := d.GetLineColor.At(pt)
			style = append(style, attr("stroke", c.Hex()),
				fmt.Sprintf(`stroke-width="%.2f"`, p.LineWidthScale),
				fmt.Sprintf(`stroke-opacity="%.3f"`, p.Opacity*c.Opacity()))
		}
		canvas.Circle(px(x), px(y), px(rad), style...)
	}
	canvas.Gend()
}

var textAnchors = map[string]string{"start": "start", "middle": "middle", "end": "end"}
var baselines = map[string]string{"top": "hanging", "center": "middle", "bottom": "auto"}

func renderLabels(canvas *svg.SVG, v Viewport, d layer.Drawable, fontFamily string) {
	p := d.Props
	anchor := textAnchors[p.TextAnchor]
	if anchor == "" {
		anchor = "start"
	}
	baseline := baselines[p.TextAlignment]
	if baseline == "" {
		baseline = "middle"
	}
	fill := p.TextColor
	if fill.IsZero() {
		fill = color.RGB(255, 255, 255)
	}

	canvas.Group(attr("id", d.ID), `class="labels"`,
		attr("font-family", fontFamily),
		fmt.Sprintf(`font-size="%.1f"`, p.TextSize),
		attr("fill", fill.Hex()),
		attr("text-anchor", anchor),
		attr("dominant-baseline", baseline))
	for _, pt := range d.Data {
		text := d.GetText.At(pt)
		if text == "" {
			continue
		}
		pos := d.GetPosition.At(pt)
		x, y := v.Project(pos[0], pos[1])
		canvas.Text(px(x+p.TextOffset[0]), px(y+p.TextOffset[1]), text)
	}
	canvas.Gend()
}

// attr formats an escaped name="value" attribute for svgo's style arguments.
func attr(name, value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return name + `="` + buf.String() + `"`
}

func px(f float64) int { return int(math.Round(f)) }
