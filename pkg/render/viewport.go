package render

import (
	"math"

	"github.com/matzehuels/pointlayer/pkg/layer"
)

const (
	metersPerDegree = 111320.0
	tileSize        = 256.0
	maxZoom         = 20.0
)

// Viewport maps lng/lat onto a width x height canvas. The bounds are
// centered and scaled uniformly to fit inside the padding.
type Viewport struct {
	Width, Height float64
	bounds        layer.Bounds
	scale         float64 // pixels per degree
	originX       float64
	originY       float64
}

// NewViewport fits bounds into the canvas. Degenerate bounds (a single
// point) are centered at an arbitrary scale of one pixel per meter.
func NewViewport(b layer.Bounds, width, height, padding float64) Viewport {
	innerW := math.Max(width-2*padding, 1)
	innerH := math.Max(height-2*padding, 1)
	dx := b.MaxLng - b.MinLng
	dy := b.MaxLat - b.MinLat

	var s float64
	switch {
	case dx > 0 && dy > 0:
		s = math.Min(innerW/dx, innerH/dy)
	case dx > 0:
		s = innerW / dx
	case dy > 0:
		s = innerH / dy
	default:
		s = metersPerDegree
	}

	return Viewport{
		Width:   width,
		Height:  height,
		bounds:  b,
		scale:   s,
		originX: (width - dx*s) / 2,
		originY: (height - dy*s) / 2,
	}
}

// Project returns canvas coordinates. y grows downward.
func (v Viewport) Project(lng, lat float64) (x, y float64) {
	x = v.originX + (lng-v.bounds.MinLng)*v.scale
	y = v.originY + (v.bounds.MaxLat-lat)*v.scale
	return x, y
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(x, y float64) (lng, lat float64) {
	lng = v.bounds.MinLng + (x-v.originX)/v.scale
	lat = v.bounds.MaxLat - (y-v.originY)/v.scale
	return lng, lat
}

// MetersPerPixel approximates ground distance per canvas pixel at the
// equator.
func (v Viewport) MetersPerPixel() float64 {
	return metersPerDegree / v.scale
}

// FitZoom returns the web-map zoom level at which b spans width x height
// pixels, capped to [0, 20].
func FitZoom(b layer.Bounds, width, height float64) float64 {
	dx := b.MaxLng - b.MinLng
	dy := b.MaxLat - b.MinLat
	if dx <= 0 && dy <= 0 {
		return maxZoom
	}
	z := maxZoom
	if dx > 0 {
		z = math.Min(z, math.Log2(width*360/(tileSize*dx)))
	}
	if dy > 0 {
		z = math.Min(z, math.Log2(height*180/(tileSize*dy)))
	}
	return math.Max(0, math.Min(maxZoom, z))
}

// pixelRadius converts a radius in meters, scaled as an engine would, into
// canvas pixels clamped to [minPx, maxPx]. maxPx 0 means unbounded.
func pixelRadius(v Viewport, meters float64, p layer.Props, minPx float64) float64 {
	r := meters * p.RadiusScale / v.MetersPerPixel()
	if p.RadiusMaxPixels > 0 {
		r = math.Min(r, p.RadiusMaxPixels)
	}
	return math.Max(r, minPx)
}
