package render

import (
	"math"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/layer"
)

// maxBrailleRadius caps point disks so dense layers stay legible.
const maxBrailleRadius = 3

// BrailleFrame is a terminal rendering of point drawables. Each cell holds
// a 2x4 grid of braille dots.
type BrailleFrame struct {
	Cols, Rows int
	Lines      []string
	// Colors holds the fill color of the last point drawn in each cell.
	// Empty cells are the zero color.
	Colors   [][]color.RGBA
	viewport Viewport
}

type brailleBuf struct {
	w, h   int
	m      [][]uint8
	colors [][]color.RGBA
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	c := make([][]color.RGBA, h)
	for i := range m {
		m[i] = make([]uint8, w)
		c[i] = make([]color.RGBA, w)
	}
	return &brailleBuf{w: w, h: h, m: m, colors: c}
}

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a dot at micro coordinates.
func (b *brailleBuf) setPixel(mx, my int, c color.RGBA) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= brailleBits[mx%2][my%4]
	b.colors[cy][cx] = c
}

func (b *brailleBuf) disk(x, y, r float64, c color.RGBA) {
	if r < 1 {
		b.setPixel(int(math.Floor(x)), int(math.Floor(y)), c)
		return
	}
	r2 := r * r
	for my := int(math.Floor(y - r)); my <= int(math.Ceil(y+r)); my++ {
		for mx := int(math.Floor(x - r)); mx <= int(math.Ceil(x+r)); mx++ {
			dx, dy := float64(mx)+0.5-x, float64(my)+0.5-y
			if dx*dx+dy*dy <= r2 {
				b.setPixel(mx, my, c)
			}
		}
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := range b.h {
		row := make([]rune, b.w)
		for x := range b.w {
			if mask := b.m[y][x]; mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

// RenderBraille rasterizes the scatterplot drawables onto a cols x rows
// grid. Text drawables are skipped.
func RenderBraille(drawables []layer.Drawable, bounds layer.Bounds, cols, rows int) BrailleFrame {
	cols, rows = max(cols, 1), max(rows, 1)
	v := NewViewport(bounds, float64(cols*2), float64(rows*4), 1)
	buf := newBrailleBuf(cols, rows)

	for _, d := range drawables {
		if d.Kind != layer.KindScatterplot {
			continue
		}
		for _, pt := range d.Data {
			pos := d.GetPosition.At(pt)
			x, y := v.Project(pos[0], pos[1])
			r := math.Min(pixelRadius(v, d.GetRadius.At(pt), d.Props, 0), maxBrailleRadius)
			c := d.GetFillColor.At(pt)
			if !d.Props.Filled {
				c = d.GetLineColor.At(pt)
			}
			buf.disk(x, y, r, c)
		}
	}

	return BrailleFrame{
		Cols:     cols,
		Rows:     rows,
		Lines:    buf.toLines(),
		Colors:   buf.colors,
		viewport: v,
	}
}

// LngLatAt returns the map position at the center of a cell.
func (f BrailleFrame) LngLatAt(cx, cy int) (lng, lat float64) {
	return f.viewport.Unproject(float64(cx)*2+1, float64(cy)*4+2)
}

// CellAt returns the cell a map position falls in.
func (f BrailleFrame) CellAt(lng, lat float64) (cx, cy int, ok bool) {
	x, y := f.viewport.Project(lng, lat)
	cx, cy = int(math.Floor(x/2)), int(math.Floor(y/4))
	ok = cx >= 0 && cy >= 0 && cx < f.Cols && cy < f.Rows
	return cx, cy, ok
}

// Nearest returns the point of d closest to cell (cx, cy), measured in
// cells. ok is false when d has no points.
func (f BrailleFrame) Nearest(d layer.Drawable, cx, cy int) (p layer.DataPoint, ok bool) {
	best := math.Inf(1)
	for _, pt := range d.Data {
		pos := d.GetPosition.At(pt)
		x, y := f.viewport.Project(pos[0], pos[1])
		dx, dy := x/2-(float64(cx)+0.5), y/4-(float64(cy)+0.5)
		if dist := dx*dx + dy*dy; dist < best {
			best, p, ok = dist, pt, true
		}
	}
	return p, ok
}
