package layer

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/pointlayer/pkg/table"
)

// Bounds is the lng/lat envelope of every valid position in a dataset.
type Bounds struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

// Bound converts to an orb bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLng, b.MinLat},
		Max: orb.Point{b.MaxLng, b.MaxLat},
	}
}

// Center returns the middle of the envelope as [lng, lat].
func (b Bounds) Center() [2]float64 {
	c := b.Bound().Center()
	return [2]float64{c.Lon(), c.Lat()}
}

// ComputeBounds scans every row, not just the filtered ones, so framing does
// not move with the filter. Rows with a non-finite coordinate are skipped.
// The result is clamped to lng [-180, 180] and lat [-90, 90]; ok is false
// when no row has a valid position.
func ComputeBounds(rows []table.Row, acc *PositionAccessor) (Bounds, bool) {
	var (
		bound orb.Bound
		found bool
	)
	for _, r := range rows {
		p := acc.At(r)
		if !finite3(p) {
			continue
		}
		pt := orb.Point{p[0], p[1]}
		if !found {
			bound = pt.Bound()
			found = true
			continue
		}
		bound = bound.Extend(pt)
	}
	if !found {
		return Bounds{}, false
	}
	return Bounds{
		MinLng: clamp(bound.Min.Lon(), -180, 180),
		MinLat: clamp(bound.Min.Lat(), -90, 90),
		MaxLng: clamp(bound.Max.Lon(), -180, 180),
		MaxLat: clamp(bound.Max.Lat(), -90, 90),
	}, true
}

func finite3(p [3]float64) bool {
	return table.IsFinite(p[0]) && table.IsFinite(p[1]) && table.IsFinite(p[2])
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
