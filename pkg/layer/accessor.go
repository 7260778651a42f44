package layer

import (
	"github.com/matzehuels/pointlayer/pkg/table"
)

// accessorMemoSize bounds the per-layer accessor memos. One slot holds the
// current binding; the second lets a binding toggle back without a rebuild.
const accessorMemoSize = 2

// DataPoint is a retained row together with its index in the dataset.
type DataPoint struct {
	Index int       `json:"index"`
	Row   table.Row `json:"row"`
}

// positionKey is the structural identity of a position accessor.
type positionKey struct {
	lat, lng, alt int
}

// PositionAccessor derives [lng, lat, altitude] from a row. Layers hand out
// one pointer per structural key, so pointer equality means "same columns".
type PositionAccessor struct {
	key positionKey
}

// At returns the row's position. Unbound altitude is 0; values that are not
// numbers come back as NaN.
func (a *PositionAccessor) At(r table.Row) [3]float64 {
	alt := 0.0
	if a.key.alt >= 0 {
		alt = table.Float(r.At(a.key.alt))
	}
	return [3]float64{
		table.Float(r.At(a.key.lng)),
		table.Float(r.At(a.key.lat)),
		alt,
	}
}

// Columns returns the lat, lng and altitude field indices.
func (a *PositionAccessor) Columns() (lat, lng, alt int) {
	return a.key.lat, a.key.lng, a.key.alt
}

// TextAccessor derives label text from a row.
type TextAccessor struct {
	field int
}

// At returns the label of a row. Missing values render as "".
func (a *TextAccessor) At(r table.Row) string {
	return table.String(r.At(a.field))
}

// Field returns the label field index.
func (a *TextAccessor) Field() int {
	return a.field
}

// PositionAccessor returns the memoized accessor for b's structural key.
func (l *PointLayer) PositionAccessor(b ColumnBinding) *PositionAccessor {
	key := positionKey{
		lat: b.Lat.FieldIdx,
		lng: b.Lng.FieldIdx,
		alt: -1,
	}
	if b.Altitude.Bound() {
		key.alt = b.Altitude.FieldIdx
	}
	return l.positions.Get(key, func() *PositionAccessor {
		return &PositionAccessor{key: key}
	})
}

// TextAccessor returns the memoized label accessor for the label's field,
// or nil when no label field is bound.
func (l *PointLayer) TextAccessor(t TextLabel) *TextAccessor {
	if t.Field == nil {
		return nil
	}
	idx := t.Field.Index
	return l.texts.Get(idx, func() *TextAccessor {
		return &TextAccessor{field: idx}
	})
}
