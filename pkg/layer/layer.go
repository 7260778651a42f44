// Package layer turns tabular rows into renderer-ready point layer
// descriptors.
//
// A [PointLayer] owns the state that survives between passes: memoized
// position and label accessors, the retained rows of the previous pass, the
// label glyph set, and the dataset bounds. Each call to
// [PointLayer.FormatLayerData] decides independently for rows and for
// glyphs whether the previous result can be reused:
//
//   - rows are rebuilt unless the caller reports sameData and the position
//     accessor is the one from the previous pass
//   - bounds are recomputed only when the position accessor changes
//   - glyphs are rebuilt unless sameData holds and the label accessor is
//     unchanged
//
// Rows whose position has a non-finite coordinate are dropped silently.
// Channel scales that cannot be built fall back to constants.
//
// [PointLayer.RenderLayer] expands a descriptor into the drawables an
// engine consumes: the point layer itself, a hover highlight, and labels.
package layer

import (
	"context"

	"github.com/matzehuels/pointlayer/pkg/table"
)

// Type identifies a layer implementation.
type Type string

// TypePoint is the point layer.
const TypePoint Type = "point"

// Layer is the capability set a map layer provides to a host.
type Layer interface {
	Type() Type
	RequiredColumns() []string
	OptionalColumns() []string
	VisualChannels() []VisualChannel
	FormatLayerData(ctx context.Context, ds *table.Dataset, filtered []int, sameData bool) (*Descriptor, error)
	RenderLayer(ctx context.Context, d *Descriptor, ic InteractionContext) []Drawable
	Meta() Meta
}

// Meta is derived state a host reads to frame the camera.
type Meta struct {
	Bounds      Bounds `json:"bounds"`
	BoundsValid bool   `json:"boundsValid"`
}

var _ Layer = (*PointLayer)(nil)
