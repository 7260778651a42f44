package layer

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/observability"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Descriptor is the output of one formatting pass.
type Descriptor struct {
	Data              []DataPoint          `json:"-"`
	GetPosition       Accessor[[3]float64] `json:"-"`
	GetFillColor      Accessor[color.RGBA] `json:"-"`
	GetLineColor      Accessor[color.RGBA] `json:"-"`
	GetRadius         Accessor[float64]    `json:"-"`
	GetText           Accessor[string]     `json:"-"`
	LabelCharacterSet []rune               `json:"-"`
	UpdateTriggers    UpdateTriggers       `json:"updateTriggers"`
}

// HasLabels reports whether the descriptor carries label text.
func (d *Descriptor) HasLabels() bool {
	return d.GetText.Fn != nil
}

// Cached is what a pass leaves behind for the next one.
type Cached struct {
	Data              []DataPoint
	GetPosition       *PositionAccessor
	GetText           *TextAccessor
	LabelCharacterSet []rune
}

// PointLayer is a point map layer. It is not safe for concurrent passes.
type PointLayer struct {
	id     string
	config Config
	meta   Meta
	cached *Cached
	stats  observability.FormatStats

	positions *cache.Memo[positionKey, *PositionAccessor]
	texts     *cache.Memo[int, *TextAccessor]
	logger    *log.Logger
}

// Option configures a PointLayer.
type Option func(*PointLayer)

// WithID sets the layer ID. The default is a random UUID.
func WithID(id string) Option {
	return func(l *PointLayer) { l.id = id }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(l *PointLayer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewPointLayer creates a layer with an empty cache.
func NewPointLayer(cfg Config, opts ...Option) *PointLayer {
	l := &PointLayer{
		id:        uuid.NewString(),
		config:    cfg,
		positions: cache.NewMemo[positionKey, *PositionAccessor](accessorMemoSize),
		texts:     cache.NewMemo[int, *TextAccessor](accessorMemoSize),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ID returns the layer ID.
func (l *PointLayer) ID() string { return l.id }

// Type returns TypePoint.
func (l *PointLayer) Type() Type { return TypePoint }

// RequiredColumns returns the columns a point layer cannot render without.
func (l *PointLayer) RequiredColumns() []string { return []string{"lat", "lng"} }

// OptionalColumns returns the columns a point layer can use when bound.
func (l *PointLayer) OptionalColumns() []string { return []string{"altitude"} }

// Config returns the current configuration.
func (l *PointLayer) Config() Config { return l.config }

// SetConfig replaces the configuration. Cached output stays; the next pass
// compares accessor identities to decide what to rebuild.
func (l *PointLayer) SetConfig(cfg Config) { l.config = cfg }

// VisualChannels returns the channels of the current configuration.
func (l *PointLayer) VisualChannels() []VisualChannel { return l.config.VisualChannels() }

// Meta returns the bounds of the last cold pass.
func (l *PointLayer) Meta() Meta { return l.meta }

// Cache returns the output the previous pass left behind, or nil.
func (l *PointLayer) Cache() *Cached { return l.cached }

// LastStats returns the statistics of the previous pass.
func (l *PointLayer) LastStats() observability.FormatStats { return l.stats }

// FormatLayerData runs one formatting pass over ds. filtered lists the
// indices of the rows that pass the host's filters, in render order.
// sameData asserts that ds holds the same rows as in the previous pass; it
// is trusted without verification.
//
// The only error is a config without lat/lng columns bound.
func (l *PointLayer) FormatLayerData(ctx context.Context, ds *table.Dataset, filtered []int, sameData bool) (*Descriptor, error) {
	start := time.Now()
	cfg := l.config
	if err := cfg.Columns.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColumns, err, "layer %s", l.id)
	}
	var rows []table.Row
	if ds != nil {
		rows = ds.Rows
	}

	var stats observability.FormatStats
	prev := l.cached

	pos := l.PositionAccessor(cfg.Columns)
	if prev == nil || prev.GetPosition != pos {
		l.updateLayerMeta(rows, pos)
		stats.BoundsUpdated = true
	}

	var data []DataPoint
	if prev != nil && sameData && prev.GetPosition == pos {
		data = prev.Data
	} else {
		data = filterRows(rows, filtered, pos)
		stats.RowsCold = true
		stats.Dropped = len(filtered) - len(data)
	}
	stats.Retained = len(data)

	text := l.TextAccessor(cfg.TextLabel)
	glyphs := []rune{}
	if text != nil {
		if prev != nil && sameData && prev.GetText == text {
			glyphs = prev.LabelCharacterSet
		} else {
			glyphs = GlyphSet(labelsOf(data, text))
			stats.GlyphsCold = true
		}
	}

	d := &Descriptor{
		Data:              data,
		GetPosition:       PerRow(func(p DataPoint) [3]float64 { return pos.At(p.Row) }),
		LabelCharacterSet: glyphs,
		UpdateTriggers:    updateTriggers(cfg),
	}
	l.assignChannels(d, cfg, ds)
	if text != nil {
		d.GetText = PerRow(func(p DataPoint) string { return text.At(p.Row) })
	}

	l.cached = &Cached{
		Data:              data,
		GetPosition:       pos,
		GetText:           text,
		LabelCharacterSet: glyphs,
	}

	stats.Duration = time.Since(start)
	l.stats = stats
	l.logger.Debug("formatted layer",
		"layer", l.id,
		"rows_cold", stats.RowsCold,
		"glyphs_cold", stats.GlyphsCold,
		"retained", stats.Retained,
		"dropped", stats.Dropped,
	)
	observability.Layer().OnFormat(ctx, l.id, stats)
	return d, nil
}

// updateLayerMeta recomputes bounds over every row.
func (l *PointLayer) updateLayerMeta(rows []table.Row, pos *PositionAccessor) {
	b, ok := ComputeBounds(rows, pos)
	l.meta = Meta{Bounds: b, BoundsValid: ok}
}

// filterRows keeps the rows at filtered whose position is finite, in
// filtered order. Indices outside rows are skipped.
func filterRows(rows []table.Row, filtered []int, pos *PositionAccessor) []DataPoint {
	out := make([]DataPoint, 0, len(filtered))
	for _, idx := range filtered {
		if idx < 0 || idx >= len(rows) {
			continue
		}
		if !finite3(pos.At(rows[idx])) {
			continue
		}
		out = append(out, DataPoint{Index: idx, Row: rows[idx]})
	}
	return out
}

// assignChannels builds the color and radius accessors, falling back to
// constants for inactive channels and for scales that fail to build.
func (l *PointLayer) assignChannels(d *Descriptor, cfg Config, ds *table.Dataset) {
	channels := cfg.VisualChannels()
	fill, stroke, size := channels[0], channels[1], channels[2]
	fixed := cfg.VisConfig.FixedRadius

	d.GetFillColor = Constant(cfg.Color)
	if f := channelScale(fill, ds, false, l.logger); f != nil {
		d.GetFillColor = PerRow(func(p DataPoint) color.RGBA {
			return encoded(f, fill.Field, p.Row, color.NoValueColor)
		})
	}

	lineColor := cfg.Color
	if cfg.VisConfig.StrokeColor != nil {
		lineColor = *cfg.VisConfig.StrokeColor
	}
	d.GetLineColor = Constant(lineColor)
	if f := channelScale(stroke, ds, false, l.logger); f != nil {
		d.GetLineColor = PerRow(func(p DataPoint) color.RGBA {
			return encoded(f, stroke.Field, p.Row, color.NoValueColor)
		})
	}

	d.GetRadius = Constant(1.0)
	if f := channelScale(size, ds, fixed, l.logger); f != nil {
		d.GetRadius = PerRow(func(p DataPoint) float64 {
			return encoded(f, size.Field, p.Row, 0.0)
		})
	}
}

// MapState is the part of the camera the layer reads.
type MapState struct {
	Zoom       float64 `json:"zoom"`
	ZoomOffset float64 `json:"zoomOffset"`
}

// ZoomFactor returns 2^max(14 - zoom + zoomOffset, 0).
func (m MapState) ZoomFactor() float64 {
	return math.Pow(2, math.Max(14-m.Zoom+m.ZoomOffset, 0))
}

// fixedRadius reports whether radii are taken verbatim as meters.
func (c Config) fixedRadius() bool {
	return c.VisConfig.FixedRadius && c.SizeField != nil
}

// RadiusScale returns the multiplier an engine applies to GetRadius.
func (c Config) RadiusScale(m MapState) float64 {
	if c.fixedRadius() {
		return 1
	}
	base := c.VisConfig.Radius
	if c.SizeField != nil {
		base = 1
	}
	return base * m.ZoomFactor()
}
