package layer

import (
	"context"
	"time"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/observability"
)

const metersPerKilometer = 1000

// Drawable kinds.
const (
	KindScatterplot = "scatterplot"
	KindText        = "text"
)

// Drawable ID suffixes.
const (
	SuffixHovered = "-hovered"
	SuffixLabel   = "-label"
)

// InteractionContext is the interaction state a render reads.
type InteractionContext struct {
	BrushingEnabled bool
	// BrushRadius is the brush size in kilometers.
	BrushRadius float64
	// Hovered is the point under the cursor, or nil.
	Hovered  *DataPoint
	MapState MapState
}

// Props are the scalar settings of a drawable.
type Props struct {
	Opacity         float64 `json:"opacity"`
	Stroked         bool    `json:"stroked"`
	Filled          bool    `json:"filled"`
	LineWidthScale  float64 `json:"lineWidthScale"`
	RadiusScale     float64 `json:"radiusScale"`
	RadiusMaxPixels float64 `json:"radiusMaxPixels,omitempty"`
	Pickable        bool    `json:"pickable"`
	AutoHighlight   bool    `json:"autoHighlight"`
	EnableBrushing  bool    `json:"enableBrushing"`
	// BrushRadius is in meters.
	BrushRadius    float64    `json:"brushRadius,omitempty"`
	HighlightColor color.RGBA `json:"highlightColor"`

	TextSize      float64    `json:"textSize,omitempty"`
	TextColor     color.RGBA `json:"textColor"`
	TextAnchor    string     `json:"textAnchor,omitempty"`
	TextAlignment string     `json:"textAlignment,omitempty"`
	TextOffset    [2]float64 `json:"textOffset"`
}

// Drawable is one sub-layer handed to a rendering engine.
type Drawable struct {
	ID             string               `json:"id"`
	Kind           string               `json:"kind"`
	Data           []DataPoint          `json:"-"`
	GetPosition    Accessor[[3]float64] `json:"-"`
	GetFillColor   Accessor[color.RGBA] `json:"-"`
	GetLineColor   Accessor[color.RGBA] `json:"-"`
	GetRadius      Accessor[float64]    `json:"-"`
	GetText        Accessor[string]     `json:"-"`
	CharacterSet   []rune               `json:"-"`
	Props          Props                `json:"props"`
	UpdateTriggers UpdateTriggers       `json:"updateTriggers"`
}

// RenderLayer expands d into drawables: always the point layer, then a
// single-point highlight when a point is hovered and brushing is off, then
// a label layer when a label field is bound.
func (l *PointLayer) RenderLayer(ctx context.Context, d *Descriptor, ic InteractionContext) []Drawable {
	start := time.Now()
	cfg := l.config
	vis := cfg.VisConfig

	props := Props{
		Opacity:        vis.Opacity,
		Stroked:        vis.Outline,
		Filled:         vis.Filled,
		LineWidthScale: vis.Thickness,
		RadiusScale:    cfg.RadiusScale(ic.MapState),
		Pickable:       true,
		AutoHighlight:  !ic.BrushingEnabled,
		EnableBrushing: ic.BrushingEnabled,
		BrushRadius:    ic.BrushRadius * metersPerKilometer,
		HighlightColor: cfg.HighlightColor,
	}
	if !cfg.fixedRadius() {
		props.RadiusMaxPixels = DefaultRadiusMaxPixels
	}

	out := []Drawable{{
		ID:             l.id,
		Kind:           KindScatterplot,
		Data:           d.Data,
		GetPosition:    d.GetPosition,
		GetFillColor:   d.GetFillColor,
		GetLineColor:   d.GetLineColor,
		GetRadius:      d.GetRadius,
		Props:          props,
		UpdateTriggers: d.UpdateTriggers,
	}}

	if ic.Hovered != nil && !ic.BrushingEnabled {
		hp := props
		hp.Pickable = false
		hp.AutoHighlight = false
		out = append(out, Drawable{
			ID:           l.id + SuffixHovered,
			Kind:         KindScatterplot,
			Data:         []DataPoint{*ic.Hovered},
			GetPosition:  d.GetPosition,
			GetFillColor: Constant(cfg.HighlightColor),
			GetLineColor: Constant(cfg.HighlightColor),
			GetRadius:    d.GetRadius,
			Props:        hp,
		})
	}

	if d.HasLabels() && cfg.TextLabel.Field != nil {
		t := cfg.TextLabel
		out = append(out, Drawable{
			ID:           l.id + SuffixLabel,
			Kind:         KindText,
			Data:         d.Data,
			GetPosition:  d.GetPosition,
			GetText:      d.GetText,
			CharacterSet: d.LabelCharacterSet,
			Props: Props{
				Opacity:       vis.Opacity,
				TextSize:      t.Size,
				TextColor:     t.Color,
				TextAnchor:    t.Anchor,
				TextAlignment: t.Alignment,
				TextOffset:    t.Offset,
			},
			UpdateTriggers: UpdateTriggers{
				GetPosition: d.UpdateTriggers.GetPosition,
				GetText:     d.UpdateTriggers.GetText,
			},
		})
	}

	observability.Layer().OnRender(ctx, l.id, len(out), time.Since(start))
	return out
}
