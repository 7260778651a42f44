package layer

import (
	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/scale"
)

// Trigger names, one per accessor of a Descriptor.
const (
	TriggerPosition  = "getPosition"
	TriggerFillColor = "getFillColor"
	TriggerLineColor = "getLineColor"
	TriggerRadius    = "getRadius"
	TriggerText      = "getText"
)

// PositionTrigger changes when the position columns change.
type PositionTrigger struct {
	Lat      int `json:"lat"`
	Lng      int `json:"lng"`
	Altitude int `json:"altitude"`
}

// ColorTrigger changes when anything feeding a color accessor changes.
type ColorTrigger struct {
	Color      *color.RGBA `json:"color"`
	ColorField string      `json:"colorField"`
	ColorRange []string    `json:"colorRange"`
	ColorScale scale.Kind  `json:"colorScale"`
}

// RadiusTrigger changes when anything feeding the radius accessor changes.
type RadiusTrigger struct {
	SizeField   string     `json:"sizeField"`
	RadiusRange [2]float64 `json:"radiusRange"`
	FixedRadius bool       `json:"fixedRadius"`
	SizeScale   scale.Kind `json:"sizeScale"`
}

// TextTrigger changes when the label field changes.
type TextTrigger struct {
	Field string `json:"field"`
}

// UpdateTriggers tells a rendering engine which configuration values each
// accessor depends on. An engine regenerates the buffers of a channel only
// when that channel's fingerprint changes, independently of whether the
// row set was rebuilt.
type UpdateTriggers struct {
	GetPosition  PositionTrigger `json:"getPosition"`
	GetFillColor ColorTrigger    `json:"getFillColor"`
	GetLineColor ColorTrigger    `json:"getLineColor"`
	GetRadius    RadiusTrigger   `json:"getRadius"`
	GetText      TextTrigger     `json:"getText"`
}

// Fingerprint hashes the trigger of one accessor. Unknown names hash the
// whole set.
func (u UpdateTriggers) Fingerprint(name string) string {
	switch name {
	case TriggerPosition:
		return cache.Fingerprint(u.GetPosition)
	case TriggerFillColor:
		return cache.Fingerprint(u.GetFillColor)
	case TriggerLineColor:
		return cache.Fingerprint(u.GetLineColor)
	case TriggerRadius:
		return cache.Fingerprint(u.GetRadius)
	case TriggerText:
		return cache.Fingerprint(u.GetText)
	}
	return cache.Fingerprint(u)
}

func fieldName(c Config, ch string) string {
	switch ch {
	case ChannelColor:
		if c.ColorField != nil {
			return c.ColorField.Name
		}
	case ChannelStrokeColor:
		if c.StrokeColorField != nil {
			return c.StrokeColorField.Name
		}
	case ChannelSize:
		if c.SizeField != nil {
			return c.SizeField.Name
		}
	}
	return ""
}

func updateTriggers(c Config) UpdateTriggers {
	base := c.Color
	alt := -1
	if c.Columns.Altitude.Bound() {
		alt = c.Columns.Altitude.FieldIdx
	}
	u := UpdateTriggers{
		GetPosition: PositionTrigger{
			Lat:      c.Columns.Lat.FieldIdx,
			Lng:      c.Columns.Lng.FieldIdx,
			Altitude: alt,
		},
		GetFillColor: ColorTrigger{
			Color:      &base,
			ColorField: fieldName(c, ChannelColor),
			ColorRange: c.VisConfig.ColorRange.Colors,
			ColorScale: c.ColorScale,
		},
		GetLineColor: ColorTrigger{
			Color:      c.VisConfig.StrokeColor,
			ColorField: fieldName(c, ChannelStrokeColor),
			ColorRange: c.VisConfig.StrokeColorRange.Colors,
			ColorScale: c.StrokeColorScale,
		},
		GetRadius: RadiusTrigger{
			SizeField:   fieldName(c, ChannelSize),
			RadiusRange: c.VisConfig.RadiusRange,
			FixedRadius: c.VisConfig.FixedRadius,
			SizeScale:   c.SizeScale,
		},
	}
	if c.TextLabel.Field != nil {
		u.GetText.Field = c.TextLabel.Field.Name
	}
	return u
}
