package layer

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/scale"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Channel keys.
const (
	ChannelColor       = "color"
	ChannelStrokeColor = "strokeColor"
	ChannelSize        = "size"
)

// Channel scale types.
const (
	ScaleTypeColor  = "color"
	ScaleTypeRadius = "radius"
)

// VisualChannel is one data-driven visual property. It is active when Field
// is set.
type VisualChannel struct {
	Key              string       `json:"key"`
	Property         string       `json:"property"`
	Field            *table.Field `json:"field"`
	Scale            scale.Kind   `json:"scale"`
	Domain           scale.Domain `json:"domain"`
	Range            scale.Range  `json:"-"`
	ChannelScaleType string       `json:"channelScaleType"`
	NullValue        any          `json:"-"`
}

// Active reports whether a field is bound.
func (c VisualChannel) Active() bool {
	return c.Field != nil
}

// VisualChannels lists the fill, stroke and radius channels of cfg.
func (c Config) VisualChannels() []VisualChannel {
	return []VisualChannel{
		{
			Key:              ChannelColor,
			Property:         "color",
			Field:            c.ColorField,
			Scale:            c.ColorScale,
			Domain:           c.ColorDomain,
			Range:            scale.Range{Colors: c.VisConfig.ColorRange.RGBA()},
			ChannelScaleType: ScaleTypeColor,
			NullValue:        color.NoValueColor,
		},
		{
			Key:              ChannelStrokeColor,
			Property:         "strokeColor",
			Field:            c.StrokeColorField,
			Scale:            c.StrokeColorScale,
			Domain:           c.StrokeColorDomain,
			Range:            scale.Range{Colors: c.VisConfig.StrokeColorRange.RGBA()},
			ChannelScaleType: ScaleTypeColor,
			NullValue:        color.NoValueColor,
		},
		{
			Key:              ChannelSize,
			Property:         "radius",
			Field:            c.SizeField,
			Scale:            c.SizeScale,
			Domain:           c.SizeDomain,
			Range:            scale.Range{Numbers: c.VisConfig.RadiusRange[:]},
			ChannelScaleType: ScaleTypeRadius,
			NullValue:        0.0,
		},
	}
}

// UpdateLayerDomain recomputes every active channel's domain from ds and
// returns the updated config.
func (c Config) UpdateLayerDomain(ds *table.Dataset) Config {
	domain := func(f *table.Field, kind scale.Kind, current scale.Domain) scale.Domain {
		if f == nil || ds == nil {
			return current
		}
		return scale.DomainFor(kind, ds.Column(f.Index))
	}
	c.ColorDomain = domain(c.ColorField, c.ColorScale, c.ColorDomain)
	c.StrokeColorDomain = domain(c.StrokeColorField, c.StrokeColorScale, c.StrokeColorDomain)
	c.SizeDomain = domain(c.SizeField, c.SizeScale, c.SizeDomain)
	return c
}

// channelScale builds the scale of an active channel. A channel without a
// stored domain derives one from ds. fixed selects the pass-through radius
// scale. A nil result means the caller falls back to its constant.
func channelScale(ch VisualChannel, ds *table.Dataset, fixed bool, logger *log.Logger) scale.Func {
	if !ch.Active() {
		return nil
	}
	domain := ch.Domain
	if len(domain) == 0 && ds != nil {
		domain = scale.DomainFor(ch.Scale, ds.Column(ch.Field.Index))
	}

	var (
		f   scale.Func
		err error
	)
	if fixed {
		f, err = scale.Fixed(domain)
	} else {
		f, err = scale.Build(ch.Scale, domain, ch.Range)
	}
	if err != nil {
		logger.Debug("channel falls back to constant", "channel", ch.Key, "field", ch.Field.Name, "error", err)
		return nil
	}
	return f
}

// encoded applies a channel scale to one row, substituting nullValue when
// the value cannot be encoded.
func encoded[T any](f scale.Func, field *table.Field, row table.Row, nullValue T) T {
	v, ok := f(row.At(field.Index))
	if !ok {
		return nullValue
	}
	out, ok := v.(T)
	if !ok {
		return nullValue
	}
	return out
}
