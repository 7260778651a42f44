package config

import (
	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/scale"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Resolve binds f against ds. Field names must exist in ds; options left
// unset keep the layer defaults. Channel domains not given in the file are
// computed from ds.
func (f *File) Resolve(ds *table.Dataset) (layer.Config, error) {
	cfg := layer.DefaultConfig()
	cfg.DataID = ds.ID
	cfg.IsVisible = !f.Layer.Hidden

	if err := f.resolveColumns(&cfg, ds); err != nil {
		return layer.Config{}, err
	}
	if f.Layer.Label != "" {
		cfg.Label = f.Layer.Label
	}
	if f.Layer.DataID != "" {
		cfg.DataID = f.Layer.DataID
	}
	if err := hexInto(&cfg.Color, f.Layer.Color); err != nil {
		return layer.Config{}, err
	}
	if err := hexInto(&cfg.HighlightColor, f.Layer.HighlightColor); err != nil {
		return layer.Config{}, err
	}
	if err := f.resolveVis(&cfg.VisConfig); err != nil {
		return layer.Config{}, err
	}

	channels := []struct {
		sec    ChannelSection
		field  **table.Field
		kind   *scale.Kind
		domain *scale.Domain
	}{
		{f.Color, &cfg.ColorField, &cfg.ColorScale, &cfg.ColorDomain},
		{f.StrokeColor, &cfg.StrokeColorField, &cfg.StrokeColorScale, &cfg.StrokeColorDomain},
		{f.Size, &cfg.SizeField, &cfg.SizeScale, &cfg.SizeDomain},
	}
	var explicit []bool
	for _, ch := range channels {
		fld, err := lookupField(ds, ch.sec.Field)
		if err != nil {
			return layer.Config{}, err
		}
		*ch.field = fld
		if ch.sec.Scale != "" {
			k, err := scale.ParseKind(ch.sec.Scale)
			if err != nil {
				return layer.Config{}, err
			}
			*ch.kind = k
		}
		if len(ch.sec.Domain) > 0 {
			*ch.domain = scale.Domain(ch.sec.Domain)
		}
		explicit = append(explicit, len(ch.sec.Domain) > 0)
	}

	if err := f.resolveLabel(&cfg.TextLabel, ds); err != nil {
		return layer.Config{}, err
	}

	// Explicit domains win over computed ones.
	computed := cfg.UpdateLayerDomain(ds)
	if !explicit[0] {
		cfg.ColorDomain = computed.ColorDomain
	}
	if !explicit[1] {
		cfg.StrokeColorDomain = computed.StrokeColorDomain
	}
	if !explicit[2] {
		cfg.SizeDomain = computed.SizeDomain
	}

	if err := cfg.Validate(); err != nil {
		return layer.Config{}, err
	}
	return cfg, nil
}

func (f *File) resolveColumns(cfg *layer.Config, ds *table.Dataset) error {
	c := f.Columns
	if c.Lat == "" && c.Lng == "" {
		pairs := table.FindPointFieldPairs(ds.Fields)
		if len(pairs) == 0 {
			return errors.New(errors.ErrCodeInvalidColumns, "dataset %s has no lat/lng column pair", ds.ID)
		}
		cfg.Columns = layer.BindingFromPair(pairs[0])
		if c.Altitude == "" {
			return nil
		}
	} else {
		lat, err := requiredColumn(ds, "lat", c.Lat)
		if err != nil {
			return err
		}
		lng, err := requiredColumn(ds, "lng", c.Lng)
		if err != nil {
			return err
		}
		cfg.Columns.Lat, cfg.Columns.Lng = lat, lng
	}

	if c.Altitude != "" {
		alt, err := requiredColumn(ds, "altitude", c.Altitude)
		if err != nil {
			return err
		}
		alt.Optional = true
		cfg.Columns.Altitude = alt
	}
	return nil
}

func requiredColumn(ds *table.Dataset, role, name string) (layer.Column, error) {
	if err := errors.ValidateFieldName(name); err != nil {
		return layer.Column{}, errors.Wrap(errors.ErrCodeInvalidColumns, err, "%s column", role)
	}
	fld, ok := ds.FieldByName(name)
	if !ok {
		return layer.Column{}, errors.New(errors.ErrCodeInvalidColumns, "%s column %q not found in dataset %s", role, name, ds.ID)
	}
	return layer.Column{Value: fld.Name, FieldIdx: fld.Index}, nil
}

func lookupField(ds *table.Dataset, name string) (*table.Field, error) {
	if name == "" {
		return nil, nil
	}
	fld, ok := ds.FieldByName(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "field %q not found in dataset %s", name, ds.ID)
	}
	return &fld, nil
}

func (f *File) resolveVis(v *layer.VisConfig) error {
	s := f.Vis
	if s.Radius != nil {
		v.Radius = *s.Radius
	}
	if s.FixedRadius != nil {
		v.FixedRadius = *s.FixedRadius
	}
	if len(s.RadiusRange) > 0 {
		if len(s.RadiusRange) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "radius_range must have 2 entries, got %d", len(s.RadiusRange))
		}
		v.RadiusRange = [2]float64{s.RadiusRange[0], s.RadiusRange[1]}
	}
	if s.Opacity != nil {
		v.Opacity = *s.Opacity
	}
	if s.Outline != nil {
		v.Outline = *s.Outline
	}
	if s.Thickness != nil {
		v.Thickness = *s.Thickness
	}
	if s.Filled != nil {
		v.Filled = *s.Filled
	}
	if s.StrokeColor != "" {
		c, err := color.HexToRGB(s.StrokeColor)
		if err != nil {
			return err
		}
		v.StrokeColor = &c
	}

	var err error
	if v.ColorRange, err = resolveRange(s.ColorRange, v.ColorRange); err != nil {
		return err
	}
	if v.StrokeColorRange, err = resolveRange(s.StrokeColorRange, v.StrokeColorRange); err != nil {
		return err
	}
	return nil
}

func resolveRange(s *RangeSection, def color.Range) (color.Range, error) {
	if s == nil {
		return def, nil
	}
	r := def
	switch {
	case len(s.Colors) > 0:
		for _, h := range s.Colors {
			if err := errors.ValidateHexColor(h); err != nil {
				return color.Range{}, err
			}
		}
		r = color.Range{Name: s.Name, Type: "custom", Category: "Custom", Colors: s.Colors}
		if r.Name == "" {
			r.Name = "Custom"
		}
	case s.Name != "":
		named, ok := color.RangeByName(s.Name)
		if !ok {
			return color.Range{}, errors.New(errors.ErrCodeInvalidConfig, "unknown color range %q", s.Name)
		}
		r = named
	}
	if s.Reversed {
		r = r.Reversed()
	}
	return r, nil
}

func (f *File) resolveLabel(t *layer.TextLabel, ds *table.Dataset) error {
	s := f.Label
	fld, err := lookupField(ds, s.Field)
	if err != nil {
		return err
	}
	t.Field = fld
	if err := hexInto(&t.Color, s.Color); err != nil {
		return err
	}
	if s.Size > 0 {
		t.Size = s.Size
	}
	if s.Anchor != "" {
		t.Anchor = s.Anchor
	}
	if s.Alignment != "" {
		t.Alignment = s.Alignment
	}
	if len(s.Offset) == 2 {
		t.Offset = [2]float64{s.Offset[0], s.Offset[1]}
	}
	return nil
}

func hexInto(dst *color.RGBA, hex string) error {
	if hex == "" {
		return nil
	}
	c, err := color.HexToRGB(hex)
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

// FromConfig is the inverse of Resolve: it writes cfg back out with fields
// named. Computed domains are omitted.
func FromConfig(cfg layer.Config) *File {
	name := func(fld *table.Field) string {
		if fld == nil {
			return ""
		}
		return fld.Name
	}
	v := cfg.VisConfig
	f := &File{
		Layer: LayerSection{
			Label:          cfg.Label,
			DataID:         cfg.DataID,
			Color:          cfg.Color.Hex(),
			HighlightColor: cfg.HighlightColor.Hex(),
			Hidden:         !cfg.IsVisible,
		},
		Columns: ColumnsSection{
			Lat: cfg.Columns.Lat.Value,
			Lng: cfg.Columns.Lng.Value,
		},
		Vis: VisSection{
			Radius:           &v.Radius,
			FixedRadius:      &v.FixedRadius,
			RadiusRange:      v.RadiusRange[:],
			Opacity:          &v.Opacity,
			Outline:          &v.Outline,
			Thickness:        &v.Thickness,
			ColorRange:       &RangeSection{Name: v.ColorRange.Name, Colors: v.ColorRange.Colors},
			StrokeColorRange: &RangeSection{Name: v.StrokeColorRange.Name, Colors: v.StrokeColorRange.Colors},
			Filled:           &v.Filled,
		},
		Color:       ChannelSection{Field: name(cfg.ColorField), Scale: string(cfg.ColorScale)},
		StrokeColor: ChannelSection{Field: name(cfg.StrokeColorField), Scale: string(cfg.StrokeColorScale)},
		Size:        ChannelSection{Field: name(cfg.SizeField), Scale: string(cfg.SizeScale)},
		Label: LabelSection{
			Field:     name(cfg.TextLabel.Field),
			Color:     cfg.TextLabel.Color.Hex(),
			Size:      cfg.TextLabel.Size,
			Anchor:    cfg.TextLabel.Anchor,
			Alignment: cfg.TextLabel.Alignment,
			Offset:    cfg.TextLabel.Offset[:],
		},
	}
	if cfg.Columns.Altitude.Bound() {
		f.Columns.Altitude = cfg.Columns.Altitude.Value
	}
	if v.StrokeColor != nil {
		f.Vis.StrokeColor = v.StrokeColor.Hex()
	}
	return f
}
