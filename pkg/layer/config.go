package layer

import (
	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/scale"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Column binds one required or optional layer column to a dataset field.
// FieldIdx is -1 when the column is unbound.
type Column struct {
	Value    string `json:"value"`
	FieldIdx int    `json:"fieldIdx"`
	Optional bool   `json:"optional,omitempty"`
}

// Bound reports whether the column points at a field.
func (c Column) Bound() bool {
	return c.FieldIdx >= 0
}

// UnboundColumn returns an empty binding.
func UnboundColumn(optional bool) Column {
	return Column{FieldIdx: -1, Optional: optional}
}

// ColumnBinding holds the position columns of a point layer.
type ColumnBinding struct {
	Lat      Column `json:"lat"`
	Lng      Column `json:"lng"`
	Altitude Column `json:"altitude"`
}

// Validate checks that the required columns are bound.
func (b ColumnBinding) Validate() error {
	if !b.Lat.Bound() {
		return errors.New(errors.ErrCodeInvalidColumns, "lat column is not bound")
	}
	if !b.Lng.Bound() {
		return errors.New(errors.ErrCodeInvalidColumns, "lng column is not bound")
	}
	return nil
}

// BindingFromPair converts a detected field pair into a column binding.
func BindingFromPair(p table.FieldPair) ColumnBinding {
	alt := UnboundColumn(true)
	if p.Altitude.FieldIdx >= 0 {
		alt = Column{Value: p.Altitude.Value, FieldIdx: p.Altitude.FieldIdx, Optional: true}
	}
	return ColumnBinding{
		Lat:      Column{Value: p.Lat.Value, FieldIdx: p.Lat.FieldIdx},
		Lng:      Column{Value: p.Lng.Value, FieldIdx: p.Lng.FieldIdx},
		Altitude: alt,
	}
}

// TextLabel configures the label overlay. Field nil disables labels.
type TextLabel struct {
	Field     *table.Field `json:"field"`
	Color     color.RGBA   `json:"color"`
	Size      float64      `json:"size"`
	Anchor    string       `json:"anchor"`
	Alignment string       `json:"alignment"`
	Offset    [2]float64   `json:"offset"`
}

// VisConfig is the visual surface of a point layer.
type VisConfig struct {
	Radius           float64     `json:"radius"`
	FixedRadius      bool        `json:"fixedRadius"`
	RadiusRange      [2]float64  `json:"radiusRange"`
	Opacity          float64     `json:"opacity"`
	Outline          bool        `json:"outline"`
	Thickness        float64     `json:"thickness"`
	StrokeColor      *color.RGBA `json:"strokeColor"`
	ColorRange       color.Range `json:"colorRange"`
	StrokeColorRange color.Range `json:"strokeColorRange"`
	Filled           bool        `json:"filled"`
}

// Config is the complete configuration of a point layer. It is a plain
// value: a layer snapshots it at the start of every pass.
type Config struct {
	DataID         string        `json:"dataId"`
	Label          string        `json:"label"`
	Color          color.RGBA    `json:"color"`
	HighlightColor color.RGBA    `json:"highlightColor"`
	IsVisible      bool          `json:"isVisible"`
	Columns        ColumnBinding `json:"columns"`
	VisConfig      VisConfig     `json:"visConfig"`
	TextLabel      TextLabel     `json:"textLabel"`

	ColorField  *table.Field `json:"colorField"`
	ColorScale  scale.Kind   `json:"colorScale"`
	ColorDomain scale.Domain `json:"colorDomain"`

	StrokeColorField  *table.Field `json:"strokeColorField"`
	StrokeColorScale  scale.Kind   `json:"strokeColorScale"`
	StrokeColorDomain scale.Domain `json:"strokeColorDomain"`

	SizeField  *table.Field `json:"sizeField"`
	SizeScale  scale.Kind   `json:"sizeScale"`
	SizeDomain scale.Domain `json:"sizeDomain"`
}

// Validate checks the parts of a config that a pass cannot degrade around.
func (c Config) Validate() error {
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	v := c.VisConfig
	if err := errors.ValidateRange("radiusRange", v.RadiusRange); err != nil {
		return err
	}
	if err := errors.ValidateUnit("opacity", v.Opacity); err != nil {
		return err
	}
	if v.Radius < 0 || v.Thickness < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "radius and thickness must not be negative")
	}
	for _, k := range []scale.Kind{c.ColorScale, c.StrokeColorScale, c.SizeScale} {
		if _, err := scale.ParseKind(string(k)); err != nil {
			return err
		}
	}
	return nil
}
