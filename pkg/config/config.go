// Package config reads point layer configuration files.
//
// A file names dataset columns by name rather than index, so one file can
// be applied to any dataset with matching headers. [File.Resolve] binds the
// names against a dataset and returns a [layer.Config] with every unset
// option at its default:
//
//	[columns]
//	lat = "pickup_lat"
//	lng = "pickup_lng"
//
//	[vis]
//	radius = 12
//	color_range = { name = "Ice And Fire" }
//
//	[color]
//	field = "fare"
//	scale = "quantize"
//
// Files are TOML. The same shape decodes from JSON for the HTTP API.
package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pointlayer/pkg/errors"
)

// File is the on-disk layer configuration.
type File struct {
	Layer       LayerSection   `toml:"layer" json:"layer"`
	Columns     ColumnsSection `toml:"columns" json:"columns"`
	Vis         VisSection     `toml:"vis" json:"vis"`
	Color       ChannelSection `toml:"color" json:"color"`
	StrokeColor ChannelSection `toml:"stroke_color" json:"stroke_color"`
	Size        ChannelSection `toml:"size" json:"size"`
	Label       LabelSection   `toml:"label" json:"label"`
}

// LayerSection holds identity and base style.
type LayerSection struct {
	Label          string `toml:"label,omitempty" json:"label,omitempty"`
	DataID         string `toml:"data_id,omitempty" json:"data_id,omitempty"`
	Color          string `toml:"color,omitempty" json:"color,omitempty"`
	HighlightColor string `toml:"highlight_color,omitempty" json:"highlight_color,omitempty"`
	Hidden         bool   `toml:"hidden,omitempty" json:"hidden,omitempty"`
}

// ColumnsSection names the position columns. Empty lat and lng select the
// first detected lat/lng pair of the dataset.
type ColumnsSection struct {
	Lat      string `toml:"lat,omitempty" json:"lat,omitempty"`
	Lng      string `toml:"lng,omitempty" json:"lng,omitempty"`
	Altitude string `toml:"altitude,omitempty" json:"altitude,omitempty"`
}

// RangeSection selects a color range by built-in name or explicit colors.
type RangeSection struct {
	Name     string   `toml:"name,omitempty" json:"name,omitempty"`
	Colors   []string `toml:"colors,omitempty" json:"colors,omitempty"`
	Reversed bool     `toml:"reversed,omitempty" json:"reversed,omitempty"`
}

// VisSection mirrors layer.VisConfig. Nil fields keep their defaults.
type VisSection struct {
	Radius           *float64      `toml:"radius,omitempty" json:"radius,omitempty"`
	FixedRadius      *bool         `toml:"fixed_radius,omitempty" json:"fixed_radius,omitempty"`
	RadiusRange      []float64     `toml:"radius_range,omitempty" json:"radius_range,omitempty"`
	Opacity          *float64      `toml:"opacity,omitempty" json:"opacity,omitempty"`
	Outline          *bool         `toml:"outline,omitempty" json:"outline,omitempty"`
	Thickness        *float64      `toml:"thickness,omitempty" json:"thickness,omitempty"`
	StrokeColor      string        `toml:"stroke_color,omitempty" json:"stroke_color,omitempty"`
	ColorRange       *RangeSection `toml:"color_range,omitempty" json:"color_range,omitempty"`
	StrokeColorRange *RangeSection `toml:"stroke_color_range,omitempty" json:"stroke_color_range,omitempty"`
	Filled           *bool         `toml:"filled,omitempty" json:"filled,omitempty"`
}

// ChannelSection binds a visual channel to a field.
type ChannelSection struct {
	Field  string `toml:"field,omitempty" json:"field,omitempty"`
	Scale  string `toml:"scale,omitempty" json:"scale,omitempty"`
	Domain []any  `toml:"domain,omitempty" json:"domain,omitempty"`
}

// LabelSection configures text labels.
type LabelSection struct {
	Field     string    `toml:"field,omitempty" json:"field,omitempty"`
	Color     string    `toml:"color,omitempty" json:"color,omitempty"`
	Size      float64   `toml:"size,omitempty" json:"size,omitempty"`
	Anchor    string    `toml:"anchor,omitempty" json:"anchor,omitempty"`
	Alignment string    `toml:"alignment,omitempty" json:"alignment,omitempty"`
	Offset    []float64 `toml:"offset,omitempty" json:"offset,omitempty"`
}

// Decode reads a TOML configuration. Unknown keys are an error so typos do
// not silently fall back to defaults.
func Decode(r io.Reader) (*File, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse layer config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return &f, nil
}

// DecodeJSON reads the JSON form of a configuration.
func DecodeJSON(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse layer config")
	}
	return &f, nil
}

// Load reads a TOML configuration file.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open config %s", path)
	}
	defer fh.Close()
	return Decode(fh)
}

// Encode writes f as TOML.
func Encode(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}
