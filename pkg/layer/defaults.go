package layer

import (
	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/scale"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Defaults for new layers.
const (
	DefaultRadius          = 10
	DefaultOpacity         = 0.8
	DefaultThickness       = 2
	DefaultTextSize        = 18
	DefaultRadiusMaxPixels = 500
)

var (
	DefaultRadiusRange    = [2]float64{0, 50}
	DefaultHighlightColor = color.RGBA{R: 252, G: 242, B: 26, A: 255}
	DefaultTextColor      = color.RGB(255, 255, 255)
)

// DefaultLayerColors assigns fixed colors to well-known latitude columns.
var DefaultLayerColors = map[string]string{
	"begintrip_lat": "#1E96BE",
	"dropoff_lat":   "#FF991F",
	"request_lat":   "#52A353",
}

// DefaultVisConfig returns the visual defaults of a new point layer.
func DefaultVisConfig() VisConfig {
	return VisConfig{
		Radius:           DefaultRadius,
		RadiusRange:      DefaultRadiusRange,
		Opacity:          DefaultOpacity,
		Thickness:        DefaultThickness,
		ColorRange:       color.DefaultRange,
		StrokeColorRange: color.DefaultRange,
		Filled:           true,
	}
}

// DefaultConfig returns a config with every default filled in and no
// columns bound.
func DefaultConfig() Config {
	return Config{
		Label:          "new layer",
		Color:          color.MustHex(color.DataVizColors[0]),
		HighlightColor: DefaultHighlightColor,
		Columns: ColumnBinding{
			Lat:      UnboundColumn(false),
			Lng:      UnboundColumn(false),
			Altitude: UnboundColumn(true),
		},
		VisConfig: DefaultVisConfig(),
		TextLabel: TextLabel{
			Color:     DefaultTextColor,
			Size:      DefaultTextSize,
			Anchor:    "start",
			Alignment: "center",
		},
		ColorScale:        scale.Quantile,
		StrokeColorScale:  scale.Quantile,
		StrokeColorDomain: scale.Domain{0.0, 1.0},
		SizeScale:         scale.Linear,
	}
}

// FindDefaultLayerProps proposes one point layer per latitude/longitude
// column pair. Only the first proposal is visible. Base colors come from
// DefaultLayerColors when the latitude column has a well-known name and
// from maker otherwise.
func FindDefaultLayerProps(ds *table.Dataset, maker *color.Maker) []Config {
	if maker == nil {
		maker = &color.Maker{}
	}
	pairs := table.FindPointFieldPairs(ds.Fields)
	out := make([]Config, 0, len(pairs))
	for i, p := range pairs {
		cfg := DefaultConfig()
		cfg.DataID = ds.ID
		cfg.Label = p.DefaultName
		cfg.IsVisible = i == 0
		cfg.Columns = BindingFromPair(p)
		if hex, ok := DefaultLayerColors[p.Lat.Value]; ok {
			cfg.Color = color.MustHex(hex)
		} else {
			cfg.Color = maker.Next()
		}
		out = append(out, cfg)
	}
	return out
}
