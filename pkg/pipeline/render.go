package pipeline

import (
	"context"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/render"
)

// RenderInput is a finished formatting pass.
type RenderInput struct {
	Layer       *layer.PointLayer
	Descriptor  *layer.Descriptor
	DatasetHash string
}

// Interaction builds the interaction state for a render from opts. The
// hovered point must be among the retained points.
func Interaction(in RenderInput, opts Options) layer.InteractionContext {
	ic := layer.InteractionContext{
		BrushingEnabled: opts.Brushing,
		BrushRadius:     opts.BrushRadius,
	}
	if opts.Zoom != nil {
		ic.MapState.Zoom = *opts.Zoom
	} else {
		ic.MapState.Zoom = render.FitZoom(in.Layer.Meta().Bounds, opts.Width, opts.Height)
	}
	if h := opts.HoveredIndex(); h >= 0 {
		for i := range in.Descriptor.Data {
			if in.Descriptor.Data[i].Index == h {
				p := in.Descriptor.Data[i]
				ic.Hovered = &p
				break
			}
		}
	}
	return ic
}

// Drawables expands a formatting pass into drawables.
func Drawables(ctx context.Context, in RenderInput, opts Options) []layer.Drawable {
	return in.Layer.RenderLayer(ctx, in.Descriptor, Interaction(in, opts))
}

// RenderArtifacts writes drawables in every requested format.
func RenderArtifacts(in RenderInput, drawables []layer.Drawable, opts Options) (map[string][]byte, error) {
	meta := in.Layer.Meta()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = render.RenderSVG(drawables, meta.Bounds,
				render.WithSize(opts.Width, opts.Height),
				render.WithTitle(opts.Title))
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = render.RenderJSON(in.Descriptor,
				render.WithJSONLayerID(in.Layer.ID()),
				render.WithJSONMeta(meta),
				render.WithJSONDrawables(drawables),
				render.WithJSONIndent())
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNG(svgOnce(), opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(svgOnce())
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderHash identifies everything besides the dataset that changes an
// artifact.
func renderHash(l *layer.PointLayer, opts Options) string {
	return cache.Fingerprint(struct {
		LayerID     string
		Config      layer.Config
		Zoom        *float64
		BrushRadius float64
		PNGScale    float64
		Title       string
	}{l.ID(), l.Config(), opts.Zoom, opts.BrushRadius, opts.PNGScale, opts.Title})
}
