package render

import (
	"encoding/json"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/layer"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	layerID   string
	meta      *layer.Meta
	drawables []layer.Drawable
	indent    bool
}

// WithJSONLayerID records the layer ID.
func WithJSONLayerID(id string) JSONOption { return func(r *jsonRenderer) { r.layerID = id } }

// WithJSONMeta includes the layer bounds.
func WithJSONMeta(m layer.Meta) JSONOption { return func(r *jsonRenderer) { r.meta = &m } }

// WithJSONDrawables lists the drawables a render pass produced.
func WithJSONDrawables(d []layer.Drawable) JSONOption {
	return func(r *jsonRenderer) { r.drawables = d }
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	LayerID      string               `json:"layerId,omitempty"`
	Count        int                  `json:"count"`
	Bounds       *layer.Bounds        `json:"bounds,omitempty"`
	CharacterSet string               `json:"characterSet,omitempty"`
	Triggers     layer.UpdateTriggers `json:"updateTriggers"`
	Fingerprints map[string]string    `json:"fingerprints"`
	Drawables    []jsonDrawable       `json:"drawables,omitempty"`
	Points       []jsonPoint          `json:"points"`
}

type jsonDrawable struct {
	ID    string      `json:"id"`
	Kind  string      `json:"kind"`
	Count int         `json:"count"`
	Props layer.Props `json:"props"`
}

type jsonPoint struct {
	Index     int        `json:"index"`
	Position  [3]float64 `json:"position"`
	FillColor color.RGBA `json:"fillColor"`
	LineColor color.RGBA `json:"lineColor"`
	Radius    float64    `json:"radius"`
	Text      string     `json:"text,omitempty"`
}

var triggerNames = []string{
	layer.TriggerPosition,
	layer.TriggerFillColor,
	layer.TriggerLineColor,
	layer.TriggerRadius,
	layer.TriggerText,
}

// RenderJSON evaluates every accessor of d for every retained point.
func RenderJSON(d *layer.Descriptor, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		LayerID:      r.layerID,
		Count:        len(d.Data),
		CharacterSet: string(d.LabelCharacterSet),
		Triggers:     d.UpdateTriggers,
		Fingerprints: make(map[string]string, len(triggerNames)),
		Points:       make([]jsonPoint, len(d.Data)),
	}
	if r.meta != nil && r.meta.BoundsValid {
		b := r.meta.Bounds
		out.Bounds = &b
	}
	for _, name := range triggerNames {
		out.Fingerprints[name] = d.UpdateTriggers.Fingerprint(name)
	}
	for _, dr := range r.drawables {
		out.Drawables = append(out.Drawables, jsonDrawable{
			ID:    dr.ID,
			Kind:  dr.Kind,
			Count: len(dr.Data),
			Props: dr.Props,
		})
	}
	for i, p := range d.Data {
		jp := jsonPoint{
			Index:     p.Index,
			Position:  d.GetPosition.At(p),
			FillColor: d.GetFillColor.At(p),
			LineColor: d.GetLineColor.At(p),
			Radius:    d.GetRadius.At(p),
		}
		if d.HasLabels() {
			jp.Text = d.GetText.At(p)
		}
		out.Points[i] = jp
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
