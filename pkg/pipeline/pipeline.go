// Package pipeline provides the load → format → render pipeline for a point
// layer.
//
// The CLI, the HTTP server and the terminal preview all drive a layer
// through the same stages. Centralizing them here keeps the three entry
// points consistent.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse a CSV or GeoJSON dataset and resolve the layer config
//  2. Format: Run a formatting pass, producing a render descriptor
//  3. Render: Expand the descriptor into drawables and write artifacts
//     (JSON, SVG, PNG, PDF)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DataPath: "trips.csv",
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Long-lived callers keep their own [layer.PointLayer] so that repeated
// passes stay warm, and call [Runner.RenderWithCacheInfo] directly.
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/table"
)

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0

	// DefaultPNGScale renders PNGs at 2x resolution.
	DefaultPNGScale = 2.0

	// DefaultBrushRadius is the brush size in kilometers.
	DefaultBrushRadius = 0.5
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	DataPath   string       `json:"data_path"`
	DataFormat table.Format `json:"data_format,omitempty"`
	ConfigPath string       `json:"config_path,omitempty"`
	// Config takes precedence over ConfigPath. With neither set, the first
	// detected lat/lng column pair is used with default styling.
	Config *config.File `json:"config,omitempty"`

	// Format options
	LayerID string `json:"layer_id,omitempty"`
	// Filter lists the row indices to keep. Nil keeps every row.
	Filter []int `json:"filter,omitempty"`

	// Render options
	Hovered     *int     `json:"hovered,omitempty"`
	Brushing    bool     `json:"brushing,omitempty"`
	BrushRadius float64  `json:"brush_radius,omitempty"`
	Zoom        *float64 `json:"zoom,omitempty"` // nil fits the data bounds
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	PNGScale    float64  `json:"png_scale,omitempty"`
	Title       string   `json:"title,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Dataset    *table.Dataset
	Config     layer.Config
	Layer      *layer.PointLayer
	Descriptor *layer.Descriptor
	Drawables  []layer.Drawable
	Meta       layer.Meta

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Retained   int
	Drawables  int
	LoadTime   time.Duration
	FormatTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.DataPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "data path is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.BrushRadius == 0 {
		o.BrushRadius = DefaultBrushRadius
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.BrushRadius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "brush radius must be positive, got %g", o.BrushRadius)
	}
	return ValidateFormats(o.Formats)
}

// HoveredIndex returns the hovered row index, or -1.
func (o *Options) HoveredIndex() int {
	if o.Hovered == nil {
		return -1
	}
	return *o.Hovered
}

// FilteredRows returns the row indices a formatting pass over ds keeps.
// A nil Filter selects every row; an empty one selects none.
func (o *Options) FilteredRows(ds *table.Dataset) []int {
	if o.Filter == nil {
		return ds.AllIndices()
	}
	return o.Filter
}

// SameFilter reports whether a and b select the same rows, telling a nil
// filter (every row) apart from an empty one.
func SameFilter(a, b []int) bool {
	return (a == nil) == (b == nil) && slices.Equal(a, b)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format, configHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		ConfigHash: configHash,
		FilterHash: filterHash(o.Filter),
		Width:      int(o.Width),
		Height:     int(o.Height),
		Hovered:    o.HoveredIndex(),
		Brushing:   o.Brushing,
	}
}

func filterHash(filter []int) string {
	if filter == nil {
		return ""
	}
	return cache.Fingerprint(filter)
}
