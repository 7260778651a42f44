package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/pkg/pipeline"
)

// encodeOpts holds the command-line flags for the encode command.
type encodeOpts struct {
	layer       layerFlags
	output      string   // output file (single format) or base path (multiple)
	formats     []string // svg, json, png, pdf
	filter      []int    // row indices to keep
	hovered     int      // hovered row index, -1 for none
	brushing    bool     // brush around the hovered point
	brushRadius float64  // brush radius in kilometers
	zoom        float64  // map zoom, fitted to the data when unset
	width       float64  // canvas width in pixels
	height      float64  // canvas height in pixels
	pngScale    float64  // PNG resolution multiplier
	title       string   // SVG title
	noCache     bool     // bypass the artifact cache
	refresh     bool     // re-render and overwrite cached artifacts
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	var formatsStr string
	opts := encodeOpts{
		hovered:     -1,
		brushRadius: pipeline.DefaultBrushRadius,
		width:       pipeline.DefaultWidth,
		height:      pipeline.DefaultHeight,
		pngScale:    pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "encode [data file]",
		Short: "Encode a dataset as a point layer",
		Long: `Encode runs one formatting pass over a CSV or GeoJSON dataset and writes
the result. Without --config the first latitude/longitude column pair is used
with default styling.`,
		Example: `  pointlayer encode trips.csv
  pointlayer encode trips.csv --color-field fare --size-field distance -f svg,json
  pointlayer encode trips.csv --config layer.toml --filter 0,4,9 -o out/trips.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runEncode(contextOrBackground(cmd), cmd, args[0], &opts)
		},
	}

	opts.layer.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().IntSliceVar(&opts.filter, "filter", nil, "row indices to keep (comma-separated)")
	cmd.Flags().IntVar(&opts.hovered, "hovered", opts.hovered, "hovered row index")
	cmd.Flags().BoolVar(&opts.brushing, "brushing", false, "only draw points near the hovered point")
	cmd.Flags().Float64Var(&opts.brushRadius, "brush-radius", opts.brushRadius, "brush radius in kilometers")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "map zoom (default: fit the data)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "canvas width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "canvas height")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "PNG resolution multiplier")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// pipelineOptions converts flags to pipeline options.
func (o *encodeOpts) pipelineOptions(cmd *cobra.Command, input string) (pipeline.Options, error) {
	popts, err := o.layer.loadOptions(cmd, input)
	if err != nil {
		return pipeline.Options{}, err
	}
	popts.Formats = o.formats
	popts.Brushing = o.brushing
	popts.BrushRadius = o.brushRadius
	popts.Width = o.width
	popts.Height = o.height
	popts.PNGScale = o.pngScale
	popts.Title = o.title
	popts.Refresh = o.refresh
	if cmd.Flags().Changed("filter") {
		popts.Filter = append([]int{}, o.filter...)
	}
	if o.hovered >= 0 {
		h := o.hovered
		popts.Hovered = &h
	}
	if cmd.Flags().Changed("zoom") {
		z := o.zoom
		popts.Zoom = &z
	}
	return popts, nil
}

// runEncode executes the pipeline and writes one file per format.
func (c *CLI) runEncode(ctx context.Context, cmd *cobra.Command, input string, opts *encodeOpts) error {
	popts, err := opts.pipelineOptions(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Encoded %d of %d rows", result.Stats.Retained, result.Stats.Rows))

	paths, err := outputPaths(opts.output, input, opts.formats)
	if err != nil {
		return err
	}

	printSuccess("Encoded %s", StyleHighlight.Render(result.Layer.ID()))
	printStats(result.Stats.Rows, result.Stats.Retained, result.Stats.Drawables, result.CacheInfo.RenderHit)
	printChannels(result.Config)
	if result.Stats.Retained == 0 {
		printWarning("No rows have a valid position")
	}
	for _, format := range opts.formats {
		path := paths[format]
		data := result.Artifacts[format]
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		printFile(path, len(data))
	}
	return nil
}

// outputPaths maps each format to its output file. A single format writes to
// output as given; several formats share the base path of output, or of
// input when output is empty. Paths that would overwrite input are rejected.
func outputPaths(output, input string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
	} else {
		base := basePath(output, input)
		for _, f := range formats {
			paths[f] = base + "." + f
		}
	}
	for _, p := range paths {
		if filepath.Clean(p) == filepath.Clean(input) {
			return nil, fmt.Errorf("output %s would overwrite the input dataset (use --output)", p)
		}
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .json, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
