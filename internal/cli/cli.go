// Package cli implements the pointlayer command-line interface.
//
// # Commands
//
//   - encode: Run a formatting pass over a dataset and write JSON, SVG, PNG or PDF
//   - preview: Explore a layer interactively in the terminal
//   - serve: Run the HTTP API
//   - config: Write a starter layer config for a dataset
//   - cache: Manage the artifact cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/pkg/buildinfo"
	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/pipeline"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pointlayer"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pointlayer encodes tabular data as map point layers",
		Long:         `Pointlayer turns rows of a CSV or GeoJSON dataset into positioned, colored and sized map points, and renders them as JSON descriptors, SVG, PNG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pointlayer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layerFlags are the flags shared by every command that binds a layer to a
// dataset. They override values from --config.
type layerFlags struct {
	configPath  string
	dataFormat  string
	lat         string
	lng         string
	colorField  string
	colorScale  string
	sizeField   string
	sizeScale   string
	labelField  string
	radius      float64
	fixedRadius bool
}

func (f *layerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "layer config file (TOML)")
	cmd.Flags().StringVar(&f.dataFormat, "data-format", "", "dataset format: csv, geojson (default: from extension)")
	cmd.Flags().StringVar(&f.lat, "lat", "", "latitude column (default: first detected pair)")
	cmd.Flags().StringVar(&f.lng, "lng", "", "longitude column (default: first detected pair)")
	cmd.Flags().StringVar(&f.colorField, "color-field", "", "field encoded as fill color")
	cmd.Flags().StringVar(&f.colorScale, "color-scale", "", "color scale: quantile, quantize, ordinal")
	cmd.Flags().StringVar(&f.sizeField, "size-field", "", "field encoded as radius")
	cmd.Flags().StringVar(&f.sizeScale, "size-scale", "", "size scale: linear, sqrt, log")
	cmd.Flags().StringVar(&f.labelField, "label-field", "", "field rendered as text label")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "base point radius")
	cmd.Flags().BoolVar(&f.fixedRadius, "fixed-radius", false, "treat radius as meters instead of pixels")
}

// configFile loads --config and applies flag overrides. It returns nil when
// neither is set so the pipeline falls back to default layer discovery.
func (f *layerFlags) configFile(cmd *cobra.Command) (*config.File, error) {
	var file *config.File
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	overrides := []struct {
		value string
		set   func(*config.File, string)
	}{
		{f.lat, func(c *config.File, v string) { c.Columns.Lat = v }},
		{f.lng, func(c *config.File, v string) { c.Columns.Lng = v }},
		{f.colorField, func(c *config.File, v string) { c.Color.Field = v }},
		{f.colorScale, func(c *config.File, v string) { c.Color.Scale = v }},
		{f.sizeField, func(c *config.File, v string) { c.Size.Field = v }},
		{f.sizeScale, func(c *config.File, v string) { c.Size.Scale = v }},
		{f.labelField, func(c *config.File, v string) { c.Label.Field = v }},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if file == nil {
			file = &config.File{}
		}
		o.set(file, o.value)
	}

	if cmd.Flags().Changed("radius") {
		if file == nil {
			file = &config.File{}
		}
		r := f.radius
		file.Vis.Radius = &r
	}
	if cmd.Flags().Changed("fixed-radius") {
		if file == nil {
			file = &config.File{}
		}
		fixed := f.fixedRadius
		file.Vis.FixedRadius = &fixed
	}
	return file, nil
}

// loadOptions builds the load half of the pipeline options for dataPath.
func (f *layerFlags) loadOptions(cmd *cobra.Command, dataPath string) (pipeline.Options, error) {
	file, err := f.configFile(cmd)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		DataPath:   dataPath,
		DataFormat: table.Format(f.dataFormat),
		Config:     file,
	}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// contextOrBackground guards commands invoked without ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
