package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/internal/tui"
	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/pipeline"
)

// previewCommand creates the interactive terminal preview.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layerFlags

	cmd := &cobra.Command{
		Use:   "preview [data file]",
		Short: "Explore a point layer in the terminal",
		Long: `Preview draws the layer as a braille map. Move the cursor with the arrow
keys or the mouse to hover points, press b to toggle brushing, [ and ] to
resize the brush, r to re-run the formatting pass and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd)
			opts, err := flags.loadOptions(cmd, args[0])
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
			ds, cfg, err := runner.Prepare(ctx, opts)
			if err != nil {
				return err
			}
			c.Logger.Debug("starting preview", "dataset", ds.ID, "rows", ds.Len())

			return tui.Run(ctx, layer.NewPointLayer(cfg, layer.WithID(ds.ID)), ds)
		},
	}

	flags.register(cmd)
	return cmd
}
