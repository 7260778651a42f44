package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/pipeline"
)

// configCommand creates the layer config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage layer config files",
	}

	cmd.AddCommand(c.configInitCommand())

	return cmd
}

// configInitCommand writes the resolved config for a dataset as TOML, a
// starting point for hand editing.
func (c *CLI) configInitCommand() *cobra.Command {
	var (
		flags  layerFlags
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [data file]",
		Short: "Write a layer config for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.loadOptions(cmd, args[0])
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
			_, cfg, err := runner.Prepare(contextOrBackground(cmd), opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := config.Encode(&buf, config.FromConfig(cfg)); err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}
			if err := writeArtifact(output, buf.Bytes()); err != nil {
				return err
			}
			printSuccess("Wrote layer config for %s", StyleHighlight.Render(cfg.Label))
			printChannels(cfg)
			printFile(output, buf.Len())
			printNextStep("Encode with", fmt.Sprintf("%s encode %s --config %s", appName, args[0], output))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
