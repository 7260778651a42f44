package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/internal/server"
	"github.com/matzehuels/pointlayer/pkg/cache"
)

const defaultAddr = "127.0.0.1:8080"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	redisAddr     string
	redisPassword string
	redisDB       int
	noCache       bool
	maxBodyMB     int64
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      defaultAddr,
		maxBodyMB: server.DefaultMaxBodyBytes >> 20,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the point layer HTTP API",
		Long: `Serve exposes layer instances over HTTP. Rendered artifacts are cached in
Redis when --redis-addr is set and in the local cache directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd)

			store, backend, err := c.serveCache(cmd, &opts)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Options{
				Addr:         opts.addr,
				Cache:        store,
				Logger:       c.Logger,
				MaxBodyBytes: opts.maxBodyMB << 20,
			})

			printSuccess("Serving point layers")
			printKeyValue("Address", StyleLink.Render("http://"+opts.addr))
			printKeyValue("Cache", backend)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the artifact cache")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().Int64Var(&opts.maxBodyMB, "max-body-mb", opts.maxBodyMB, "maximum upload size in MiB")

	return cmd
}

// serveCache picks the artifact cache backend and returns a label for it.
func (c *CLI) serveCache(cmd *cobra.Command, opts *serveOpts) (cache.Cache, string, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), "disabled", nil
	case opts.redisAddr != "":
		rc, err := cache.NewRedisCache(contextOrBackground(cmd), cache.RedisConfig{
			Addr:     opts.redisAddr,
			Password: opts.redisPassword,
			DB:       opts.redisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, "", fmt.Errorf("connect redis: %w", err)
		}
		return rc, "redis " + opts.redisAddr, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), "disabled", nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, "", err
	}
	return fc, "file " + dir, nil
}
