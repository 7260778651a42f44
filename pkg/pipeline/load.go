package pipeline

import (
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Load parses the dataset named by opts.
func Load(opts Options) (*table.Dataset, error) {
	return table.Load(opts.DataPath, opts.DataFormat)
}

// ResolveConfig builds the layer config for ds. An explicit config (or
// config file) is bound against ds; otherwise the first proposal from
// [layer.FindDefaultLayerProps] is used.
func ResolveConfig(ds *table.Dataset, opts Options) (layer.Config, error) {
	f := opts.Config
	if f == nil && opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return layer.Config{}, err
		}
		f = loaded
	}
	if f != nil {
		return f.Resolve(ds)
	}

	proposals := layer.FindDefaultLayerProps(ds, nil)
	if len(proposals) == 0 {
		return layer.Config{}, errors.New(errors.ErrCodeInvalidColumns,
			"dataset %s has no latitude/longitude column pair", ds.ID)
	}
	return proposals[0].UpdateLayerDomain(ds), nil
}
