package table

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pointlayer/pkg/errors"
)

// Format identifies a dataset file format.
type Format string

// Supported dataset formats.
const (
	FormatCSV     Format = "csv"
	FormatGeoJSON Format = "geojson"
)

// DetectFormat guesses the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported dataset file %q (want .csv or .geojson)", path)
}

// Load opens path and parses it with the reader for format. An empty format
// is detected from the extension. The dataset ID is the base file name.
func Load(path string, format Format) (*Dataset, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open dataset %s", path)
	}
	defer f.Close()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch format {
	case FormatCSV:
		return ReadCSV(f, id)
	case FormatGeoJSON:
		return ReadGeoJSON(f, id)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported dataset format %q", format)
}
