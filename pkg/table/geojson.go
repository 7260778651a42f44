package table

import (
	"encoding/json"
	"io"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/errors"
)

// GeoJSON datasets always carry their coordinates in these two leading columns.
const (
	GeoJSONLatField = "lat"
	GeoJSONLngField = "lng"
)

// ReadGeoJSON turns a FeatureCollection into a dataset with one row per
// feature. Point features contribute their coordinates; any other geometry
// contributes the center of its bounding box. Features without geometry get
// nil coordinates and are dropped later by the row filter.
//
// Property columns follow lat and lng in sorted key order. Nested property
// values are stored as their JSON text.
func ReadGeoJSON(r io.Reader, id string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read geojson")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse geojson")
	}

	keys := propertyKeys(fc.Features)
	fields := make([]Field, 0, len(keys)+2)
	fields = append(fields,
		Field{Name: GeoJSONLatField, Type: FieldReal, Index: 0},
		Field{Name: GeoJSONLngField, Type: FieldReal, Index: 1},
	)

	rows := make([]Row, len(fc.Features))
	for i, f := range fc.Features {
		row := make(Row, len(keys)+2)
		if f.Geometry != nil {
			pt := featurePoint(f.Geometry)
			row[0], row[1] = pt.Lat(), pt.Lon()
		}
		for k, key := range keys {
			row[k+2] = propertyValue(f.Properties[key])
		}
		rows[i] = row
	}

	for k, key := range keys {
		fields = append(fields, Field{
			Name:  key,
			Type:  columnType(rows, k+2),
			Index: k + 2,
		})
	}

	return &Dataset{
		ID:     id,
		Fields: fields,
		Rows:   rows,
		Hash:   cache.Hash(data),
	}, nil
}

func featurePoint(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}

func propertyKeys(features []*geojson.Feature) []string {
	seen := make(map[string]struct{})
	for _, f := range features {
		for k := range f.Properties {
			if k == GeoJSONLatField || k == GeoJSONLngField {
				continue
			}
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func propertyValue(v any) any {
	switch x := v.(type) {
	case nil, float64, string, bool:
		return x
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func columnType(rows []Row, col int) FieldType {
	isInt, isReal, isBool := true, true, true
	seen := false
	for _, r := range rows {
		switch x := r[col].(type) {
		case nil:
			continue
		case float64:
			isBool = false
			if x != math.Trunc(x) {
				isInt = false
			}
		case bool:
			isInt, isReal = false, false
		default:
			return FieldString
		}
		seen = true
	}
	switch {
	case !seen:
		return FieldString
	case isInt && isReal:
		return FieldInteger
	case isReal:
		return FieldReal
	case isBool:
		return FieldBoolean
	}
	return FieldString
}
