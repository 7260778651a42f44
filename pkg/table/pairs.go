package table

import "strings"

var (
	latSuffixes = []string{"latitude", "lat"}
	lngSuffixes = []string{"longitude", "lng", "long", "lon"}
	altSuffixes = []string{"altitude", "alt"}
)

// FieldRef names a column by both name and index.
type FieldRef struct {
	Value    string `json:"value"`
	FieldIdx int    `json:"fieldIdx"`
}

// FieldPair is a latitude/longitude column pair that share a name prefix,
// e.g. "pickup_lat" and "pickup_lng". Altitude has FieldIdx -1 when no
// matching altitude column exists.
type FieldPair struct {
	DefaultName string
	Lat         FieldRef
	Lng         FieldRef
	Altitude    FieldRef
}

// FindPointFieldPairs detects latitude/longitude column pairs in field order.
// Matching is case-insensitive and each longitude column joins at most one
// pair.
func FindPointFieldPairs(fields []Field) []FieldPair {
	var pairs []FieldPair
	used := make(map[int]bool)

	for _, f := range fields {
		prefix, ok := trimSuffix(f.Name, latSuffixes)
		if !ok {
			continue
		}
		lng := matchField(fields, prefix, lngSuffixes, used)
		if lng.FieldIdx < 0 {
			continue
		}
		used[lng.FieldIdx] = true
		pairs = append(pairs, FieldPair{
			DefaultName: pairName(prefix),
			Lat:         FieldRef{Value: f.Name, FieldIdx: f.Index},
			Lng:         lng,
			Altitude:    matchField(fields, prefix, altSuffixes, used),
		})
	}
	return pairs
}

func trimSuffix(name string, suffixes []string) (string, bool) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return lower[:len(lower)-len(s)], true
		}
	}
	return "", false
}

func matchField(fields []Field, prefix string, suffixes []string, used map[int]bool) FieldRef {
	for _, s := range suffixes {
		for _, f := range fields {
			if !used[f.Index] && strings.ToLower(f.Name) == prefix+s {
				return FieldRef{Value: f.Name, FieldIdx: f.Index}
			}
		}
	}
	return FieldRef{FieldIdx: -1}
}

func pairName(prefix string) string {
	name := strings.Trim(prefix, "_- .")
	if name == "" {
		return "point"
	}
	return name
}
