package color

import "strings"

// Range is a named, ordered list of colors used as a scale range.
type Range struct {
	Name     string   `json:"name" toml:"name"`
	Type     string   `json:"type" toml:"type"`
	Category string   `json:"category" toml:"category"`
	Colors   []string `json:"colors" toml:"colors"`
}

// RGBA parses the range's hex colors. Unparseable entries are skipped.
func (r Range) RGBA() []RGBA {
	out := make([]RGBA, 0, len(r.Colors))
	for _, h := range r.Colors {
		if c, err := HexToRGB(h); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Reversed returns a copy with the color order flipped.
func (r Range) Reversed() Range {
	c := make([]string, len(r.Colors))
	for i, h := range r.Colors {
		c[len(c)-1-i] = h
	}
	r.Colors = c
	return r
}

// Built-in ranges.
var (
	GlobalWarming = Range{
		Name:     "Global Warming",
		Type:     "sequential",
		Category: "Uber",
		Colors:   []string{"#5A1846", "#900C3F", "#C70039", "#E3611C", "#F1920E", "#FFC300"},
	}
	UberVizQualitative = Range{
		Name:     "Uber Viz Qualitative",
		Type:     "qualitative",
		Category: "Uber",
		Colors: []string{
			"#12939A", "#DDB27C", "#88572C", "#FF991F", "#F15C17",
			"#223F9A", "#DA70BF", "#125C77", "#4DC19C", "#776E57",
		},
	}
	IceAndFire = Range{
		Name:     "Ice And Fire",
		Type:     "diverging",
		Category: "Uber",
		Colors:   []string{"#0198BD", "#49E3CE", "#E8FEB5", "#FEEDB1", "#FEAD54", "#D50255"},
	}
	UberPool = Range{
		Name:     "Uber Pool",
		Type:     "sequential",
		Category: "Uber",
		Colors:   []string{"#213E9A", "#3C1FA7", "#811CB5", "#C318B0", "#D01367", "#DE0F0E"},
	}
)

// DefaultRange is the fill and stroke range of a new layer.
var DefaultRange = GlobalWarming

var ranges = []Range{GlobalWarming, UberVizQualitative, IceAndFire, UberPool}

// Ranges returns the built-in ranges.
func Ranges() []Range {
	return append([]Range(nil), ranges...)
}

// RangeByName finds a built-in range, ignoring case.
func RangeByName(name string) (Range, bool) {
	for _, r := range ranges {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Range{}, false
}
