package layer

import (
	"slices"
)

// GlyphSet returns the distinct runes across labels, sorted. The result
// does not depend on label order.
func GlyphSet(labels []string) []rune {
	seen := make(map[rune]struct{})
	for _, s := range labels {
		for _, r := range s {
			seen[r] = struct{}{}
		}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

func labelsOf(data []DataPoint, acc *TextAccessor) []string {
	out := make([]string, len(data))
	for i, d := range data {
		out[i] = acc.At(d.Row)
	}
	return out
}
