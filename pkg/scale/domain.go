package scale

import (
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/pointlayer/pkg/table"
)

// DomainFor derives the domain a scale of kind needs from a column's values.
func DomainFor(kind Kind, values []any) Domain {
	switch kind {
	case Ordinal:
		return OrdinalDomain(values)
	case Quantile:
		return QuantileDomain(values)
	}
	return ContinuousDomain(values)
}

// ContinuousDomain returns [min, max] over the finite numeric values, or nil
// when there are none.
func ContinuousDomain(values []any) Domain {
	xs := Domain(values).Floats()
	if len(xs) == 0 {
		return nil
	}
	lo, hi := stats.Bounds(xs)
	return Domain{lo, hi}
}

// QuantileDomain returns every finite numeric value, sorted ascending.
func QuantileDomain(values []any) Domain {
	xs := Domain(values).Floats()
	if len(xs) == 0 {
		return nil
	}
	sort.Float64s(xs)
	out := make(Domain, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// OrdinalDomain returns the distinct non-null values, sorted. All-numeric
// columns sort numerically; anything else sorts by its label text.
func OrdinalDomain(values []any) Domain {
	seen := make(map[any]struct{})
	var out Domain
	numeric := true
	for _, v := range values {
		if table.IsNull(v) {
			continue
		}
		k := ordinalKey(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if _, isNum := k.(float64); !isNum {
			numeric = false
		}
		out = append(out, k)
	}
	if numeric {
		sort.Slice(out, func(i, j int) bool { return out[i].(float64) < out[j].(float64) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return table.String(out[i]) < table.String(out[j]) })
	}
	return out
}
