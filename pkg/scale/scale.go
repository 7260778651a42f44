// Package scale builds the value-to-visual mappings behind a layer's
// channels.
//
// A [Func] maps one raw cell value to an encoded value (a [color.RGBA] or a
// float64). Continuous kinds normalize through go-moremath's linear scale;
// quantile thresholds come from go-moremath's sample quantiles (Hyndman and
// Fan method R8). Scales are cheap to build and are rebuilt on every pass.
//
// Construction errors carry [errors.ErrCodeInvalidScale]; callers substitute
// the channel's constant fallback.
package scale

import (
	"math"
	"sort"
	"strings"

	mscale "github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Kind names a scale type.
type Kind string

// Scale kinds.
const (
	Linear   Kind = "linear"
	Sqrt     Kind = "sqrt"
	Log      Kind = "log"
	Quantize Kind = "quantize"
	Quantile Kind = "quantile"
	Ordinal  Kind = "ordinal"
)

var kinds = []Kind{Linear, Sqrt, Log, Quantize, Quantile, Ordinal}

// Kinds lists the supported scale kinds.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind parses a kind name, ignoring case.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidScale, "unknown scale %q", s)
}

// IsContinuous reports whether the kind interpolates between range ends.
func (k Kind) IsContinuous() bool {
	return k == Linear || k == Sqrt || k == Log
}

// Func maps a cell value to an encoded value. ok is false when the value
// cannot be encoded; the caller substitutes the channel's null value.
type Func func(v any) (out any, ok bool)

// Domain is the set of input values a scale is defined over. Continuous
// kinds read the first and last entries as [min, max].
type Domain []any

// Floats returns the finite numeric entries in order.
func (d Domain) Floats() []float64 {
	out := make([]float64, 0, len(d))
	for _, v := range d {
		if f := table.Float(v); table.IsFinite(f) {
			out = append(out, f)
		}
	}
	return out
}

// Range is a scale's output: either a color list or numbers.
type Range struct {
	Colors  []color.RGBA
	Numbers []float64
}

// IsColor reports whether the range holds colors.
func (r Range) IsColor() bool {
	return len(r.Colors) > 0
}

// Len returns the number of range stops.
func (r Range) Len() int {
	if r.IsColor() {
		return len(r.Colors)
	}
	return len(r.Numbers)
}

func (r Range) at(i int) any {
	if r.IsColor() {
		return r.Colors[i]
	}
	return r.Numbers[i]
}

// interpolate maps a normalized position onto the range. Numbers
// extrapolate; colors clamp to the end stops.
func (r Range) interpolate(t float64) any {
	if r.IsColor() {
		return color.Interpolate(r.Colors, t)
	}
	n := r.Numbers
	if len(n) == 1 {
		return n[0]
	}
	pos := t * float64(len(n)-1)
	i := int(math.Floor(pos))
	i = max(0, min(i, len(n)-2))
	return n[i] + (pos-float64(i))*(n[i+1]-n[i])
}

// Build returns the scale of the given kind over domain and rng.
func Build(kind Kind, domain Domain, rng Range) (Func, error) {
	if rng.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "%s scale: empty range", kind)
	}
	if len(domain) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "%s scale: empty domain", kind)
	}

	switch kind {
	case Linear:
		return continuous(domain, rng, identity)
	case Sqrt:
		return continuous(domain, rng, signedSqrt)
	case Log:
		return logScale(domain, rng)
	case Quantize:
		return quantize(domain, rng)
	case Quantile:
		return quantile(domain, rng)
	case Ordinal:
		return ordinal(domain, rng), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidScale, "unknown scale %q", kind)
}

// Fixed returns the scale used in fixed-radius mode: a linear map from the
// domain onto itself, so a value passes through as the radius in meters.
func Fixed(domain Domain) (Func, error) {
	d := domain.Floats()
	if len(d) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "fixed scale: empty domain")
	}
	return continuous(domain, Range{Numbers: []float64{d[0], d[len(d)-1]}}, identity)
}

func identity(x float64) float64 { return x }

func signedSqrt(x float64) float64 {
	if x < 0 {
		return -math.Sqrt(-x)
	}
	return math.Sqrt(x)
}

func continuous(domain Domain, rng Range, transform func(float64) float64) (Func, error) {
	d := domain.Floats()
	if len(d) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "continuous scale: no numeric domain values")
	}
	lo, hi := transform(d[0]), transform(d[len(d)-1])
	lin := mscale.Linear{Min: lo, Max: hi}

	return func(v any) (any, bool) {
		x := table.Float(v)
		if !table.IsFinite(x) {
			return nil, false
		}
		t := 0.5
		if lo != hi {
			t = lin.Map(transform(x))
		}
		return rng.interpolate(t), true
	}, nil
}

func logScale(domain Domain, rng Range) (Func, error) {
	d := domain.Floats()
	if len(d) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "log scale: no numeric domain values")
	}
	lo, hi := d[0], d[len(d)-1]
	if lo*hi <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "log scale: domain [%g, %g] crosses or touches zero", lo, hi)
	}
	sign := 1.0
	if lo < 0 {
		sign = -1
	}
	f, err := continuous(domain, rng, func(x float64) float64 {
		return math.Log(sign * x)
	})
	if err != nil {
		return nil, err
	}
	return func(v any) (any, bool) {
		if x := table.Float(v); sign*x <= 0 {
			return nil, false
		}
		return f(v)
	}, nil
}

// quantize splits [min, max] into Len() equal bins.
func quantize(domain Domain, rng Range) (Func, error) {
	d := domain.Floats()
	if len(d) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "quantize scale: no numeric domain values")
	}
	x0, x1 := d[0], d[len(d)-1]
	n := rng.Len() - 1
	thresholds := make([]float64, n)
	for i := range thresholds {
		thresholds[i] = (float64(i+1)*x1 - float64(i-n)*x0) / float64(n+1)
	}
	return thresholdScale(thresholds, rng), nil
}

// quantile assigns each range stop an equal share of the sorted domain.
func quantile(domain Domain, rng Range) (Func, error) {
	d := domain.Floats()
	if len(d) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScale, "quantile scale: no numeric domain values")
	}
	sort.Float64s(d)
	sample := stats.Sample{Xs: d, Sorted: true}
	n := rng.Len()
	thresholds := make([]float64, n-1)
	for i := range thresholds {
		thresholds[i] = sample.Quantile(float64(i+1) / float64(n))
	}
	return thresholdScale(thresholds, rng), nil
}

func thresholdScale(thresholds []float64, rng Range) Func {
	return func(v any) (any, bool) {
		x := table.Float(v)
		if math.IsNaN(x) {
			return nil, false
		}
		i := sort.Search(len(thresholds), func(i int) bool { return thresholds[i] > x })
		return rng.at(i), true
	}
}

// ordinal maps the i-th domain value to the i-th range stop, wrapping
// around when the domain is longer than the range. Values outside the
// domain have no encoding.
func ordinal(domain Domain, rng Range) Func {
	index := make(map[any]int, len(domain))
	for _, v := range domain {
		if table.IsNull(v) {
			continue
		}
		k := ordinalKey(v)
		if _, ok := index[k]; !ok {
			index[k] = len(index)
		}
	}
	return func(v any) (any, bool) {
		if table.IsNull(v) {
			return nil, false
		}
		i, ok := index[ordinalKey(v)]
		if !ok {
			return nil, false
		}
		return rng.at(i % rng.Len()), true
	}
}

// ordinalKey folds every numeric type onto float64 so 1 and 1.0 match.
func ordinalKey(v any) any {
	if f := table.Float(v); !math.IsNaN(f) {
		return f
	}
	return v
}
