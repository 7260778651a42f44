package scale

import (
	"math"
	"testing"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/errors"
)

var (
	red   = color.RGB(255, 0, 0)
	green = color.RGB(0, 255, 0)
	blue  = color.RGB(0, 0, 255)
)

func mustBuild(t *testing.T, kind Kind, d Domain, r Range) Func {
	t.Helper()
	f, err := Build(kind, d, r)
	if err != nil {
		t.Fatalf("Build(%s) error: %v", kind, err)
	}
	return f
}

func TestLinearNumbers(t *testing.T) {
	f := mustBuild(t, Linear, Domain{0.0, 10.0}, Range{Numbers: []float64{0, 50}})

	tests := []struct {
		in   any
		want float64
	}{
		{0.0, 0},
		{5.0, 25},
		{10.0, 50},
		{20.0, 100}, // unclamped
		{2, 10},
	}
	for _, tt := range tests {
		got, ok := f(tt.in)
		if !ok || got != tt.want {
			t.Errorf("linear(%v) = %v, %v; want %v, true", tt.in, got, ok, tt.want)
		}
	}

	for _, in := range []any{nil, math.NaN(), "x", math.Inf(1)} {
		if _, ok := f(in); ok {
			t.Errorf("linear(%v) should have no value", in)
		}
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	f := mustBuild(t, Linear, Domain{3.0, 3.0}, Range{Numbers: []float64{0, 50}})
	for _, in := range []any{3.0, 100.0} {
		if got, _ := f(in); got != 25.0 {
			t.Errorf("linear(%v) over degenerate domain = %v, want 25", in, got)
		}
	}
}

func TestLinearColors(t *testing.T) {
	f := mustBuild(t, Linear, Domain{0.0, 1.0}, Range{Colors: []color.RGBA{red, blue}})
	if got, _ := f(0.0); got != red {
		t.Errorf("linear(0) = %v, want %v", got, red)
	}
	if got, _ := f(1.0); got != blue {
		t.Errorf("linear(1) = %v, want %v", got, blue)
	}
}

func TestSqrt(t *testing.T) {
	f := mustBuild(t, Sqrt, Domain{0.0, 100.0}, Range{Numbers: []float64{0, 10}})
	if got, _ := f(25.0); got != 5.0 {
		t.Errorf("sqrt(25) = %v, want 5", got)
	}
}

func TestLog(t *testing.T) {
	f := mustBuild(t, Log, Domain{1.0, 100.0}, Range{Numbers: []float64{0, 2}})
	got, ok := f(10.0)
	if !ok || math.Abs(got.(float64)-1) > 1e-9 {
		t.Errorf("log(10) = %v, want 1", got)
	}
	if _, ok := f(0.0); ok {
		t.Error("log(0) should have no value")
	}

	if _, err := Build(Log, Domain{0.0, 10.0}, Range{Numbers: []float64{0, 1}}); !errors.Is(err, errors.ErrCodeInvalidScale) {
		t.Errorf("log over zero domain error = %v, want INVALID_SCALE", err)
	}
}

func TestQuantize(t *testing.T) {
	f := mustBuild(t, Quantize, Domain{0.0, 30.0}, Range{Colors: []color.RGBA{red, green, blue}})
	tests := []struct {
		in   float64
		want color.RGBA
	}{
		{-5, red},
		{0, red},
		{9.9, red},
		{10, green},
		{19.9, green},
		{20, blue},
		{30, blue},
		{99, blue},
	}
	for _, tt := range tests {
		if got, _ := f(tt.in); got != tt.want {
			t.Errorf("quantize(%g) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQuantile(t *testing.T) {
	d := Domain{8.0, 1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0}
	f := mustBuild(t, Quantile, d, Range{Colors: []color.RGBA{red, blue}})

	// median of 1..8 is 4.5
	tests := []struct {
		in   float64
		want color.RGBA
	}{
		{1, red},
		{4, red},
		{4.5, blue},
		{8, blue},
	}
	for _, tt := range tests {
		if got, _ := f(tt.in); got != tt.want {
			t.Errorf("quantile(%g) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, ok := f(nil); ok {
		t.Error("quantile(nil) should have no value")
	}
}

func TestOrdinal(t *testing.T) {
	f := mustBuild(t, Ordinal, Domain{"a", "b", "c"}, Range{Colors: []color.RGBA{red, green}})
	tests := []struct {
		in   any
		want any
		ok   bool
	}{
		{"a", red, true},
		{"b", green, true},
		{"c", red, true}, // wraps
		{"z", nil, false},
		{nil, nil, false},
	}
	for _, tt := range tests {
		got, ok := f(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ordinal(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	num := mustBuild(t, Ordinal, Domain{1, 2}, Range{Numbers: []float64{10, 20}})
	if got, _ := num(2.0); got != 20.0 {
		t.Errorf("ordinal(2.0) over int domain = %v, want 20", got)
	}
}

func TestFixed(t *testing.T) {
	f, err := Fixed(Domain{10.0, 500.0})
	if err != nil {
		t.Fatalf("Fixed error: %v", err)
	}
	for _, x := range []float64{10, 120, 500} {
		if got, _ := f(x); got != x {
			t.Errorf("fixed(%g) = %v, want %g", x, got, x)
		}
	}
	if _, err := Fixed(nil); err == nil {
		t.Error("Fixed(nil) should fail")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		domain Domain
		rng    Range
	}{
		{"empty range", Linear, Domain{0.0, 1.0}, Range{}},
		{"empty domain", Quantile, nil, Range{Numbers: []float64{0, 1}}},
		{"non-numeric domain", Linear, Domain{"a", "b"}, Range{Numbers: []float64{0, 1}}},
		{"unknown kind", Kind("threshold"), Domain{0.0}, Range{Numbers: []float64{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.kind, tt.domain, tt.rng)
			if !errors.Is(err, errors.ErrCodeInvalidScale) {
				t.Errorf("Build() error = %v, want INVALID_SCALE", err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Quantile"); err != nil || k != Quantile {
		t.Errorf("ParseKind(Quantile) = %v, %v", k, err)
	}
	if _, err := ParseKind("pow"); err == nil {
		t.Error("ParseKind(pow) should fail")
	}
	if !Sqrt.IsContinuous() || Ordinal.IsContinuous() {
		t.Error("IsContinuous mismatch")
	}
}
