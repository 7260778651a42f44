package color

import (
	"encoding/json"
	"testing"
)

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    RGBA
		wantErr bool
	}{
		{"#1E96BE", RGB(30, 150, 190), false},
		{"ff991f", RGB(255, 153, 31), false},
		{"#fff", RGB(255, 255, 255), false},
		{" #52A353 ", RGB(82, 163, 83), false},
		{"zzz", RGBA{}, true},
		{"", RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := HexToRGB(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HexToRGB(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HexToRGB(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHex(t *testing.T) {
	if got := RGB(30, 150, 190).Hex(); got != "#1e96be" {
		t.Errorf("Hex() = %s, want #1e96be", got)
	}
}

func TestRGBAJSON(t *testing.T) {
	b, err := json.Marshal(RGBA{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[1,2,3,4]" {
		t.Errorf("Marshal = %s, want [1,2,3,4]", b)
	}

	tests := []struct {
		in   string
		want RGBA
	}{
		{`[1,2,3]`, RGBA{1, 2, 3, 255}},
		{`[1,2,3,4]`, RGBA{1, 2, 3, 4}},
		{`"#000000"`, RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		var c RGBA
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if c != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, c, tt.want)
		}
	}

	var c RGBA
	if err := json.Unmarshal([]byte(`[1,2]`), &c); err == nil {
		t.Error("2-component color should fail")
	}
}

func TestInterpolate(t *testing.T) {
	black, white := RGB(0, 0, 0), RGB(255, 255, 255)
	stops := []RGBA{black, white}

	tests := []struct {
		t    float64
		want RGBA
	}{
		{0, black},
		{1, white},
		{-1, black},
		{2, white},
		{0.5, RGB(128, 128, 128)},
	}
	for _, tt := range tests {
		if got := Interpolate(stops, tt.t); got != tt.want {
			t.Errorf("Interpolate(%g) = %v, want %v", tt.t, got, tt.want)
		}
	}

	three := []RGBA{RGB(0, 0, 0), RGB(200, 0, 0), RGB(200, 200, 0)}
	if got := Interpolate(three, 0.5); got != RGB(200, 0, 0) {
		t.Errorf("Interpolate(mid stop) = %v, want %v", got, RGB(200, 0, 0))
	}
	if got := Interpolate(nil, 0.3); got != NoValueColor {
		t.Errorf("Interpolate(nil) = %v, want NoValueColor", got)
	}
}

func TestRanges(t *testing.T) {
	r, ok := RangeByName("global warming")
	if !ok {
		t.Fatal("RangeByName(global warming) not found")
	}
	if len(r.RGBA()) != 6 {
		t.Errorf("len(RGBA()) = %d, want 6", len(r.RGBA()))
	}
	rev := r.Reversed()
	if rev.Colors[0] != r.Colors[5] || r.Colors[0] != "#5A1846" {
		t.Error("Reversed should flip a copy and leave the original intact")
	}
	if _, ok := RangeByName("nope"); ok {
		t.Error("unknown range should not be found")
	}
}

func TestMaker(t *testing.T) {
	var m Maker
	first := m.Next()
	if first != MustHex(DataVizColors[0]) {
		t.Errorf("first color = %v, want %s", first, DataVizColors[0])
	}
	for i := 1; i < len(DataVizColors); i++ {
		m.Next()
	}
	if got := m.Next(); got != first {
		t.Errorf("color after full cycle = %v, want %v", got, first)
	}
	m.Reset()
	if got := m.Next(); got != first {
		t.Errorf("color after Reset = %v, want %v", got, first)
	}
}
