package errors

import (
	"math"
	"testing"
)

func TestValidateLayerID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "6f1c1c52-52a1-4a39-9d0e-1f6f3b1b8f0a", false},

		{"empty", "", true},
		{"not a uuid", "layer-1", true},
		{"path traversal", "../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayerID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayerID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateLayerID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "lat", false},
		{"with space", "trip distance", false},
		{"unicode", "höhe", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "lat\x01", true},
		{"newline", "lat\nlng", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		input   [2]float64
		wantErr bool
	}{
		{"ordered", [2]float64{0, 50}, false},
		{"degenerate", [2]float64{3, 3}, false},

		{"reversed", [2]float64{50, 0}, true},
		{"nan", [2]float64{math.NaN(), 1}, true},
		{"inf", [2]float64{0, math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("radiusRange", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnit(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := ValidateUnit("opacity", v); err != nil {
			t.Errorf("ValidateUnit(%g) unexpected error: %v", v, err)
		}
	}
	for _, v := range []float64{-0.1, 1.1, math.NaN()} {
		if err := ValidateUnit("opacity", v); err == nil {
			t.Errorf("ValidateUnit(%g) should fail", v)
		}
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#1E96BE", false},
		{"1e96be", false},
		{"#fff", false},

		{"", true},
		{"#12345", true},
		{"#gggggg", true},
		{"rgb(1,2,3)", true},
	}

	for _, tt := range tests {
		err := ValidateHexColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
