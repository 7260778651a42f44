package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateLayerID validates a layer instance identifier.
// Layer IDs are UUIDs issued by the server; anything else is rejected before
// it reaches a registry lookup.
func ValidateLayerID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "layer id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid layer id %q", id)
	}
	return nil
}

// ValidateFieldName validates a dataset column name referenced by a layer config.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateFieldName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidConfig, "field name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidConfig, "field name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "field name contains invalid control characters")
		}
	}
	return nil
}

// ValidateRange checks that a numeric [min, max] pair is finite and ordered.
func ValidateRange(name string, r [2]float64) error {
	if math.IsNaN(r[0]) || math.IsNaN(r[1]) || math.IsInf(r[0], 0) || math.IsInf(r[1], 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got [%g, %g]", name, r[0], r[1])
	}
	if r[0] > r[1] {
		return New(ErrCodeInvalidConfig, "%s must be ordered, got [%g, %g]", name, r[0], r[1])
	}
	return nil
}

// ValidateUnit checks that v lies in [0, 1] (opacity and similar settings).
func ValidateUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be within [0, 1], got %g", name, v)
	}
	return nil
}

// ValidateHexColor checks the shape of a CSS hex color (#rgb or #rrggbb).
func ValidateHexColor(s string) error {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 3 && len(h) != 6 {
		return New(ErrCodeInvalidConfig, "invalid hex color %q", s)
	}
	for _, c := range h {
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return New(ErrCodeInvalidConfig, "invalid hex color %q", s)
		}
	}
	return nil
}
