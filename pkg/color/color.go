// Package color holds the color values the layer encodes into: RGBA tuples,
// hex parsing, named color ranges, and gradient interpolation.
//
// Parsing and blending are delegated to go-colorful; this package only fixes
// the representation the rest of pointlayer passes around.
package color

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/pointlayer/pkg/errors"
)

// RGBA is an 8-bit color. It encodes to JSON as [r, g, b, a].
type RGBA struct {
	R, G, B, A uint8
}

// NoValueColor is substituted when a bound field has no value for a row.
var NoValueColor = RGBA{0, 0, 0, 0}

// RGB returns an opaque color.
func RGB(r, g, b uint8) RGBA {
	return RGBA{r, g, b, 255}
}

// HexToRGB parses "#rrggbb" or "#rgb" (the leading # is optional) into an
// opaque color.
func HexToRGB(s string) (RGBA, error) {
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return RGBA{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid hex color %q", s)
	}
	return fromColorful(c), nil
}

// MustHex is HexToRGB for package-level literals. It panics on bad input.
func MustHex(s string) RGBA {
	c, err := HexToRGB(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#rrggbb", ignoring alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns alpha as a fraction in [0, 1].
func (c RGBA) Opacity() float64 {
	return float64(c.A) / 255
}

// IsZero reports whether c is fully transparent black.
func (c RGBA) IsZero() bool {
	return c == RGBA{}
}

// MarshalJSON encodes the color as a 4-element array.
func (c RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]uint8{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON accepts a 3- or 4-element array or a hex string.
func (c *RGBA) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := HexToRGB(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 3 && len(arr) != 4 {
		return errors.New(errors.ErrCodeInvalidConfig, "color must have 3 or 4 components, got %d", len(arr))
	}
	v := [4]uint8{0, 0, 0, 255}
	for i, x := range arr {
		if x < 0 || x > 255 {
			return errors.New(errors.ErrCodeInvalidConfig, "color component %d out of range", x)
		}
		v[i] = uint8(x)
	}
	*c = RGBA{v[0], v[1], v[2], v[3]}
	return nil
}

// Interpolate returns the color at t in [0, 1] along the piecewise linear
// RGB gradient through stops. t outside [0, 1] is clamped.
func Interpolate(stops []RGBA, t float64) RGBA {
	switch len(stops) {
	case 0:
		return NoValueColor
	case 1:
		return stops[0]
	}
	if t <= 0 || t != t {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	a, b := toColorful(stops[i]), toColorful(stops[i+1])
	out := fromColorful(a.BlendRgb(b, pos-float64(i)))
	out.A = stops[i].A
	return out
}

func toColorful(c RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGBA {
	r, g, b := c.RGB255()
	return RGB(r, g, b)
}
