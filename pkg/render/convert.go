package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
)

const rsvgConvert = "rsvg-convert"

// ToPDF converts SVG bytes to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts SVG bytes to PNG, scaling the canvas by scale.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func convert(svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s not found; install librsvg", rsvgConvert)
	}
	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes())), "%s failed", rsvgConvert)
	}
	return stdout.Bytes(), nil
}

// RenderPNG renders drawables as PNG via SVG conversion.
func RenderPNG(drawables []layer.Drawable, bounds layer.Bounds, scale float64, opts ...SVGOption) ([]byte, error) {
	return ToPNG(RenderSVG(drawables, bounds, opts...), scale)
}

// RenderPDF renders drawables as PDF via SVG conversion.
func RenderPDF(drawables []layer.Drawable, bounds layer.Bounds, opts ...SVGOption) ([]byte, error) {
	return ToPDF(RenderSVG(drawables, bounds, opts...))
}
