package filters

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// Quantize reduces m to at most colors distinct colors using median cut.
func Quantize(m image.Image, colors int) (*image.Paletted, error) {
	if colors < 2 || colors > 256 {
		return nil, errors.New("invalid colors: must be between 2 and 256")
	}

	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return pm, nil
}
