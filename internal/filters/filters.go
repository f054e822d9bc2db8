// Filters perform color manipulation and per-pixel operations
package filters

import (
	"errors"

	"github.com/jwSharp/image-processing/internal/bits"
	"github.com/jwSharp/image-processing/internal/bmp"
	"github.com/jwSharp/image-processing/internal/utils"
)

// Grayscale methods
const (
	Linear  = "linear"
	Average = "average"
	Luma    = "luma"
)

// Inverts (negates) the bitmap image in place
func Invert(b *bmp.Image) error {
	return b.Transform(func(_ int, pixels []bmp.Pixel) {
		for i := range pixels {
			pixels[i] = pixels[i].Map(bits.InvertBits)
		}
	})
}

// Converts a bitmap to Black-and-White in place.
//
// method can be "linear" (luminance of the linearized channels, the
// default), "average" (mean of the three channels) or "luma" (ITU-R 601-2
// weights on the stored values).
func Grayscale(b *bmp.Image, method string) error {
	var gray func(p bmp.Pixel) byte

	switch method {
	case Linear, "":
		gray = func(p bmp.Pixel) byte {
			return bits.Luminance(p.R, p.G, p.B)
		}
	case Average:
		gray = func(p bmp.Pixel) byte {
			return byte(utils.Average(int(p.R), int(p.G), int(p.B)))
		}
	case Luma:
		gray = func(p bmp.Pixel) byte {
			return byte(int(p.R)*299/1000 + int(p.G)*587/1000 + int(p.B)*114/1000)
		}
	default:
		return errors.New("invalid method: method must be linear, average or luma")
	}

	return b.Transform(func(_ int, pixels []bmp.Pixel) {
		for i, p := range pixels {
			L := gray(p)
			pixels[i] = bmp.Pixel{B: L, G: L, R: L}
		}
	})
}
