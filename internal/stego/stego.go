// Package stego hides one bitmap inside the low nibbles of another and
// brings it back out.
package stego

import (
	"image"

	"github.com/jwSharp/image-processing/internal/bits"
	"github.com/jwSharp/image-processing/internal/bmp"
)

func swapPixel(p bmp.Pixel) bmp.Pixel {
	return p.Map(bits.SwapBits)
}

// Reveal swaps the high and low nibble of every channel in place, bringing
// a hidden image to the front. Applying it twice restores the file.
func Reveal(b *bmp.Image) error {
	return b.Transform(func(_ int, pixels []bmp.Pixel) {
		for i := range pixels {
			pixels[i] = swapPixel(pixels[i])
		}
	})
}

// Peek is Reveal under the name the menu uses. It modifies the file; see
// PeekView for a copy that leaves the file alone.
func Peek(b *bmp.Image) error {
	return Reveal(b)
}

// PeekView returns what Reveal would produce without writing anything.
func PeekView(b *bmp.Image) (*image.RGBA, error) {
	return b.Render(swapPixel)
}

// Hide stores the high nibble of every channel of hidden in the low nibble
// of the matching channel of host. Only host is written to, and nothing is
// written unless both images are 24 bpp and the same size.
func Hide(host, hidden *bmp.Image) error {
	return host.TransformWith(hidden, func(_ int, dst, src []bmp.Pixel) {
		for i := range dst {
			dst[i] = bmp.Pixel{
				B: bits.CombineBits(dst[i].B, src[i].B),
				G: bits.CombineBits(dst[i].G, src[i].G),
				R: bits.CombineBits(dst[i].R, src[i].R),
			}
		}
	})
}
