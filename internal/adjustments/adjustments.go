// Adjusts image dimensions, orientation, or structure.
package adjustments

import (
	"github.com/jwSharp/image-processing/internal/bmp"
)

// Flips the bitmap horizontally in place, swapping each pixel with the one
// at the same distance from the opposite edge.
func HFlip(b *bmp.Image) error {
	return b.Transform(func(_ int, pixels []bmp.Pixel) {
		width := len(pixels)
		for w := 0; w < width/2; w++ {
			pixels[w], pixels[width-1-w] = pixels[width-1-w], pixels[w]
		}
	})
}

// Mirrors the right half of the bitmap onto the left half in place. Unlike
// HFlip this is a copy: a row [A B C D] becomes [D C C D].
func Mirror(b *bmp.Image) error {
	return b.Transform(func(_ int, pixels []bmp.Pixel) {
		width := len(pixels)
		for w := 0; w < width/2; w++ {
			pixels[w] = pixels[width-1-w]
		}
	})
}
