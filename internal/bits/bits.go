// Package bits holds the per-channel transforms used by the image
// operations. Every function works on a single 8-bit channel value.
package bits

import "math"

// Rec. 709 luminance weights, applied to linear-light channels.
const (
	weightR = 0.2126
	weightG = 0.7152
	weightB = 0.0722
)

// SwapBits exchanges the high and low nibbles of c.
func SwapBits(c byte) byte {
	return c<<4 | c>>4
}

// CombineBits keeps the high nibble of c1 and stores the high nibble of c2
// in the low nibble.
func CombineBits(c1, c2 byte) byte {
	return c1&0xf0 | (c2&0xf0)>>4
}

// InvertBits flips all eight bits of c.
func InvertBits(c byte) byte {
	return ^c
}

// Linearize expands an sRGB encoded channel to linear light in [0, 1].
func Linearize(c byte) float64 {
	v := float64(c) / 255
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Delinearize compresses linear light back to an sRGB channel, rounding to
// the nearest value and clamping to [0, 255].
func Delinearize(l float64) byte {
	var v float64
	if l <= 0.0031308 {
		v = l * 12.92
	} else {
		v = 1.055*math.Pow(l, 1/2.4) - 0.055
	}
	return byte(math.Round(math.Min(math.Max(v*255, 0), 255)))
}

// Luminance returns the gray level with the same luminance as (r, g, b).
func Luminance(r, g, b byte) byte {
	return Delinearize(weightR*Linearize(r) + weightG*Linearize(g) + weightB*Linearize(b))
}
