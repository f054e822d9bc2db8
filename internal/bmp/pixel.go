package bmp

import "image/color"

// Pixel is one 24-bit pixel, fields in on-disk order.
type Pixel struct {
	B, G, R byte
}

// Returns the Pixels in bytes as BGR (Blue, Green, Red)
func (p Pixel) BytesBGR() []byte {
	return []byte{p.B, p.G, p.R}
}

// RGBA converts the pixel to an opaque color.RGBA.
func (p Pixel) RGBA() color.RGBA {
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// PixelOf converts any color to a Pixel. Alpha is dropped without being
// applied, so translucent colors keep their full value.
func PixelOf(c color.Color) Pixel {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{B: n.B, G: n.G, R: n.R}
}

// Map applies fn to each of the three channels.
func (p Pixel) Map(fn func(byte) byte) Pixel {
	return Pixel{B: fn(p.B), G: fn(p.G), R: fn(p.R)}
}

func decodePixels(b []byte, pixels []Pixel) {
	for i := range pixels {
		pixels[i] = Pixel{B: b[i*3], G: b[i*3+1], R: b[i*3+2]}
	}
}

func encodePixels(pixels []Pixel, b []byte) {
	for i, p := range pixels {
		b[i*3], b[i*3+1], b[i*3+2] = p.B, p.G, p.R
	}
}
