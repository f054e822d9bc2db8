package bmp

import (
	"bufio"
	"errors"
	"image"
	"io"
)

// Encode writes m to w as a bottom-up 24 bit bitmap. Alpha is dropped.
func Encode(w io.Writer, m image.Image) error {
	bounds := m.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return errors.New("bmp: image has no pixels")
	}

	padding := RowPadding(width, false)
	fh, ih := newHeaders(width, height, padding)

	// Create a buffer (to reduce syscalls)
	bw := bufio.NewWriter(w)

	if err := WriteHeader(bw, fh, ih); err != nil {
		return err
	}

	paddingBytes := make([]byte, padding)
	pixels := make([]Pixel, width)

	// Write the pixels (BottomUp: last row first)
	for row := 0; row < height; row++ {
		y := bounds.Max.Y - row - 1
		for col := 0; col < width; col++ {
			pixels[col] = PixelOf(m.At(bounds.Min.X+col, y))
		}
		if err := WriteRow(bw, pixels); err != nil {
			return err
		}
		if _, err := bw.Write(paddingBytes); err != nil {
			return err
		}
	}

	return bw.Flush()
}
