package bmp

import (
	"fmt"
	"io"
)

// RowByteLength returns the number of pixel bytes in a row, excluding
// padding.
func RowByteLength(width int) int {
	return width * bytesPerPixel
}

// RowPadding returns the number of bytes that follow each row.
//
// Rows are padded to a multiple of four bytes. With legacy set the older
// RowByteLength%4 formula is used instead, which only agrees with the
// format for even widths; it exists to process files written by tools that
// got this wrong.
func RowPadding(width int, legacy bool) int {
	n := RowByteLength(width)
	if legacy {
		return n % 4
	}
	return (4 - n%4) % 4
}

// SeekToPixelData positions s on the first byte of the pixel array.
func SeekToPixelData(s io.Seeker, fh BitmapFileHeader) error {
	if _, err := s.Seek(int64(fh.OffBits), io.SeekStart); err != nil {
		return err
	}
	return nil
}

// ReadRow reads width pixels at the current position and then skips
// padding bytes.
func ReadRow(s io.ReadSeeker, width, padding int) ([]Pixel, error) {
	pixels := make([]Pixel, width)
	if err := readRow(s, pixels, padding); err != nil {
		return nil, err
	}
	return pixels, nil
}

func readRow(s io.ReadSeeker, pixels []Pixel, padding int) error {
	b := make([]byte, RowByteLength(len(pixels)))
	if _, err := io.ReadFull(s, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	decodePixels(b, pixels)

	if padding > 0 {
		if _, err := s.Seek(int64(padding), io.SeekCurrent); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes pixels at the current position. Padding is not skipped;
// the caller seeks past it.
func WriteRow(w io.Writer, pixels []Pixel) error {
	b := make([]byte, RowByteLength(len(pixels)))
	encodePixels(pixels, b)

	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(b))
	}
	return nil
}
