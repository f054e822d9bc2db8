// Package bmptest builds bitmap fixtures for tests.
package bmptest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwSharp/image-processing/internal/bmp"
	"github.com/stretchr/testify/require"
)

// Write creates a bitmap in a fresh temporary directory. rows are in
// storage order, so rows[0] is the first row in the file.
func Write(t testing.TB, rows [][]bmp.Pixel, opts ...bmp.Option) string {
	t.Helper()
	require.NotEmpty(t, rows)

	path := filepath.Join(t.TempDir(), "image.bmp")
	img, err := bmp.Create(path, len(rows[0]), len(rows), opts...)
	require.NoError(t, err)
	defer img.Close()

	for row, pixels := range rows {
		require.NoError(t, img.WriteRowAt(row, pixels))
	}
	return path
}

// Rows reads every row of the bitmap at path in storage order.
func Rows(t testing.TB, path string, opts ...bmp.Option) [][]bmp.Pixel {
	t.Helper()

	img, err := bmp.Open(path, append(opts, bmp.ReadOnly())...)
	require.NoError(t, err)
	defer img.Close()

	rows := make([][]bmp.Pixel, img.Height())
	for row := range rows {
		rows[row] = make([]bmp.Pixel, img.Width())
		require.NoError(t, img.ReadRowAt(row, rows[row]))
	}
	return rows
}

// Bytes returns the raw file contents.
func Bytes(t testing.TB, path string) []byte {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

// SetBitCount overwrites the bits-per-pixel field in the DIB header.
func SetBitCount(t testing.TB, path string, bpp int16) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(bpp))
	_, err = f.WriteAt(b[:], 28)
	require.NoError(t, err)
}

// Gradient returns width x height pixels with no two pixels alike.
func Gradient(width, height int) [][]bmp.Pixel {
	rows := make([][]bmp.Pixel, height)
	for row := range rows {
		rows[row] = make([]bmp.Pixel, width)
		for col := range rows[row] {
			n := byte(row*width + col)
			rows[row][col] = bmp.Pixel{B: 0x12 + n, G: 0x9c - n, R: 0x3f ^ n}
		}
	}
	return rows
}
