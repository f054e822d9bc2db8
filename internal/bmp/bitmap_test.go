package bmp_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwSharp/image-processing/internal/bmp"
	"github.com/jwSharp/image-processing/internal/bmp/bmptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyStream fails any write that starts at failAt.
type faultyStream struct {
	*os.File
	failAt int64
}

func (f *faultyStream) Write(p []byte) (int, error) {
	pos, err := f.File.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	if pos == f.failAt {
		return 0, errors.New("disk full")
	}
	return f.File.Write(p)
}

func TestRowPadding(t *testing.T) {
	tables := []struct {
		width   int
		correct int
		legacy  int
	}{
		{1, 1, 3},
		{2, 2, 2},
		{3, 3, 1},
		{4, 0, 0},
		{5, 1, 3},
		{6, 2, 2},
	}

	for _, table := range tables {
		assert.Equal(t, table.width*3, bmp.RowByteLength(table.width))
		assert.Equal(t, table.correct, bmp.RowPadding(table.width, false), "width %d", table.width)
		assert.Equal(t, table.legacy, bmp.RowPadding(table.width, true), "width %d legacy", table.width)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := bmp.Open(filepath.Join(t.TempDir(), "missing.bmp"))
	assert.ErrorIs(t, err, bmp.ErrOpenFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenInvalidOffset(t *testing.T) {
	path := bmptest.Write(t, bmptest.Gradient(2, 2))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], 4096)
	_, err = f.WriteAt(b[:], 10)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = bmp.Open(path)
	assert.ErrorIs(t, err, bmp.ErrInvalidOffset)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.bmp")
	img, err := bmp.Create(path, 3, 2)
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, 3, img.Width())
	assert.Equal(t, 2, img.Height())
	assert.Equal(t, 3, img.Padding)
	assert.Equal(t, 12, img.Stride)
	assert.Equal(t, int32(54+24), img.BFHeader.Size)
	assert.Contains(t, img.Layout(), "Padding: \t3 bytes")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(78), info.Size())

	_, err = bmp.Create(path, 0, 2)
	assert.Error(t, err)
	_, err = bmp.Create(path, 2, -1)
	assert.Error(t, err)
}

func TestReadWriteRowAt(t *testing.T) {
	rows := bmptest.Gradient(3, 4)
	path := bmptest.Write(t, rows)

	assert.Equal(t, rows, bmptest.Rows(t, path))

	// Padding bytes stay zero
	b := bmptest.Bytes(t, path)
	require.Len(t, b, 54+4*12)
	for row := 0; row < 4; row++ {
		assert.Equal(t, []byte{0, 0, 0}, b[54+row*12+9:54+row*12+12])
	}
	assert.Equal(t, rows[0][0].BytesBGR(), b[54:57])
}

func TestLegacyPaddingLayout(t *testing.T) {
	rows := bmptest.Gradient(1, 3)
	path := bmptest.Write(t, rows, bmp.WithLegacyPadding(true))

	img, err := bmp.Open(path, bmp.WithLegacyPadding(true))
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, 3, img.Padding)
	assert.Equal(t, 6, img.Stride)
	assert.Equal(t, int64(54+6), img.RowOffset(1))
	assert.Equal(t, rows, bmptest.Rows(t, path, bmp.WithLegacyPadding(true)))

	b := bmptest.Bytes(t, path)
	assert.Len(t, b, 54+3*6)
	assert.Equal(t, rows[1][0].BytesBGR(), b[60:63])
}

func TestReadRowWriteRow(t *testing.T) {
	rows := bmptest.Gradient(3, 2)
	path := bmptest.Write(t, rows)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	fh, ih, err := bmp.ParseHeader(f)
	require.NoError(t, err)
	padding := bmp.RowPadding(int(ih.Width), false)

	require.NoError(t, bmp.SeekToPixelData(f, fh))
	first, err := bmp.ReadRow(f, 3, padding)
	require.NoError(t, err)
	second, err := bmp.ReadRow(f, 3, padding)
	require.NoError(t, err)
	assert.Equal(t, rows[0], first)
	assert.Equal(t, rows[1], second)

	_, err = bmp.ReadRow(f, 3, padding)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// Seek back over the row just read and rewrite it
	require.NoError(t, bmp.SeekToPixelData(f, fh))
	_, err = bmp.ReadRow(f, 3, padding)
	require.NoError(t, err)
	_, err = f.Seek(-int64(bmp.RowByteLength(3)+padding), io.SeekCurrent)
	require.NoError(t, err)
	require.NoError(t, bmp.WriteRow(f, rows[1]))

	got := bmptest.Rows(t, path)
	assert.Equal(t, rows[1], got[0])
	assert.Equal(t, rows[1], got[1])
}

func TestTransform(t *testing.T) {
	rows := bmptest.Gradient(3, 3)
	path := bmptest.Write(t, rows)

	img, err := bmp.Open(path)
	require.NoError(t, err)

	var visited []int
	require.NoError(t, img.Transform(func(row int, pixels []bmp.Pixel) {
		visited = append(visited, row)
		for i := range pixels {
			pixels[i].G = byte(row)
		}
	}))
	require.NoError(t, img.Close())

	assert.Equal(t, []int{0, 1, 2}, visited)
	for row, pixels := range bmptest.Rows(t, path) {
		for col, p := range pixels {
			assert.Equal(t, byte(row), p.G)
			assert.Equal(t, rows[row][col].R, p.R)
			assert.Equal(t, rows[row][col].B, p.B)
		}
	}
}

func TestTransformUnsupportedDepth(t *testing.T) {
	path := bmptest.Write(t, bmptest.Gradient(2, 2))
	bmptest.SetBitCount(t, path, 32)
	before := bmptest.Bytes(t, path)

	var logs bytes.Buffer
	img, err := bmp.Open(path, bmp.WithLogger(log.New(&logs, "", 0)))
	require.NoError(t, err)
	defer img.Close()

	called := false
	err = img.Transform(func(int, []bmp.Pixel) { called = true })
	assert.ErrorIs(t, err, bmp.ErrUnsupportedDepth)
	assert.False(t, called)
	assert.Contains(t, logs.String(), "32 bpp")
	assert.Equal(t, before, bmptest.Bytes(t, path))
}

func TestTransformFailSoft(t *testing.T) {
	rows := bmptest.Gradient(4, 3)
	path := bmptest.Write(t, rows)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	var logs bytes.Buffer
	img, err := bmp.New(&faultyStream{File: f, failAt: 54 + 12}, bmp.WithLogger(log.New(&logs, "", 0)))
	require.NoError(t, err)

	err = img.Transform(func(_ int, pixels []bmp.Pixel) {
		for i := range pixels {
			pixels[i] = bmp.Pixel{}
		}
	})
	require.NoError(t, img.Close())

	assert.ErrorIs(t, err, bmp.ErrIOFault)
	var fault *bmp.IOFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 1, fault.Row)
	assert.Equal(t, "write", fault.Op)
	assert.Contains(t, logs.String(), "row 1")

	// Rows either side of the fault were still processed
	got := bmptest.Rows(t, path)
	assert.Equal(t, make([]bmp.Pixel, 4), got[0])
	assert.Equal(t, rows[1], got[1])
	assert.Equal(t, make([]bmp.Pixel, 4), got[2])
}

func TestTransformShortFile(t *testing.T) {
	rows := bmptest.Gradient(2, 3)
	path := bmptest.Write(t, rows)
	require.NoError(t, os.Truncate(path, 54+8*2+3))

	img, err := bmp.Open(path)
	require.NoError(t, err)
	defer img.Close()

	err = img.Transform(func(_ int, pixels []bmp.Pixel) {
		for i := range pixels {
			pixels[i] = pixels[i].Map(func(c byte) byte { return ^c })
		}
	})
	var fault *bmp.IOFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 2, fault.Row)
	assert.Equal(t, "read", fault.Op)
}

func TestTransformReadOnly(t *testing.T) {
	path := bmptest.Write(t, bmptest.Gradient(2, 2))
	before := bmptest.Bytes(t, path)

	img, err := bmp.Open(path, bmp.ReadOnly())
	require.NoError(t, err)
	defer img.Close()

	assert.Error(t, img.Transform(func(int, []bmp.Pixel) {}))
	assert.Equal(t, before, bmptest.Bytes(t, path))
}

func TestClose(t *testing.T) {
	path := bmptest.Write(t, bmptest.Gradient(2, 2))

	img, err := bmp.Open(path)
	require.NoError(t, err)
	require.NoError(t, img.Close())

	assert.ErrorIs(t, img.Close(), bmp.ErrClosed)
	assert.ErrorIs(t, img.Transform(func(int, []bmp.Pixel) {}), bmp.ErrClosed)
	assert.ErrorIs(t, img.ReadRowAt(0, make([]bmp.Pixel, 2)), bmp.ErrClosed)
	_, err = img.Render(nil)
	assert.ErrorIs(t, err, bmp.ErrClosed)
}

func TestRender(t *testing.T) {
	rows := bmptest.Gradient(3, 2)
	path := bmptest.Write(t, rows)
	before := bmptest.Bytes(t, path)

	img, err := bmp.Open(path, bmp.ReadOnly())
	require.NoError(t, err)
	defer img.Close()

	m, err := img.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Bounds().Dx())
	assert.Equal(t, 2, m.Bounds().Dy())

	// Bottom-up storage: the first stored row is the bottom of the picture
	assert.Equal(t, rows[0][0].RGBA(), m.RGBAAt(0, 1))
	assert.Equal(t, rows[1][2].RGBA(), m.RGBAAt(2, 0))

	inverted, err := img.Render(func(p bmp.Pixel) bmp.Pixel {
		return p.Map(func(c byte) byte { return ^c })
	})
	require.NoError(t, err)
	assert.Equal(t, ^rows[0][1].R, inverted.RGBAAt(1, 1).R)

	assert.Equal(t, before, bmptest.Bytes(t, path))
}

func writeHeaderOnly(t *testing.T, fh bmp.BitmapFileHeader, ih bmp.BitmapInfoHeader, pixelBytes int) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, bmp.WriteHeader(&buf, fh, ih))
	buf.Write(make([]byte, pixelBytes))

	path := filepath.Join(t.TempDir(), "header.bmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestDimensionsLargerThanFile(t *testing.T) {
	fh := bmp.BitmapFileHeader{Type: [2]byte{'B', 'M'}, Size: 54, OffBits: 54}

	tables := map[string]struct {
		ih         bmp.BitmapInfoHeader
		pixelBytes int
	}{
		"huge": {
			ih:         bmp.BitmapInfoHeader{Size: 40, Width: 0x7fffffff, Height: 0x7fffffff, Planes: 1, BitCount: 24},
			pixelBytes: 0,
		},
		"wide": {
			ih:         bmp.BitmapInfoHeader{Size: 40, Width: 3, Height: 1, Planes: 1, BitCount: 24},
			pixelBytes: 8,
		},
		"tall": {
			ih:         bmp.BitmapInfoHeader{Size: 40, Width: 2, Height: 0x7fffffff, Planes: 1, BitCount: 24},
			pixelBytes: 16,
		},
		"top-down tall": {
			ih:         bmp.BitmapInfoHeader{Size: 40, Width: 2, Height: -0x7fffffff, Planes: 1, BitCount: 24},
			pixelBytes: 16,
		},
		"empty": {
			ih:         bmp.BitmapInfoHeader{Size: 40, Width: 0, Height: 4, Planes: 1, BitCount: 24},
			pixelBytes: 16,
		},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			path := writeHeaderOnly(t, fh, table.ih, table.pixelBytes)
			before := bmptest.Bytes(t, path)

			var logs bytes.Buffer
			img, err := bmp.Open(path, bmp.WithLogger(log.New(&logs, "", 0)))
			require.NoError(t, err)
			defer img.Close()

			// The headers are still readable
			assert.Contains(t, img.Header(), "# bits per pixel: 24\n")

			m, err := img.Render(nil)
			assert.ErrorIs(t, err, bmp.ErrInvalidDimensions)
			assert.Nil(t, m)

			err = img.Transform(func(int, []bmp.Pixel) {})
			assert.ErrorIs(t, err, bmp.ErrInvalidDimensions)
			assert.NotErrorIs(t, err, bmp.ErrIOFault)
			assert.Contains(t, logs.String(), "does not fit")

			assert.Equal(t, before, bmptest.Bytes(t, path))
		})
	}
}

func TestTransformWithDimensionsLargerThanFile(t *testing.T) {
	host := bmptest.Write(t, bmptest.Gradient(2, 2))
	before := bmptest.Bytes(t, host)
	src := writeHeaderOnly(t,
		bmp.BitmapFileHeader{Type: [2]byte{'B', 'M'}, Size: 54, OffBits: 54},
		bmp.BitmapInfoHeader{Size: 40, Width: 2, Height: 0x7fffffff, Planes: 1, BitCount: 24},
		16,
	)

	dst, err := bmp.Open(host)
	require.NoError(t, err)
	defer dst.Close()
	in, err := bmp.Open(src, bmp.ReadOnly())
	require.NoError(t, err)
	defer in.Close()

	err = dst.TransformWith(in, func(int, []bmp.Pixel, []bmp.Pixel) {})
	assert.ErrorIs(t, err, bmp.ErrInvalidDimensions)
	assert.Equal(t, before, bmptest.Bytes(t, host))
}

func TestOpenOffsetInsideHeader(t *testing.T) {
	for _, offset := range []int32{0, 14, 53} {
		path := writeHeaderOnly(t,
			bmp.BitmapFileHeader{Type: [2]byte{'B', 'M'}, Size: 66, OffBits: offset},
			bmp.BitmapInfoHeader{Size: 40, Width: 2, Height: 2, Planes: 1, BitCount: 24},
			16,
		)

		_, err := bmp.Open(path)
		assert.ErrorIs(t, err, bmp.ErrInvalidOffset, "offset %d", offset)
	}
}
