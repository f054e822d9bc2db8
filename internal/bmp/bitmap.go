// Package bmp reads and rewrites 24-bit uncompressed bitmaps in place.
//
// An Image keeps only the headers in memory. Pixels are read a row at a
// time from the backing stream, changed, and written back to the same
// place, so the open file is always the saved state.
package bmp

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"
)

type Image struct {
	Filename string
	BFHeader *BitmapFileHeader
	BIHeader *BitmapInfoHeader
	Stride   int
	Padding  int

	rws      io.ReadWriteSeeker
	dataLen  int64 // bytes from the pixel offset to the end of the file
	logger   *log.Logger
	readOnly bool
}

type options struct {
	logger        *log.Logger
	legacyPadding bool
	readOnly      bool
}

// Option changes how an Image is opened.
type Option func(*options)

// WithLogger sends diagnostics to l instead of discarding them.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLegacyPadding selects the RowByteLength%4 padding formula.
func WithLegacyPadding(legacy bool) Option {
	return func(o *options) {
		o.legacyPadding = legacy
	}
}

// ReadOnly opens the file without write access. Operations that modify
// pixels fail before touching the stream.
func ReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens a bitmap file and parses its headers.
func Open(filename string, opts ...Option) (*Image, error) {
	o := newOptions(opts)

	flag := os.O_RDWR
	if o.readOnly {
		flag = os.O_RDONLY
	}
	file, err := os.OpenFile(filename, flag, 0)
	if err != nil {
		o.logger.Printf("%s: %v", filename, err)
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}

	b, err := newImage(filename, file, o)
	if err != nil {
		file.Close()
		return nil, err
	}
	return b, nil
}

// New wraps an already open stream. If rws implements io.Closer it is
// closed by Close.
func New(rws io.ReadWriteSeeker, opts ...Option) (*Image, error) {
	return newImage("", rws, newOptions(opts))
}

func newImage(filename string, rws io.ReadWriteSeeker, o options) (*Image, error) {
	if _, err := rws.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}

	fh, ih, err := ParseHeader(rws)
	if err != nil {
		o.logger.Printf("%s: %v", filename, err)
		return nil, err
	}

	size, err := rws.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	if fh.OffBits < headerLen || int64(fh.OffBits) > size {
		o.logger.Printf("%s: pixel offset %d, file is %d bytes", filename, fh.OffBits, size)
		return nil, fmt.Errorf("%w: offset %d, file is %d bytes", ErrInvalidOffset, fh.OffBits, size)
	}

	width := abs(int(ih.Width))
	padding := RowPadding(width, o.legacyPadding)

	return &Image{
		Filename: filename,
		BFHeader: &fh,
		BIHeader: &ih,
		Stride:   RowByteLength(width) + padding,
		Padding:  padding,
		rws:      rws,
		dataLen:  size - int64(fh.OffBits),
		logger:   o.logger,
		readOnly: o.readOnly,
	}, nil
}

// Creates a zero-filled 24 bit bitmap file and opens it.
func Create(filename string, width, height int, opts ...Option) (*Image, error) {
	if width <= 0 {
		return nil, errors.New("bmp: width must be greater than 0")
	} else if height <= 0 {
		return nil, errors.New("bmp: height must be greater than 0")
	}

	o := newOptions(opts)
	padding := RowPadding(width, o.legacyPadding)
	fh, ih := newHeaders(width, height, padding)

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}

	if err := WriteHeader(file, fh, ih); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Truncate(int64(fh.Size)); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	return Open(filename, opts...)
}

func newHeaders(width, height, padding int) (BitmapFileHeader, BitmapInfoHeader) {
	stride := RowByteLength(width) + padding
	sizeImage := int32(stride * height)

	fh := BitmapFileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    headerLen + sizeImage,
		OffBits: headerLen,
	}
	ih := BitmapInfoHeader{
		Size:      infoHeaderLen,
		Width:     int32(width),
		Height:    int32(height),
		Planes:    1,
		BitCount:  bitsPerPixel,
		SizeImage: sizeImage,
	}
	return fh, ih
}

// Close releases the backing stream. The Image is unusable afterwards.
func (b *Image) Close() error {
	if b.rws == nil {
		return ErrClosed
	}
	rws := b.rws
	b.rws = nil
	if c, ok := rws.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Width returns the width in pixels, ignoring any sign.
func (b *Image) Width() int {
	return abs(int(b.BIHeader.Width))
}

// Height returns the number of rows, ignoring any sign.
func (b *Image) Height() int {
	return abs(int(b.BIHeader.Height))
}

// Header renders the file and DIB headers, see FormatHeader.
func (b *Image) Header() string {
	return FormatHeader(*b.BFHeader, *b.BIHeader)
}

// Layout describes how the pixel array is laid out (in human-readable format)
func (b *Image) Layout() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Filename: \t%v\n", b.Filename)
	fmt.Fprintf(&sb, "Filesize: \t%v bytes\n", b.BFHeader.Size)
	fmt.Fprintf(&sb, "Width: \t\t%v px\n", b.Width())
	fmt.Fprintf(&sb, "Height: \t%v px\n", b.Height())
	fmt.Fprintf(&sb, "BitCount: \t%vbits\n", b.BIHeader.BitCount)
	fmt.Fprintf(&sb, "PixelOffset: \t%v bytes\n", b.BFHeader.OffBits)
	fmt.Fprintf(&sb, "PixelCount: \t%v pixels\n", b.Width()*b.Height())
	fmt.Fprintf(&sb, "Stride: \t%v bytes\n", b.Stride)
	fmt.Fprintf(&sb, "Padding: \t%v bytes\n", b.Padding)
	return sb.String()
}

// Validate checks that the image is open, 24 bits per pixel, and that its
// dimensions fit the file.
func (b *Image) Validate() error {
	if b.rws == nil {
		return ErrClosed
	}
	if !ValidateBpp(*b.BIHeader) {
		b.logger.Printf("%s: %d bpp, not modified", b.Filename, b.BIHeader.BitCount)
		return fmt.Errorf("%w: %s has %d bpp", ErrUnsupportedDepth, b.name(), b.BIHeader.BitCount)
	}
	return b.checkDimensions()
}

// checkDimensions requires every row to start inside the file. Rows cut
// short by the end of the file are left to the traversal.
func (b *Image) checkDimensions() error {
	width, height := b.Width(), b.Height()

	switch {
	case width == 0 || height == 0:
	case int64(RowByteLength(width)) > b.dataLen:
	case int64(height-1)*int64(b.Stride) >= b.dataLen:
	default:
		return nil
	}

	b.logger.Printf("%s: %dx%d does not fit %d bytes of pixel data, not modified", b.Filename, width, height, b.dataLen)
	return fmt.Errorf("%w: %s is %dx%d with %d bytes of pixel data", ErrInvalidDimensions, b.name(), width, height, b.dataLen)
}

func (b *Image) validateWritable() error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.readOnly {
		return fmt.Errorf("bmp: %s is opened read-only", b.name())
	}
	return nil
}

// RowOffset returns the absolute file offset of a row in storage order.
func (b *Image) RowOffset(row int) int64 {
	return int64(b.BFHeader.OffBits) + int64(row)*int64(b.Stride)
}

// ReadRowAt fills pixels with the given row. Failures are *IOFault.
func (b *Image) ReadRowAt(row int, pixels []Pixel) error {
	if b.rws == nil {
		return ErrClosed
	}
	if _, err := b.rws.Seek(b.RowOffset(row), io.SeekStart); err != nil {
		return &IOFault{Op: "seek", Row: row, Err: err}
	}
	if err := readRow(b.rws, pixels, 0); err != nil {
		return &IOFault{Op: "read", Row: row, Err: err}
	}
	return nil
}

// WriteRowAt overwrites the given row with pixels. Failures are *IOFault.
func (b *Image) WriteRowAt(row int, pixels []Pixel) error {
	if b.rws == nil {
		return ErrClosed
	}
	if _, err := b.rws.Seek(b.RowOffset(row), io.SeekStart); err != nil {
		return &IOFault{Op: "seek", Row: row, Err: err}
	}
	if err := WriteRow(b.rws, pixels); err != nil {
		return &IOFault{Op: "write", Row: row, Err: err}
	}
	return nil
}

// Transform passes every row, in storage order, through fn and writes the
// result back in place.
//
// Each row is read once into a buffer and written once. A row that cannot
// be read is left alone; I/O failures do not stop the traversal and are
// returned together once every row has been visited.
func (b *Image) Transform(fn func(row int, pixels []Pixel)) error {
	if err := b.validateWritable(); err != nil {
		return err
	}

	var faults []error
	pixels := make([]Pixel, b.Width())
	for row, h := 0, b.Height(); row < h; row++ {
		if err := b.ReadRowAt(row, pixels); err != nil {
			faults = append(faults, b.fault(err))
			continue
		}

		fn(row, pixels)

		if err := b.WriteRowAt(row, pixels); err != nil {
			faults = append(faults, b.fault(err))
		}
	}

	return errors.Join(faults...)
}

// TransformWith is Transform over two images of identical size. src is
// only ever read. Both images are validated, and their sizes compared,
// before anything is written.
func (b *Image) TransformWith(src *Image, fn func(row int, dst, src []Pixel)) error {
	if err := b.validateWritable(); err != nil {
		return err
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if b.Width() != src.Width() || b.Height() != src.Height() {
		b.logger.Printf("%s: %dx%d does not match %s: %dx%d, not modified", b.Filename, b.Width(), b.Height(), src.Filename, src.Width(), src.Height())
		return fmt.Errorf("%w: %s is %dx%d, %s is %dx%d", ErrSizeMismatch, b.name(), b.Width(), b.Height(), src.name(), src.Width(), src.Height())
	}

	var faults []error
	dst := make([]Pixel, b.Width())
	in := make([]Pixel, src.Width())
	for row, h := 0, b.Height(); row < h; row++ {
		if err := src.ReadRowAt(row, in); err != nil {
			faults = append(faults, src.fault(err))
			continue
		}
		if err := b.ReadRowAt(row, dst); err != nil {
			faults = append(faults, b.fault(err))
			continue
		}

		fn(row, dst, in)

		if err := b.WriteRowAt(row, dst); err != nil {
			faults = append(faults, b.fault(err))
		}
	}

	return errors.Join(faults...)
}

// Render copies the raster into memory, top row first, passing every pixel
// through fn when it is not nil. The file is not modified. Rows that cannot
// be read stay black and are reported like Transform does.
func (b *Image) Render(fn func(Pixel) Pixel) (*image.RGBA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	width, height := b.Width(), b.Height()
	m := image.NewRGBA(image.Rect(0, 0, width, height))

	var faults []error
	pixels := make([]Pixel, width)
	for row := 0; row < height; row++ {
		if err := b.ReadRowAt(row, pixels); err != nil {
			faults = append(faults, b.fault(err))
			continue
		}

		// Positive heights are stored bottom-up
		y := row
		if b.BIHeader.Height > 0 {
			y = height - row - 1
		}
		for x, p := range pixels {
			if fn != nil {
				p = fn(p)
			}
			m.SetRGBA(x, y, p.RGBA())
		}
	}

	return m, errors.Join(faults...)
}

func (b *Image) fault(err error) error {
	b.logger.Printf("%s: %v", b.Filename, err)
	return err
}

func (b *Image) name() string {
	if b.Filename == "" {
		return "image"
	}
	return b.Filename
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
