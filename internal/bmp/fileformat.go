// BMP-specific structs and types
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen
	signatureLen  = 2

	bitsPerPixel  = 24
	bytesPerPixel = bitsPerPixel / 8
)

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader

type BitmapFileHeader struct {
	Type      [2]byte // The file type: must be 0x4d42 (ASCII string "BM").
	Size      int32   // The size, in bytes, of the bitmap file.
	Reserved1 int16   // Reserved; passed through untouched.
	Reserved2 int16   // Reserved; passed through untouched.
	OffBits   int32   // Bitmap File Offset (In bytes) to Pixel Arrays
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].

type BitmapInfoHeader struct {
	Size            int32 // The number of bytes required by the structure.
	Width           int32 // The width of the bitmap, in pixels.
	Height          int32 // The height of the bitmap, in pixels
	Planes          int16 // The number of planes for the target device.
	BitCount        int16 // The number of bits-per-pixel.
	Compression     int32 // The type of compression (stored, never interpreted)
	SizeImage       int32 // The size of the image (in bytes).
	XPixelsPerM     int32 // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32 // The vertical resolution, in pixels-per-meter.
	ColorsUsed      int32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant int32 // Number of color indexes required for displaying the bitmap.
}

// MarshalBinary encodes the file header into its 14 byte on-disk form.
func (h BitmapFileHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, fileHeaderLen)
	copy(b[0:2], h.Type[:])
	binary.LittleEndian.PutUint32(b[2:], uint32(h.Size))
	binary.LittleEndian.PutUint16(b[6:], uint16(h.Reserved1))
	binary.LittleEndian.PutUint16(b[8:], uint16(h.Reserved2))
	binary.LittleEndian.PutUint32(b[10:], uint32(h.OffBits))
	return b, nil
}

// UnmarshalBinary decodes the file header from its 14 byte on-disk form.
func (h *BitmapFileHeader) UnmarshalBinary(b []byte) error {
	if len(b) < fileHeaderLen {
		return fmt.Errorf("%w: file header needs %d bytes, got %d", ErrTruncatedHeader, fileHeaderLen, len(b))
	}
	copy(h.Type[:], b[0:2])
	h.Size = int32(binary.LittleEndian.Uint32(b[2:]))
	h.Reserved1 = int16(binary.LittleEndian.Uint16(b[6:]))
	h.Reserved2 = int16(binary.LittleEndian.Uint16(b[8:]))
	h.OffBits = int32(binary.LittleEndian.Uint32(b[10:]))
	return nil
}

// MarshalBinary encodes the DIB header into its 40 byte on-disk form.
func (h BitmapInfoHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, infoHeaderLen)
	binary.LittleEndian.PutUint32(b[0:], uint32(h.Size))
	binary.LittleEndian.PutUint32(b[4:], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:], uint16(h.Planes))
	binary.LittleEndian.PutUint16(b[14:], uint16(h.BitCount))
	binary.LittleEndian.PutUint32(b[16:], uint32(h.Compression))
	binary.LittleEndian.PutUint32(b[20:], uint32(h.SizeImage))
	binary.LittleEndian.PutUint32(b[24:], uint32(h.XPixelsPerM))
	binary.LittleEndian.PutUint32(b[28:], uint32(h.YPixelsPerM))
	binary.LittleEndian.PutUint32(b[32:], uint32(h.ColorsUsed))
	binary.LittleEndian.PutUint32(b[36:], uint32(h.ColorsImportant))
	return b, nil
}

// UnmarshalBinary decodes the DIB header from its 40 byte on-disk form.
func (h *BitmapInfoHeader) UnmarshalBinary(b []byte) error {
	if len(b) < infoHeaderLen {
		return fmt.Errorf("%w: DIB header needs %d bytes, got %d", ErrTruncatedHeader, infoHeaderLen, len(b))
	}
	h.Size = int32(binary.LittleEndian.Uint32(b[0:]))
	h.Width = int32(binary.LittleEndian.Uint32(b[4:]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:]))
	h.Planes = int16(binary.LittleEndian.Uint16(b[12:]))
	h.BitCount = int16(binary.LittleEndian.Uint16(b[14:]))
	h.Compression = int32(binary.LittleEndian.Uint32(b[16:]))
	h.SizeImage = int32(binary.LittleEndian.Uint32(b[20:]))
	h.XPixelsPerM = int32(binary.LittleEndian.Uint32(b[24:]))
	h.YPixelsPerM = int32(binary.LittleEndian.Uint32(b[28:]))
	h.ColorsUsed = int32(binary.LittleEndian.Uint32(b[32:]))
	h.ColorsImportant = int32(binary.LittleEndian.Uint32(b[36:]))
	return nil
}

// ParseHeader reads the file header and the DIB header from r.
//
// The signature is checked before anything else is read, so a stream that
// is not a bitmap has had exactly two bytes consumed. The bit depth is not
// checked here; see ValidateBpp.
func ParseHeader(r io.Reader) (BitmapFileHeader, BitmapInfoHeader, error) {
	var (
		fh BitmapFileHeader
		ih BitmapInfoHeader
		b  [headerLen]byte
	)

	if err := readFull(r, b[:signatureLen]); err != nil {
		return fh, ih, err
	}
	if b[0] != 'B' || b[1] != 'M' {
		return fh, ih, fmt.Errorf("%w: got %q", ErrInvalidSignature, b[:signatureLen])
	}

	if err := readFull(r, b[signatureLen:]); err != nil {
		return fh, ih, err
	}

	if err := fh.UnmarshalBinary(b[:fileHeaderLen]); err != nil {
		return fh, ih, err
	}
	if err := ih.UnmarshalBinary(b[fileHeaderLen:]); err != nil {
		return fh, ih, err
	}

	return fh, ih, nil
}

// WriteHeader writes both headers to w in on-disk order.
func WriteHeader(w io.Writer, fh BitmapFileHeader, ih BitmapInfoHeader) error {
	fb, err := fh.MarshalBinary()
	if err != nil {
		return err
	}
	ib, err := ih.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(append(fb, ib...)); err != nil {
		return err
	}
	return nil
}

// ValidateBpp reports whether the bitmap stores 24 bits per pixel, the only
// depth the pixel operations understand.
func ValidateBpp(ih BitmapInfoHeader) bool {
	return ih.BitCount == bitsPerPixel
}

// FormatHeader renders both headers as labelled text, BMP header first.
func FormatHeader(fh BitmapFileHeader, ih BitmapInfoHeader) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== BMP Header ===\n")
	fmt.Fprintf(&sb, "Type: %s\n", fh.Type[:])
	fmt.Fprintf(&sb, "Size: %d\n", fh.Size)
	fmt.Fprintf(&sb, "Reserved 1: %d\n", fh.Reserved1)
	fmt.Fprintf(&sb, "Reserved 2: %d\n", fh.Reserved2)
	fmt.Fprintf(&sb, "Image offset: %d\n", fh.OffBits)

	fmt.Fprintf(&sb, "\n=== DIB Header ===\n")
	fmt.Fprintf(&sb, "Size: %d\n", ih.Size)
	fmt.Fprintf(&sb, "Width: %d\n", ih.Width)
	fmt.Fprintf(&sb, "Height: %d\n", ih.Height)
	fmt.Fprintf(&sb, "# color planes: %d\n", ih.Planes)
	fmt.Fprintf(&sb, "# bits per pixel: %d\n", ih.BitCount)
	fmt.Fprintf(&sb, "Compression scheme: %d\n", ih.Compression)
	fmt.Fprintf(&sb, "Image size: %d\n", ih.SizeImage)
	fmt.Fprintf(&sb, "Horizontal resolution: %d\n", ih.XPixelsPerM)
	fmt.Fprintf(&sb, "Vertical resolution: %d\n", ih.YPixelsPerM)
	fmt.Fprintf(&sb, "# colors in palette: %d\n", ih.ColorsUsed)
	fmt.Fprintf(&sb, "# important colors: %d\n", ih.ColorsImportant)

	return sb.String()
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: %v", ErrTruncatedHeader, io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}
