// Package convert turns PNG, JPEG, GIF and BMP images of any depth into
// 24 bit bitmaps, optionally resized so a host and the image to hide in it
// come out the same size.
package convert

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/jwSharp/image-processing/internal/adjustments"
	"github.com/jwSharp/image-processing/internal/bmp"
	"github.com/jwSharp/image-processing/internal/filters"
	_ "golang.org/x/image/bmp"
)

// Options controls Convert. Zero values leave the image as decoded.
type Options struct {
	// Width and Height, when both set, give the exact output size. The
	// image is shrunk to fit (Width + Width/3) x (Height + Width/3), scaled
	// up again if that left a side short, and cropped around its center.
	Width, Height int

	// Colors, when set, reduces the image to that many colors first.
	Colors int
}

// Convert decodes an image from r and writes it to w as a 24 bit bitmap.
func Convert(r io.Reader, w io.Writer, opts Options) error {
	m, format, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("unable to decode image: %w", err)
	}

	switch {
	case opts.Width > 0 && opts.Height > 0:
		margin := opts.Width / 3
		m = adjustments.Thumbnail(m, opts.Width+margin, opts.Height+margin)
		if b := m.Bounds(); b.Dx() < opts.Width || b.Dy() < opts.Height {
			m = adjustments.Cover(m, opts.Width, opts.Height)
		}
		if m, err = adjustments.CropCenter(m, opts.Width, opts.Height); err != nil {
			return fmt.Errorf("unable to crop %s image: %w", format, err)
		}
	case opts.Width > 0 || opts.Height > 0:
		return errors.New("width and height must be given together")
	}

	if opts.Colors > 0 {
		if m, err = filters.Quantize(m, opts.Colors); err != nil {
			return err
		}
	}

	return bmp.Encode(w, m)
}
