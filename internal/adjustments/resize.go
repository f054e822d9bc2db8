package adjustments

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail shrinks m to fit within maxWidth x maxHeight, keeping its
// aspect ratio. Images that already fit are returned as they are.
func Thumbnail(m image.Image, maxWidth, maxHeight int) image.Image {
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= maxWidth && height <= maxHeight {
		return m
	}

	// Scale by whichever side overflows the most
	if width*maxHeight > height*maxWidth {
		height = max(1, height*maxWidth/width)
		width = maxWidth
	} else {
		width = max(1, width*maxHeight/height)
		height = maxHeight
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// Cover scales m, up or down, to the smallest size that covers width x
// height while keeping its aspect ratio.
func Cover(m image.Image, width, height int) image.Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()

	if w*height < h*width {
		w, h = width, (h*width+w-1)/w
	} else {
		w, h = (w*height+h-1)/h, height
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// Crops a width x height region from the center of m (0,0 is at the
// top-left of the result)
func CropCenter(m image.Image, width, height int) (image.Image, error) {
	b := m.Bounds()

	// Validate bounds
	if width <= 0 || width > b.Dx() {
		return nil, errors.New("invalid bounds: width out of bounds")
	} else if height <= 0 || height > b.Dy() {
		return nil, errors.New("invalid bounds: height out of bounds")
	}

	x := b.Min.X + (b.Dx()-width)/2
	y := b.Min.Y + (b.Dy()-height)/2

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), m, image.Pt(x, y), draw.Src)
	return dst, nil
}
