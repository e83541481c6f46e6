package imaging

import (
	"image"
	"image/color"
)

// Image is one unit of the working image list. It pairs decoded pixel
// data with the per-image attributes operators read and mutate (page
// offset, orientation, label, colorspace). An Image has exactly one
// owner at any time: either the live image list or a saved stack entry.
//
// Pix is nil when the image was probed (header-only load); operators
// that need pixel data must check HasPixels first.
type Image struct {
	// Pix holds decoded pixel data, or nil for a probe-only load.
	Pix image.Image

	// Width and Height are valid even when Pix is nil.
	Width  int
	Height int

	// Format is the codec the image was decoded from ("png", "jpeg", "gif")
	// or will be encoded to on write.
	Format string

	// Source is the identifier the image was loaded from.
	Source string

	// Page is the virtual-canvas offset applied by repage and honored by
	// flatten-style list operators.
	Page image.Point

	// Orientation is the EXIF-style orientation hint ("", "top-left", ...).
	Orientation string

	// Label is free-form text attached by the label setting.
	Label string

	// Colorspace is "rgb", "gray" or "cmyk". Together with Matte it
	// determines the active channel count for sparse-color arguments.
	Colorspace string

	// Matte reports whether the alpha channel is enabled.
	Matte bool

	// Background is the canvas color behind transparent regions, rotation
	// fill, and flatten.
	Background color.NRGBA

	// Attrs holds remaining free-form per-image attributes.
	Attrs map[string]string
}

// NewImage wraps decoded pixel data in an Image with default attributes.
func NewImage(pix image.Image) *Image {
	im := &Image{
		Pix:        pix,
		Colorspace: "rgb",
		Background: color.NRGBA{255, 255, 255, 255},
		Attrs:      map[string]string{},
	}
	if pix != nil {
		b := pix.Bounds()
		im.Width = b.Dx()
		im.Height = b.Dy()
	}
	return im
}

// HasPixels reports whether the image carries decoded pixel data.
func (im *Image) HasPixels() bool {
	return im.Pix != nil
}

// Bounds returns the pixel bounds, valid even for probe-only images.
func (im *Image) Bounds() image.Rectangle {
	if im.Pix != nil {
		return im.Pix.Bounds()
	}
	return image.Rect(0, 0, im.Width, im.Height)
}

// Clone returns an independent copy. Pixel data is duplicated so the
// clone can be mutated without affecting the original.
func (im *Image) Clone() *Image {
	dup := *im
	if im.Pix != nil {
		b := im.Pix.Bounds()
		pix := image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix.Set(x, y, im.Pix.At(x, y))
			}
		}
		dup.Pix = pix
	}
	dup.Attrs = make(map[string]string, len(im.Attrs))
	for k, v := range im.Attrs {
		dup.Attrs[k] = v
	}
	return &dup
}

// ChannelCount returns the number of writable color channels for the
// image's color model: 1 for gray, 3 for RGB, plus black for CMYK and
// alpha when the matte channel is active. The result is always 1-5.
func (im *Image) ChannelCount() int {
	n := 3
	switch im.Colorspace {
	case "gray":
		n = 1
	case "cmyk":
		n = 4
	}
	if im.Matte {
		n++
	}
	return n
}

// ProgressFunc is invoked during long operations. Returning false is an
// advisory cancellation request; operations honor it on a best-effort
// basis only.
type ProgressFunc func(label string, current, total int64) bool
