package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Append concatenates a sequence into a single image, top-to-bottom when
// vertical is true, left-to-right otherwise. The canvas behind images of
// differing sizes is filled with the first image's background color.
func Append(seq []*Image, vertical bool) (*Image, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("append: no images")
	}
	for _, im := range seq {
		if !im.HasPixels() {
			return nil, fmt.Errorf("append: image %q has no pixel data", im.Source)
		}
	}

	var w, h int
	for _, im := range seq {
		b := im.Pix.Bounds()
		if vertical {
			h += b.Dy()
			if b.Dx() > w {
				w = b.Dx()
			}
		} else {
			w += b.Dx()
			if b.Dy() > h {
				h = b.Dy()
			}
		}
	}

	canvas := imaging.New(w, h, seq[0].Background)
	offset := 0
	for _, im := range seq {
		b := im.Pix.Bounds()
		var at image.Point
		if vertical {
			at = image.Pt(0, offset)
			offset += b.Dy()
		} else {
			at = image.Pt(offset, 0)
			offset += b.Dx()
		}
		canvas = imaging.Paste(canvas, im.Pix, at)
	}

	out := derive(seq[0], canvas)
	out.Page = image.Point{}
	return out, nil
}

// Flatten composites a sequence onto a single canvas. The canvas takes
// the union of every image's page-offset bounds and is filled with the
// first image's background color; images are drawn in list order, so
// later images paint over earlier ones.
func Flatten(seq []*Image) (*Image, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("flatten: no images")
	}
	var bounds image.Rectangle
	for _, im := range seq {
		if !im.HasPixels() {
			return nil, fmt.Errorf("flatten: image %q has no pixel data", im.Source)
		}
		b := im.Pix.Bounds().Sub(im.Pix.Bounds().Min).Add(im.Page)
		bounds = bounds.Union(b)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, bounds.Max.X, bounds.Max.Y))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(seq[0].Background), image.Point{}, draw.Src)
	for _, im := range seq {
		b := im.Pix.Bounds()
		dst := image.Rectangle{Min: im.Page, Max: im.Page.Add(b.Size())}
		draw.Draw(canvas, dst, im.Pix, b.Min, draw.Over)
	}

	out := derive(seq[0], canvas)
	out.Page = image.Point{}
	return out, nil
}
