package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// annotateTransform draws Params.Text onto a copy of the image at the
// (xi, psi) offset from the top-left corner, using the fixed 7x13 face.
// Fill defaults to opaque black when the option layer supplied none.
func annotateTransform(im *Image, p Params) ([]*Image, error) {
	if p.Text == "" {
		return nil, fmt.Errorf("annotate: no text given")
	}

	bounds := im.Pix.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, im.Pix, bounds.Min, draw.Src)

	fill := p.Fill
	if !p.HasFill {
		fill = color.NRGBA{0, 0, 0, 255}
	}

	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fill),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(bounds.Min.X + int(p.Xi)),
			Y: fixed.I(bounds.Min.Y + int(p.Psi) + face.Ascent),
		},
	}
	d.DrawString(p.Text)

	out := derive(im, dst)
	out.Label = p.Text
	return one(out), nil
}
