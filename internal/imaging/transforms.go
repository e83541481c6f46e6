package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Params carries the decoded arguments for a named transform. Which
// fields are meaningful depends on the transform; the option layer is
// responsible for filling in per-operator defaults (e.g. sigma
// defaulting to 1.0 for the blur family) before calling Apply.
type Params struct {
	// Rho, Sigma, Xi, Psi follow the geometry micro-grammar slots.
	Rho   float64
	Sigma float64
	Xi    float64
	Psi   float64

	// Rect is a resolved region (resize target, crop region or tile size).
	Rect    image.Rectangle
	HasRect bool

	// HasOffset distinguishes "crop WxH+X+Y" (single region) from
	// "crop WxH" (tile split).
	HasOffset bool

	// Text is the annotation string.
	Text string

	// Fill is the pen color for annotate.
	Fill    color.NRGBA
	HasFill bool

	// Method and Values feed sparse-color interpolation.
	Method string
	Values []float64

	// Progress, when non-nil, is invoked during long transforms.
	Progress ProgressFunc
}

// Transform applies one named operation to a single image, yielding its
// replacement sequence: one image for ordinary transforms, several for
// splitting transforms like tile cropping.
type Transform func(im *Image, p Params) ([]*Image, error)

// transforms is the static name-to-handler table, built once.
var transforms = map[string]Transform{
	"adaptive-resize": adaptiveResizeTransform,
	"annotate":        annotateTransform,
	"blur":            blurTransform,
	"brightness":      brightnessTransform,
	"contrast":        contrastTransform,
	"crop":            cropTransform,
	"edge":            edgeTransform,
	"emboss":          embossTransform,
	"flip":            flipTransform,
	"flop":            flopTransform,
	"gamma":           gammaTransform,
	"gaussian-blur":   gaussianBlurTransform,
	"grayscale":       grayscaleTransform,
	"median":          medianTransform,
	"negate":          negateTransform,
	"resize":          resizeTransform,
	"rotate":          rotateTransform,
	"sharpen":         sharpenTransform,
	"sparse-color":    sparseColorTransform,
	"transpose":       transposeTransform,
}

// Apply runs the named transform against one image. The input image is
// never mutated; the result is a replacement sequence. An unknown name
// or an image without pixel data is an error and yields no result.
func Apply(im *Image, name string, p Params) ([]*Image, error) {
	t, ok := transforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	if !im.HasPixels() {
		return nil, fmt.Errorf("transform %q: image %q has no pixel data", name, im.Source)
	}
	if p.Progress != nil && !p.Progress(name, 0, 1) {
		return nil, fmt.Errorf("transform %q: canceled", name)
	}
	out, err := t(im, p)
	if p.Progress != nil {
		p.Progress(name, 1, 1)
	}
	return out, err
}

// TransformNames returns the registered transform names, sorted.
func TransformNames() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// derive wraps new pixel data in a copy of the source image's attributes.
func derive(src *Image, pix image.Image) *Image {
	out := *src
	out.Pix = pix
	b := pix.Bounds()
	out.Width = b.Dx()
	out.Height = b.Dy()
	out.Attrs = make(map[string]string, len(src.Attrs))
	for k, v := range src.Attrs {
		out.Attrs[k] = v
	}
	return &out
}

func one(im *Image) []*Image { return []*Image{im} }

func blurTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, imaging.Blur(im.Pix, p.Sigma))), nil
}

func gaussianBlurTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, blur.Gaussian(im.Pix, p.Rho))), nil
}

func sharpenTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, imaging.Sharpen(im.Pix, p.Sigma))), nil
}

func resizeTransform(im *Image, p Params) ([]*Image, error) {
	if !p.HasRect || p.Rect.Dx() <= 0 || p.Rect.Dy() <= 0 {
		return nil, fmt.Errorf("resize: empty target geometry")
	}
	return one(derive(im, imaging.Resize(im.Pix, p.Rect.Dx(), p.Rect.Dy(), imaging.Lanczos))), nil
}

func adaptiveResizeTransform(im *Image, p Params) ([]*Image, error) {
	if !p.HasRect || p.Rect.Dx() <= 0 || p.Rect.Dy() <= 0 {
		return nil, fmt.Errorf("adaptive-resize: empty target geometry")
	}
	return one(derive(im, imaging.Resize(im.Pix, p.Rect.Dx(), p.Rect.Dy(), imaging.MitchellNetravali))), nil
}

func rotateTransform(im *Image, p Params) ([]*Image, error) {
	// imaging rotates counter-clockwise; option semantics are clockwise.
	return one(derive(im, imaging.Rotate(im.Pix, -p.Rho, im.Background))), nil
}

func flipTransform(im *Image, _ Params) ([]*Image, error) {
	return one(derive(im, imaging.FlipV(im.Pix))), nil
}

func flopTransform(im *Image, _ Params) ([]*Image, error) {
	return one(derive(im, imaging.FlipH(im.Pix))), nil
}

func transposeTransform(im *Image, _ Params) ([]*Image, error) {
	return one(derive(im, imaging.Transpose(im.Pix))), nil
}

func negateTransform(im *Image, _ Params) ([]*Image, error) {
	return one(derive(im, imaging.Invert(im.Pix))), nil
}

func grayscaleTransform(im *Image, _ Params) ([]*Image, error) {
	out := derive(im, imaging.Grayscale(im.Pix))
	out.Colorspace = "gray"
	return one(out), nil
}

func gammaTransform(im *Image, p Params) ([]*Image, error) {
	if p.Rho <= 0 {
		return nil, fmt.Errorf("gamma: value must be positive, got %g", p.Rho)
	}
	return one(derive(im, adjust.Gamma(im.Pix, p.Rho))), nil
}

func brightnessTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, adjust.Brightness(im.Pix, p.Rho))), nil
}

func contrastTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, adjust.Contrast(im.Pix, p.Rho))), nil
}

func medianTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, effect.Median(im.Pix, p.Rho))), nil
}

func edgeTransform(im *Image, p Params) ([]*Image, error) {
	return one(derive(im, effect.EdgeDetection(im.Pix, p.Rho))), nil
}

func embossTransform(im *Image, _ Params) ([]*Image, error) {
	return one(derive(im, effect.Emboss(im.Pix))), nil
}

// cropTransform either extracts a single region (offset given) or splits
// the image into tiles of the requested size. The tile case is the
// replace-one-with-many path: each tile records its origin as its page
// offset so a later flatten can reassemble the canvas.
func cropTransform(im *Image, p Params) ([]*Image, error) {
	if !p.HasRect || p.Rect.Dx() <= 0 || p.Rect.Dy() <= 0 {
		return nil, fmt.Errorf("crop: empty geometry")
	}
	bounds := im.Pix.Bounds()

	if p.HasOffset {
		region := p.Rect.Intersect(bounds)
		if region.Empty() {
			return nil, fmt.Errorf("crop: region %v outside image bounds %v", p.Rect, bounds)
		}
		out := derive(im, imaging.Crop(im.Pix, region))
		out.Page = region.Min
		return one(out), nil
	}

	tw, th := p.Rect.Dx(), p.Rect.Dy()
	var tiles []*Image
	for y := bounds.Min.Y; y < bounds.Max.Y; y += th {
		for x := bounds.Min.X; x < bounds.Max.X; x += tw {
			region := image.Rect(x, y, x+tw, y+th).Intersect(bounds)
			tile := derive(im, imaging.Crop(im.Pix, region))
			tile.Page = region.Min
			tiles = append(tiles, tile)
		}
	}
	return tiles, nil
}

// sparseColorTransform fills the image by interpolating the control
// points produced by the sparse argument parser. Values holds groups of
// (x, y, channel...) with the image's active channel count. Methods:
// "voronoi" paints each pixel from its nearest control point; anything
// else uses inverse-distance-squared weighting.
func sparseColorTransform(im *Image, p Params) ([]*Image, error) {
	channels := im.ChannelCount()
	arity := 2 + channels
	if len(p.Values) == 0 || len(p.Values)%arity != 0 {
		return nil, fmt.Errorf("sparse-color: argument count %d is not a multiple of %d", len(p.Values), arity)
	}
	points := len(p.Values) / arity

	bounds := im.Pix.Bounds()
	out := image.NewNRGBA(bounds)
	sample := make([]float64, channels)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			interpolatePoint(p.Values, arity, points, p.Method, float64(x), float64(y), sample)
			out.SetNRGBA(x, y, channelsToNRGBA(sample, im.Colorspace, im.Matte))
		}
		if p.Progress != nil {
			p.Progress("sparse-color", int64(y-bounds.Min.Y+1), int64(bounds.Dy()))
		}
	}
	return one(derive(im, out)), nil
}

func interpolatePoint(values []float64, arity, points int, method string, x, y float64, dst []float64) {
	if method == "voronoi" {
		best, bestDist := 0, math.MaxFloat64
		for i := 0; i < points; i++ {
			dx := x - values[i*arity]
			dy := y - values[i*arity+1]
			if d := dx*dx + dy*dy; d < bestDist {
				best, bestDist = i, d
			}
		}
		copy(dst, values[best*arity+2:(best+1)*arity])
		return
	}

	// Inverse distance squared weighting. A pixel sitting exactly on a
	// control point takes that point's color.
	for c := range dst {
		dst[c] = 0
	}
	var total float64
	for i := 0; i < points; i++ {
		dx := x - values[i*arity]
		dy := y - values[i*arity+1]
		d := dx*dx + dy*dy
		if d == 0 {
			copy(dst, values[i*arity+2:(i+1)*arity])
			return
		}
		w := 1 / d
		total += w
		for c := 0; c < len(dst); c++ {
			dst[c] += w * values[i*arity+2+c]
		}
	}
	for c := range dst {
		dst[c] /= total
	}
}

// channelsToNRGBA maps normalized channel samples back to display RGBA
// following the channel order ChannelValues produces.
func channelsToNRGBA(vals []float64, colorspace string, matte bool) color.NRGBA {
	to8 := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}

	alpha := uint8(255)
	if matte {
		alpha = to8(vals[len(vals)-1])
	}
	switch colorspace {
	case "gray":
		g := to8(vals[0])
		return color.NRGBA{g, g, g, alpha}
	case "cmyk":
		c, m, y, k := vals[0], vals[1], vals[2], vals[3]
		return color.NRGBA{
			R: to8((1 - c) * (1 - k)),
			G: to8((1 - m) * (1 - k)),
			B: to8((1 - y) * (1 - k)),
			A: alpha,
		}
	default:
		return color.NRGBA{to8(vals[0]), to8(vals[1]), to8(vals[2]), alpha}
	}
}
