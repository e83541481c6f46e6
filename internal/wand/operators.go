package wand

import (
	"fmt"
	"image"

	"github.com/imagewand/imagewand/internal/geometry"
	"github.com/imagewand/imagewand/internal/imaging"
)

// Handler signatures for the three table-driven option classes. The
// control class is routed in ApplyControl directly since its members
// also carry non-sigil tokens.
type (
	settingHandler func(ctx *Context, set bool, arg string)
	simpleHandler  func(ctx *Context, im *imaging.Image, normal bool, arg1, arg2 string) ([]*imaging.Image, error)
	listHandler    func(ctx *Context, list []*imaging.Image, normal bool, arg1, arg2 string) ([]*imaging.Image, error)
)

// The static dispatch tables, built once at package init. Option names
// are stored without their sigil.
var (
	settingHandlers map[string]settingHandler
	simpleHandlers  map[string]simpleHandler
	listHandlers    map[string]listHandler
	optionTable     map[string]OptionSpec
)

func init() {
	settingHandlers = map[string]settingHandler{
		KeyBackground:    backgroundSetting,
		KeyBorderColor:   colorSetting(KeyBorderColor),
		KeyMatteColor:    colorSetting(KeyMatteColor),
		KeyFill:          drawColorSetting(KeyFill),
		KeyStroke:        drawColorSetting(KeyStroke),
		KeyStrokeWidth:   drawNumberSetting(KeyStrokeWidth, "1"),
		KeyFont:          fontSetting,
		KeyPointSize:     drawNumberSetting(KeyPointSize, "12"),
		KeyGravity:       drawStringSetting(KeyGravity),
		KeyAntialias:     booleanSetting(KeyAntialias),
		KeyQuality:       plainSetting(KeyQuality, "92"),
		KeyInterlace:     plainSetting(KeyInterlace, ""),
		KeyPage:          plainSetting(KeyPage, ""),
		KeyLabel:         plainSetting(KeyLabel, ""),
		KeyOrient:        plainSetting(KeyOrient, ""),
		KeyPing:          booleanSetting(KeyPing),
		KeyRespectParens: booleanSetting(KeyRespectParens),
		KeyColors:        quantizeSetting(KeyColors),
		KeyColorspace:    quantizeSetting(KeyColorspace),
		KeyDither:        quantizeBooleanSetting(KeyDither),
		KeyTreeDepth:     quantizeSetting(KeyTreeDepth),
	}

	simpleHandlers = map[string]simpleHandler{
		"adaptive-resize": regionOperator("adaptive-resize"),
		"annotate":        annotateOperator,
		"blur":            blurFamilyOperator("blur"),
		"brightness":      brightnessOperator,
		"contrast":        contrastOperator,
		"crop":            cropOperator,
		"edge":            radiusOperator("edge", 1),
		"emboss":          plainOperator("emboss"),
		"flip":            plainOperator("flip"),
		"flop":            plainOperator("flop"),
		"gamma":           gammaOperator,
		"gaussian-blur":   blurFamilyOperator("gaussian-blur"),
		"grayscale":       plainOperator("grayscale"),
		"median":          radiusOperator("median", 3),
		"negate":          plainOperator("negate"),
		"repage":          repageOperator,
		"resize":          regionOperator("resize"),
		"rotate":          rotateOperator,
		"sharpen":         blurFamilyOperator("sharpen"),
		"sparse-color":    sparseColorOperator,
		"strip":           stripOperator,
		"transpose":       plainOperator("transpose"),
	}

	listHandlers = map[string]listHandler{
		"append":    appendOperator,
		"delete":    deleteOperator,
		"duplicate": duplicateOperator,
		"flatten":   flattenOperator,
		"reverse":   reverseOperator,
		"swap":      swapOperator,
		"write":     writeOperator,
	}

	optionTable = map[string]OptionSpec{}
	for name := range settingHandlers {
		spec := OptionSpec{Class: ClassSetting, NArgs: 1, PlusNoArg: true}
		switch name {
		case KeyAntialias, KeyPing, KeyRespectParens, KeyDither:
			spec.NArgs = 0
		}
		optionTable[name] = spec
	}
	for name := range simpleHandlers {
		spec := OptionSpec{Class: ClassSimple, NArgs: 1}
		switch name {
		case "flip", "flop", "transpose", "negate", "grayscale", "emboss", "contrast", "strip":
			spec.NArgs = 0
		case "annotate", "sparse-color":
			spec.NArgs = 2
		case "repage":
			spec.PlusNoArg = true
		}
		optionTable[name] = spec
	}
	for name := range listHandlers {
		spec := OptionSpec{Class: ClassList, NArgs: 0}
		switch name {
		case "write", "duplicate":
			spec.NArgs = 1
		case "delete", "swap":
			spec.NArgs = 1
			spec.PlusNoArg = true
		}
		optionTable[name] = spec
	}
	for _, name := range []string{"(", ")", "{", "}", "noop", "sans", "sans0", "sans2"} {
		optionTable[name] = OptionSpec{Class: ClassControl, NArgs: 0}
	}
	optionTable["read"] = OptionSpec{Class: ClassControl, NArgs: 1}
	optionTable["--"] = OptionSpec{Class: ClassControl, NArgs: 1}
	optionTable["list"] = OptionSpec{Class: ClassControl, NArgs: 1}
	optionTable["clone"] = OptionSpec{Class: ClassControl, NArgs: 1, PlusNoArg: true}
}

// === Setting handlers ===

// plainSetting stores the value verbatim; the "+" form restores def, or
// removes the entry when def is empty.
func plainSetting(key, def string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		if set {
			ctx.settings.Set(key, arg)
			return
		}
		if def == "" {
			ctx.settings.Unset(key)
			return
		}
		ctx.settings.Set(key, def)
	}
}

// booleanSetting is a toggle: "-name" turns it on, "+name" removes it.
func booleanSetting(key string) settingHandler {
	return func(ctx *Context, set bool, _ string) {
		if set {
			ctx.settings.Set(key, "true")
			return
		}
		ctx.settings.Unset(key)
	}
}

func backgroundSetting(ctx *Context, set bool, arg string) {
	if !set {
		ctx.settings.Unset(KeyBackground)
		ctx.settings.Background = NewSettings().Background
		return
	}
	c, ok := parseSettingColor(arg)
	if !ok {
		ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "background: bad color %q", arg)
		return
	}
	ctx.settings.Set(KeyBackground, arg)
	ctx.settings.Background = c
}

// colorSetting covers the remaining typed color sub-records.
func colorSetting(key string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		defaults := NewSettings()
		if !set {
			ctx.settings.Unset(key)
			switch key {
			case KeyBorderColor:
				ctx.settings.BorderColor = defaults.BorderColor
			case KeyMatteColor:
				ctx.settings.MatteColor = defaults.MatteColor
			}
			return
		}
		c, ok := parseSettingColor(arg)
		if !ok {
			ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "%s: bad color %q", key, arg)
			return
		}
		ctx.settings.Set(key, arg)
		switch key {
		case KeyBorderColor:
			ctx.settings.BorderColor = c
		case KeyMatteColor:
			ctx.settings.MatteColor = c
		}
	}
}

// drawColorSetting mirrors a color into the drawing defaults.
func drawColorSetting(key string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		if !set {
			ctx.settings.Unset(key)
			ctx.draw = deriveDrawDefaults(ctx.settings)
			return
		}
		if _, ok := parseSettingColor(arg); !ok {
			ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "%s: bad color %q", key, arg)
			return
		}
		ctx.settings.Set(key, arg)
		ctx.draw = deriveDrawDefaults(ctx.settings)
	}
}

// drawNumberSetting mirrors a numeric value into the drawing defaults.
func drawNumberSetting(key, def string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		if set {
			ctx.settings.Set(key, arg)
		} else {
			ctx.settings.Set(key, def)
		}
		ctx.draw = deriveDrawDefaults(ctx.settings)
	}
}

// drawStringSetting mirrors a plain string into the drawing defaults.
func drawStringSetting(key string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		if set {
			ctx.settings.Set(key, arg)
		} else {
			ctx.settings.Unset(key)
		}
		ctx.draw = deriveDrawDefaults(ctx.settings)
	}
}

func fontSetting(ctx *Context, set bool, arg string) {
	if set {
		ctx.settings.Set(KeyFont, arg)
	} else {
		ctx.settings.Unset(KeyFont)
	}
	ctx.draw = deriveDrawDefaults(ctx.settings)
}

// quantizeSetting mirrors a value into the quantization defaults.
func quantizeSetting(key string) settingHandler {
	return func(ctx *Context, set bool, arg string) {
		if set {
			ctx.settings.Set(key, arg)
		} else {
			ctx.settings.Unset(key)
		}
		ctx.quantize = deriveQuantizeDefaults(ctx.settings)
	}
}

func quantizeBooleanSetting(key string) settingHandler {
	return func(ctx *Context, set bool, _ string) {
		if set {
			ctx.settings.Set(key, "true")
		} else {
			ctx.settings.Unset(key)
		}
		ctx.quantize = deriveQuantizeDefaults(ctx.settings)
	}
}

// === Per-image operator handlers ===

func (ctx *Context) params() imaging.Params {
	return imaging.Params{Progress: ctx.progress}
}

// plainOperator runs an argument-free transform.
func plainOperator(name string) simpleHandler {
	return func(ctx *Context, im *imaging.Image, _ bool, _, _ string) ([]*imaging.Image, error) {
		return imaging.Apply(im, name, ctx.params())
	}
}

// blurFamilyOperator parses "radius[xsigma]"; sigma defaults to 1.0 when
// absent, the documented default-inheritance for the blur family.
func blurFamilyOperator(name string) simpleHandler {
	return func(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
		info, flags := geometry.Parse(arg1)
		if flags&geometry.RhoValue == 0 {
			return nil, fmt.Errorf("%w: %s %q", errInvalidArgument, name, arg1)
		}
		if flags&geometry.SigmaValue == 0 {
			info.Sigma = 1.0
		}
		p := ctx.params()
		p.Rho = info.Rho
		p.Sigma = info.Sigma
		p.Xi = info.Xi
		p.Psi = info.Psi
		return imaging.Apply(im, name, p)
	}
}

// radiusOperator parses a single magnitude with a fallback default.
func radiusOperator(name string, def float64) simpleHandler {
	return func(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
		info, flags := geometry.Parse(arg1)
		if flags&geometry.RhoValue == 0 {
			info.Rho = def
		}
		p := ctx.params()
		p.Rho = info.Rho
		return imaging.Apply(im, name, p)
	}
}

// regionOperator resolves a size geometry against the image bounds.
func regionOperator(name string) simpleHandler {
	return func(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
		rect, _, err := geometry.ParseRegion(arg1, im.Bounds())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errInvalidArgument, name, err)
		}
		p := ctx.params()
		p.Rect = rect
		p.HasRect = true
		return imaging.Apply(im, name, p)
	}
}

func rotateOperator(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	info, flags := geometry.Parse(arg1)
	if flags&geometry.RhoValue == 0 {
		return nil, fmt.Errorf("%w: rotate %q", errInvalidArgument, arg1)
	}
	p := ctx.params()
	p.Rho = info.Rho
	return imaging.Apply(im, "rotate", p)
}

func gammaOperator(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	info, flags := geometry.Parse(arg1)
	if flags&geometry.RhoValue == 0 {
		return nil, fmt.Errorf("%w: gamma %q", errInvalidArgument, arg1)
	}
	p := ctx.params()
	p.Rho = info.Rho
	return imaging.Apply(im, "gamma", p)
}

// brightnessOperator takes a -100..100 percentage.
func brightnessOperator(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	info, flags := geometry.Parse(arg1)
	if flags&geometry.RhoValue == 0 {
		return nil, fmt.Errorf("%w: brightness %q", errInvalidArgument, arg1)
	}
	p := ctx.params()
	p.Rho = info.Rho / 100
	return imaging.Apply(im, "brightness", p)
}

// contrastOperator increases contrast in its normal form and reduces it
// in the "+" form; the optional argument is a percentage (default 10).
func contrastOperator(ctx *Context, im *imaging.Image, normal bool, arg1, _ string) ([]*imaging.Image, error) {
	change := 10.0
	if info, flags := geometry.Parse(arg1); flags&geometry.RhoValue != 0 {
		change = info.Rho
	}
	if !normal {
		change = -change
	}
	p := ctx.params()
	p.Rho = change / 100
	return imaging.Apply(im, "contrast", p)
}

// cropOperator takes the geometry literally: "WxH+X+Y" extracts one
// region, "WxH" without offsets splits the image into tiles (the
// replace-one-with-many path). A missing height inherits the width.
func cropOperator(ctx *Context, im *imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	info, flags := geometry.Parse(arg1)
	if flags&geometry.RhoValue == 0 {
		return nil, fmt.Errorf("%w: crop %q", errInvalidArgument, arg1)
	}
	if flags&geometry.SigmaValue == 0 {
		info.Sigma = info.Rho
	}
	w, h := int(info.Rho), int(info.Sigma)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: crop %q: empty region", errInvalidArgument, arg1)
	}
	x, y := int(info.Xi), int(info.Psi)

	p := ctx.params()
	p.Rect = image.Rect(x, y, x+w, y+h)
	p.HasRect = true
	p.HasOffset = flags&(geometry.XiValue|geometry.PsiValue) != 0
	return imaging.Apply(im, "crop", p)
}

// annotateOperator draws arg2 at the offsets from arg1 using the current
// drawing defaults. Sigma defaults to rho, mirroring the rotation slots
// of the original annotate grammar.
func annotateOperator(ctx *Context, im *imaging.Image, _ bool, arg1, arg2 string) ([]*imaging.Image, error) {
	if arg2 == "" {
		return nil, fmt.Errorf("%w: annotate: no text", errInvalidArgument)
	}
	info, flags := geometry.Parse(arg1)
	if flags&geometry.SigmaValue == 0 {
		info.Sigma = info.Rho
	}
	p := ctx.params()
	p.Text = arg2
	p.Xi = info.Xi
	p.Psi = info.Psi
	p.Fill = ctx.draw.Fill
	p.HasFill = true
	return imaging.Apply(im, "annotate", p)
}

// sparseColorOperator parses the mixed coordinate/color argument stream
// with the image's active channel count and delegates interpolation.
func sparseColorOperator(ctx *Context, im *imaging.Image, _ bool, arg1, arg2 string) ([]*imaging.Image, error) {
	values, err := parseSparseArgs(arg2, im.ChannelCount(), im.Colorspace, im.Matte)
	if err != nil {
		return nil, err
	}
	p := ctx.params()
	p.Method = arg1
	p.Values = values
	return imaging.Apply(im, "sparse-color", p)
}

// repageOperator adjusts the page offset in place: "-repage +X+Y" sets
// it, "+repage" resets it.
func repageOperator(_ *Context, im *imaging.Image, normal bool, arg1, _ string) ([]*imaging.Image, error) {
	if !normal {
		im.Page = image.Point{}
		return nil, nil
	}
	info, flags := geometry.Parse(arg1)
	if flags&(geometry.XiValue|geometry.PsiValue) == 0 {
		return nil, fmt.Errorf("%w: repage %q", errInvalidArgument, arg1)
	}
	im.Page = image.Pt(int(info.Xi), int(info.Psi))
	return nil, nil
}

// stripOperator clears per-image metadata in place.
func stripOperator(_ *Context, im *imaging.Image, _ bool, _, _ string) ([]*imaging.Image, error) {
	im.Label = ""
	im.Orientation = ""
	im.Attrs = map[string]string{}
	return nil, nil
}

// === Whole-list operator handlers ===

// appendOperator concatenates the list into one image: top-to-bottom in
// its normal form, left-to-right with "+append".
func appendOperator(_ *Context, list []*imaging.Image, normal bool, _, _ string) ([]*imaging.Image, error) {
	out, err := imaging.Append(list, normal)
	if err != nil {
		return nil, err
	}
	return []*imaging.Image{out}, nil
}

func flattenOperator(_ *Context, list []*imaging.Image, _ bool, _, _ string) ([]*imaging.Image, error) {
	out, err := imaging.Flatten(list)
	if err != nil {
		return nil, err
	}
	return []*imaging.Image{out}, nil
}

// duplicateOperator appends count copies of the whole list.
func duplicateOperator(_ *Context, list []*imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	count := 1
	if arg1 != "" {
		if _, err := fmt.Sscanf(arg1, "%d", &count); err != nil || count < 1 {
			return nil, fmt.Errorf("%w: duplicate %q", errInvalidArgument, arg1)
		}
	}
	out := make([]*imaging.Image, 0, len(list)*(count+1))
	out = append(out, list...)
	for i := 0; i < count; i++ {
		for _, im := range list {
			out = append(out, im.Clone())
		}
	}
	return out, nil
}

func reverseOperator(_ *Context, list []*imaging.Image, _ bool, _, _ string) ([]*imaging.Image, error) {
	out := make([]*imaging.Image, len(list))
	for i, im := range list {
		out[len(list)-1-i] = im
	}
	return out, nil
}

// deleteOperator removes the selected scenes; "+delete" removes the last
// image. Deleting every image is refused, since an empty replacement
// would be indistinguishable from "no result".
func deleteOperator(_ *Context, list []*imaging.Image, normal bool, arg1, _ string) ([]*imaging.Image, error) {
	if !normal {
		arg1 = "-1"
	}
	indexes, err := geometry.ParseSceneList(arg1, len(list))
	if err != nil {
		return nil, fmt.Errorf("%w: delete: %v", errInvalidArgument, err)
	}
	drop := map[int]bool{}
	for _, i := range indexes {
		drop[i] = true
	}
	if len(drop) >= len(list) {
		return nil, fmt.Errorf("%w: delete would remove every image", errInvalidArgument)
	}
	var out []*imaging.Image
	for i, im := range list {
		if !drop[i] {
			out = append(out, im)
		}
	}
	return out, nil
}

// swapOperator exchanges two scenes; "+swap" exchanges the last two.
func swapOperator(_ *Context, list []*imaging.Image, normal bool, arg1, _ string) ([]*imaging.Image, error) {
	if len(list) < 2 {
		return nil, fmt.Errorf("%w: swap needs at least two images", errInvalidArgument)
	}
	a, b := len(list)-2, len(list)-1
	if normal {
		indexes, err := geometry.ParseSceneList(arg1, len(list))
		if err != nil || len(indexes) != 2 {
			return nil, fmt.Errorf("%w: swap %q", errInvalidArgument, arg1)
		}
		a, b = indexes[0], indexes[1]
	}
	out := make([]*imaging.Image, len(list))
	copy(out, list)
	out[a], out[b] = out[b], out[a]
	return out, nil
}

// writeOperator encodes the list to a destination. The list itself is
// left untouched.
func writeOperator(ctx *Context, list []*imaging.Image, _ bool, arg1, _ string) ([]*imaging.Image, error) {
	if arg1 == "" {
		return nil, fmt.Errorf("%w: write: no destination", errInvalidArgument)
	}
	if err := imaging.Write(list, arg1, ctx.settings.Int(KeyQuality, 92)); err != nil {
		return nil, err
	}
	return nil, nil
}
