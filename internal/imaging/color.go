package imaging

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors maps the color names accepted wherever an option takes a
// color argument. Values are 6-digit hex without alpha.
var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"lime":        "#00ff00",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"cyan":        "#00ffff",
	"magenta":     "#ff00ff",
	"gray":        "#808080",
	"grey":        "#808080",
	"silver":      "#c0c0c0",
	"maroon":      "#800000",
	"olive":       "#808000",
	"purple":      "#800080",
	"teal":        "#008080",
	"navy":        "#000080",
	"orange":      "#ffa500",
	"pink":        "#ffc0cb",
	"brown":       "#a52a2a",
	"transparent": "#000000", // alpha handled separately
	"none":        "#000000",
}

// ParseColor resolves a color token: a name from the built-in table, a
// "#" hex string with 3, 4, 6 or 8 digits, or an "rgb(r,g,b)" /
// "rgba(r,g,b,a)" function. The returned alpha is in [0,1]; names
// "transparent" and "none" yield alpha 0.
func ParseColor(token string) (colorful.Color, float64, bool) {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "" {
		return colorful.Color{}, 0, false
	}

	alpha := 1.0
	if hex, ok := namedColors[token]; ok {
		if token == "transparent" || token == "none" {
			alpha = 0
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		return c, alpha, true
	}

	if strings.HasPrefix(token, "#") {
		return parseHexColor(token)
	}

	if strings.HasPrefix(token, "rgb(") || strings.HasPrefix(token, "rgba(") {
		return parseRGBFunc(token)
	}

	return colorful.Color{}, 0, false
}

// ParseColorNRGBA is ParseColor with the result converted to 8-bit NRGBA,
// for callers that feed stdlib draw and encode paths.
func ParseColorNRGBA(token string) (color.NRGBA, bool) {
	c, alpha, ok := ParseColor(token)
	if !ok {
		return color.NRGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, true
}

// parseHexColor handles "#rgb", "#rgba", "#rrggbb" and "#rrggbbaa".
func parseHexColor(token string) (colorful.Color, float64, bool) {
	hex := token[1:]
	expand := func(s string) string {
		var b strings.Builder
		for _, ch := range s {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		return b.String()
	}

	alpha := 1.0
	switch len(hex) {
	case 3:
		hex = expand(hex)
	case 4:
		a, err := strconv.ParseUint(expand(hex[3:]), 16, 8)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		alpha = float64(a) / 255.0
		hex = expand(hex[:3])
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		alpha = float64(a) / 255.0
		hex = hex[:6]
	default:
		return colorful.Color{}, 0, false
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, 0, false
	}
	return c, alpha, true
}

// parseRGBFunc handles "rgb(r,g,b)" and "rgba(r,g,b,a)" with 0-255
// components and a 0-1 alpha.
func parseRGBFunc(token string) (colorful.Color, float64, bool) {
	open := strings.IndexByte(token, '(')
	if open < 0 || !strings.HasSuffix(token, ")") {
		return colorful.Color{}, 0, false
	}
	parts := strings.Split(token[open+1:len(token)-1], ",")
	wantAlpha := strings.HasPrefix(token, "rgba")
	if (wantAlpha && len(parts) != 4) || (!wantAlpha && len(parts) != 3) {
		return colorful.Color{}, 0, false
	}

	var comp [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, 0, false
		}
		comp[i] = v / 255.0
	}
	alpha := 1.0
	if wantAlpha {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return colorful.Color{}, 0, false
		}
		alpha = v
	}
	return colorful.Color{R: comp[0], G: comp[1], B: comp[2]}, alpha, true
}

// ChannelValues expands a parsed color to one normalized [0,1] component
// per active channel for the given colorspace and matte state, in channel
// order: gray or R,G,B, then black for CMYK, then alpha when matte is on.
// The slice length always equals the channel count for that combination.
func ChannelValues(c colorful.Color, alpha float64, colorspace string, matte bool) []float64 {
	var vals []float64
	switch colorspace {
	case "gray":
		// ITU-R BT.601 luma, same weighting the grayscale transform uses.
		vals = append(vals, 0.299*c.R+0.587*c.G+0.114*c.B)
	case "cmyk":
		cc, m, y, k := rgbToCMYK(c.R, c.G, c.B)
		vals = append(vals, cc, m, y, k)
	default:
		vals = append(vals, c.R, c.G, c.B)
	}
	if matte {
		vals = append(vals, alpha)
	}
	return vals
}

func rgbToCMYK(r, g, b float64) (c, m, y, k float64) {
	k = 1 - max3(r, g, b)
	if k >= 1 {
		return 0, 0, 0, 1
	}
	c = (1 - r - k) / (1 - k)
	m = (1 - g - k) / (1 - k)
	y = (1 - b - k) / (1 - k)
	return c, m, y, k
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// ColorNames returns the recognized color names, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatNRGBA renders a color the way listings and diagnostics print it.
func formatNRGBA(c color.NRGBA) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
