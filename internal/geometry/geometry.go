// Package geometry parses the compact argument grammar shared by the
// image options: a leading magnitude, an optional "x"-separated second
// component, and optional signed offsets, with flags recording which
// components were actually present so each operator can apply its own
// defaults (blur-family operators default sigma to rho, and so on).
package geometry

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Flags records which components and modifiers appeared in the input.
type Flags uint16

const (
	// RhoValue is set when the first magnitude was present.
	RhoValue Flags = 1 << iota
	// SigmaValue is set when an "xN" second magnitude was present.
	SigmaValue
	// XiValue is set when a first signed offset was present.
	XiValue
	// PsiValue is set when a second signed offset was present.
	PsiValue
	// PercentValue is set by a '%' modifier anywhere in the input.
	PercentValue
	// AspectValue is set by '!': ignore aspect ratio.
	AspectValue
	// LessValue is set by '<': only enlarge smaller images.
	LessValue
	// GreaterValue is set by '>': only shrink larger images.
	GreaterValue
	// MinimumValue is set by '^': treat dimensions as minimums.
	MinimumValue
)

// Info holds the four numeric slots of the micro-grammar.
type Info struct {
	Rho   float64
	Sigma float64
	Xi    float64
	Psi   float64
}

// Parse decodes strings like "3", "3x1.5", "300x200+10-5" or "50%".
// Absent components are left zero and reported absent in the flags;
// callers apply operator-specific defaults. An empty or unparseable
// string yields zero flags.
func Parse(arg string) (Info, Flags) {
	var info Info
	var flags Flags

	s := strings.TrimSpace(arg)
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			flags |= PercentValue
		case '!':
			flags |= AspectValue
		case '<':
			flags |= LessValue
		case '>':
			flags |= GreaterValue
		case '^':
			flags |= MinimumValue
		default:
			clean = append(clean, s[i])
		}
	}
	s = string(clean)
	if s == "" {
		return info, flags
	}

	// Split off the +xi+psi offset tail first; offsets are always signed.
	body, offsets := splitOffsets(s)

	if body != "" {
		rho := body
		if i := strings.IndexAny(body, "xX"); i >= 0 {
			rho, body = body[:i], body[i+1:]
			if body != "" {
				if v, err := strconv.ParseFloat(body, 64); err == nil {
					info.Sigma = v
					flags |= SigmaValue
				}
			}
		} else {
			body = ""
		}
		if rho != "" {
			if v, err := strconv.ParseFloat(rho, 64); err == nil {
				info.Rho = v
				flags |= RhoValue
			}
		}
	}

	if len(offsets) > 0 {
		if v, err := strconv.ParseFloat(offsets[0], 64); err == nil {
			info.Xi = v
			flags |= XiValue
		}
	}
	if len(offsets) > 1 {
		if v, err := strconv.ParseFloat(offsets[1], 64); err == nil {
			info.Psi = v
			flags |= PsiValue
		}
	}
	return info, flags
}

// splitOffsets separates "300x200+10-5" into "300x200" and ["+10","-5"].
// A leading '+' starts the offsets (pure-offset inputs like "+10+20"),
// while a leading '-' is a numeric sign. Elsewhere a sign following 'x',
// 'e' or another sign is part of a number, not an offset marker.
func splitOffsets(s string) (string, []string) {
	var offsets []string
	body := s
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '+' && c != '-' {
			continue
		}
		if i == 0 {
			if c == '-' {
				continue
			}
		} else {
			prev := body[i-1]
			if prev == 'e' || prev == 'E' || prev == 'x' || prev == 'X' || prev == '+' || prev == '-' {
				continue
			}
		}
		rest := body[i:]
		body = body[:i]
		// rest is one or two signed numbers run together: "+10-5".
		for len(rest) > 0 {
			j := 1
			for j < len(rest) && rest[j] != '+' && rest[j] != '-' {
				j++
			}
			offsets = append(offsets, rest[:j])
			rest = rest[j:]
		}
		break
	}
	return body, offsets
}

// ParseRegion resolves a width/height geometry against an image's bounds,
// honoring the standard modifiers: '%' scales relative to the current
// size, '^' fills (cover) rather than fits, '!' forces exact dimensions,
// '<' only enlarges, '>' only shrinks. A missing dimension inherits the
// aspect-preserving complement. The returned rectangle is positioned at
// the xi/psi offsets.
func ParseRegion(arg string, bounds image.Rectangle) (image.Rectangle, Flags, error) {
	info, flags := Parse(arg)
	if flags&(RhoValue|SigmaValue) == 0 {
		return image.Rectangle{}, flags, fmt.Errorf("invalid geometry %q", arg)
	}

	curW := float64(bounds.Dx())
	curH := float64(bounds.Dy())
	w := info.Rho
	h := info.Sigma

	if flags&PercentValue != 0 {
		if flags&RhoValue != 0 && flags&SigmaValue == 0 {
			h = w
			flags |= SigmaValue
		}
		w = curW * w / 100
		h = curH * h / 100
	} else {
		// A single missing dimension preserves aspect ratio.
		switch {
		case flags&SigmaValue == 0:
			h = math.Round(curH * w / curW)
		case flags&RhoValue == 0:
			w = math.Round(curW * h / curH)
		}
	}

	if flags&AspectValue == 0 && flags&(RhoValue|SigmaValue) == (RhoValue|SigmaValue) && flags&PercentValue == 0 {
		// Fit (or cover, with '^') inside the requested box.
		scaleW := w / curW
		scaleH := h / curH
		scale := math.Min(scaleW, scaleH)
		if flags&MinimumValue != 0 {
			scale = math.Max(scaleW, scaleH)
		}
		w = math.Round(curW * scale)
		h = math.Round(curH * scale)
	}

	if flags&LessValue != 0 && (w <= curW && h <= curH) {
		w, h = curW, curH
	}
	if flags&GreaterValue != 0 && (w >= curW && h >= curH) {
		w, h = curW, curH
	}

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := int(info.Xi)
	y := int(info.Psi)
	return image.Rect(x, y, x+int(w), y+int(h)), flags, nil
}

// ParseSceneList decodes an index specifier like "0,2", "1-3" or "-1"
// against a list of the given length. Negative indices count from the
// end. Every index must land in range; otherwise no result is returned.
func ParseSceneList(arg string, length int) ([]int, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("empty scene list")
	}
	var out []int
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseSceneRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 0 {
			lo += length
		}
		if hi < 0 {
			hi += length
		}
		step := 1
		if hi < lo {
			step = -1
		}
		for i := lo; ; i += step {
			if i < 0 || i >= length {
				return nil, fmt.Errorf("scene index %d out of range [0,%d)", i, length)
			}
			out = append(out, i)
			if i == hi {
				break
			}
		}
	}
	return out, nil
}

// parseSceneRange splits "a-b" into its endpoints; a bare index is the
// degenerate range a-a. The '-' of a leading negative index is not a
// range separator.
func parseSceneRange(part string) (int, int, error) {
	if part == "" {
		return 0, 0, fmt.Errorf("empty scene index")
	}
	sep := -1
	for i := 1; i < len(part); i++ {
		if part[i] == '-' && part[i-1] != '-' {
			sep = i
			break
		}
	}
	if sep < 0 {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid scene index %q", part)
		}
		return n, n, nil
	}
	lo, err := strconv.Atoi(part[:sep])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scene range %q", part)
	}
	hi, err := strconv.Atoi(part[sep+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scene range %q", part)
	}
	return lo, hi, nil
}
