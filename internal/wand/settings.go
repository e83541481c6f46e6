package wand

import (
	"image/color"
	"strconv"
)

// Well-known setting names. Settings live in a flat name/value map; the
// handful below also mirror into typed sub-records read on hot paths.
const (
	KeyBackground     = "background"
	KeyBorderColor    = "bordercolor"
	KeyMatteColor     = "mattecolor"
	KeyFill           = "fill"
	KeyStroke         = "stroke"
	KeyStrokeWidth    = "strokewidth"
	KeyFont           = "font"
	KeyPointSize      = "pointsize"
	KeyGravity        = "gravity"
	KeyAntialias      = "antialias"
	KeyQuality        = "quality"
	KeyInterlace      = "interlace"
	KeyPage           = "page"
	KeyLabel          = "label"
	KeyOrient         = "orient"
	KeyPing           = "ping"
	KeyRespectParens  = "respect-parenthesis"
	KeyColors         = "colors"
	KeyColorspace     = "colorspace"
	KeyDither         = "dither"
	KeyTreeDepth      = "treedepth"
	KeySparseMethod   = "sparse-color-method"
	KeyMonitorEnabled = "monitor"
)

// Settings is the flat configuration store read and mutated by setting
// options. It has no nesting of its own; the Context's settings stack
// snapshots and restores whole stores.
type Settings struct {
	values map[string]string

	// Typed sub-records kept in sync by the setting handlers.
	Background  color.NRGBA
	BorderColor color.NRGBA
	MatteColor  color.NRGBA
}

// NewSettings returns a store with pipeline defaults: white background,
// gray border and matte colors, quality 92, pointsize 12.
func NewSettings() *Settings {
	return &Settings{
		values: map[string]string{
			KeyQuality:   "92",
			KeyPointSize: "12",
		},
		Background:  color.NRGBA{255, 255, 255, 255},
		BorderColor: color.NRGBA{223, 223, 223, 255},
		MatteColor:  color.NRGBA{189, 189, 189, 255},
	}
}

// Get returns the value for name, or "" when unset.
func (s *Settings) Get(name string) string {
	return s.values[name]
}

// IsSet reports whether name has any value, including "".
func (s *Settings) IsSet(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Set stores a value. Setting the same value twice is a no-op.
func (s *Settings) Set(name, value string) {
	s.values[name] = value
}

// Unset removes a value; removing an absent name is a no-op.
func (s *Settings) Unset(name string) {
	delete(s.values, name)
}

// Bool interprets a stored value as a toggle: present and not "false"/"0"
// means on.
func (s *Settings) Bool(name string) bool {
	v, ok := s.values[name]
	if !ok {
		return false
	}
	return v != "false" && v != "0"
}

// Float returns the value parsed as float64, or def when unset/invalid.
func (s *Settings) Float(name string, def float64) float64 {
	if v, ok := s.values[name]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the value parsed as int, or def when unset/invalid.
func (s *Settings) Int(name string, def int) int {
	if v, ok := s.values[name]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Clone returns a copy deep enough that mutating the clone never affects
// the original: the value map is duplicated and sub-records are value
// types already.
func (s *Settings) Clone() *Settings {
	dup := *s
	dup.values = make(map[string]string, len(s.values))
	for k, v := range s.values {
		dup.values[k] = v
	}
	return &dup
}

// DrawDefaults is the drawing configuration derived from Settings,
// consumed by text and stroke producing operators.
type DrawDefaults struct {
	Font        string
	PointSize   float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Antialias   bool
	Gravity     string
}

// QuantizeDefaults is the color-quantization configuration derived from
// Settings.
type QuantizeDefaults struct {
	Colors     int
	Colorspace string
	Dither     bool
	TreeDepth  int
}

// deriveDrawDefaults rebuilds drawing defaults from the store. Called at
// context creation and whenever a settings snapshot is restored.
func deriveDrawDefaults(s *Settings) *DrawDefaults {
	d := &DrawDefaults{
		Font:        s.Get(KeyFont),
		PointSize:   s.Float(KeyPointSize, 12),
		Fill:        color.NRGBA{0, 0, 0, 255},
		Stroke:      color.NRGBA{0, 0, 0, 0},
		StrokeWidth: s.Float(KeyStrokeWidth, 1),
		Antialias:   !s.IsSet(KeyAntialias) || s.Bool(KeyAntialias),
		Gravity:     s.Get(KeyGravity),
	}
	if c, ok := parseSettingColor(s.Get(KeyFill)); ok {
		d.Fill = c
	}
	if c, ok := parseSettingColor(s.Get(KeyStroke)); ok {
		d.Stroke = c
	}
	return d
}

// deriveQuantizeDefaults rebuilds quantization defaults from the store.
func deriveQuantizeDefaults(s *Settings) *QuantizeDefaults {
	return &QuantizeDefaults{
		Colors:     s.Int(KeyColors, 256),
		Colorspace: s.Get(KeyColorspace),
		Dither:     s.Bool(KeyDither),
		TreeDepth:  s.Int(KeyTreeDepth, 0),
	}
}
