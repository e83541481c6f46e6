package wand

import (
	"image/color"

	"go.uber.org/zap"

	"github.com/imagewand/imagewand/internal/geometry"
	"github.com/imagewand/imagewand/internal/imaging"
)

// maxStackDepth bounds both nesting stacks. Exceeding it is a reported
// error that refuses only the push.
const maxStackDepth = 32

// Context is the live execution state for one option run: the working
// image list, the active settings store with its derived defaults, the
// two nesting stacks, and the diagnostics sink. A Context is owned by a
// single logical thread; it provides no internal synchronization.
type Context struct {
	images []*imaging.Image

	settings *Settings
	draw     *DrawDefaults
	quantize *QuantizeDefaults

	imageStack    [][]*imaging.Image
	settingsStack []*Settings

	sink     *ExceptionSink
	progress imaging.ProgressFunc
	log      *zap.Logger
}

// Option configures a Context at creation.
type Option func(*Context)

// WithLogger wires a logger for event tracing and drained diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(ctx *Context) { ctx.log = log }
}

// WithProgress installs a progress callback passed through to long
// delegate operations.
func WithProgress(fn imaging.ProgressFunc) Option {
	return func(ctx *Context) { ctx.progress = fn }
}

// New creates a Context around an initial settings store (nil for
// defaults). Draw and quantize defaults are derived immediately.
func New(initial *Settings, opts ...Option) *Context {
	ctx := &Context{log: zap.NewNop()}
	for _, opt := range opts {
		opt(ctx)
	}
	if initial == nil {
		initial = NewSettings()
	}
	ctx.settings = initial
	ctx.draw = deriveDrawDefaults(initial)
	ctx.quantize = deriveQuantizeDefaults(initial)
	ctx.sink = NewExceptionSink(ctx.log)
	return ctx
}

// Close releases the working state. Unpopped stack entries are dropped
// along with the current list; the sink is left intact so diagnostics
// can still be drained.
func (ctx *Context) Close() {
	ctx.images = nil
	ctx.imageStack = nil
	ctx.settingsStack = nil
}

// Images returns the working image list. The slice is live: operators
// mutate it through the dispatcher.
func (ctx *Context) Images() []*imaging.Image {
	return ctx.images
}

// AppendImages transfers ownership of a sequence onto the tail of the
// working list.
func (ctx *Context) AppendImages(seq ...*imaging.Image) {
	ctx.images = append(ctx.images, seq...)
}

// Settings returns the active settings store.
func (ctx *Context) Settings() *Settings {
	return ctx.settings
}

// Draw returns the active drawing defaults.
func (ctx *Context) Draw() *DrawDefaults {
	return ctx.draw
}

// Quantize returns the active quantization defaults.
func (ctx *Context) Quantize() *QuantizeDefaults {
	return ctx.quantize
}

// Sink exposes the diagnostics sink.
func (ctx *Context) Sink() *ExceptionSink {
	return ctx.sink
}

// DrainExceptions reports and clears accumulated diagnostics; see
// ExceptionSink.Drain.
func (ctx *Context) DrainExceptions(all bool) bool {
	return ctx.sink.Drain(all)
}

// spliceImages replaces the single slot at index i with the replacement
// sequence, preserving the order of everything around it. An empty
// replacement removes the slot. Ownership of the replaced image leaves
// the list.
func spliceImages(list []*imaging.Image, i int, repl []*imaging.Image) []*imaging.Image {
	out := make([]*imaging.Image, 0, len(list)-1+len(repl))
	out = append(out, list[:i]...)
	out = append(out, repl...)
	out = append(out, list[i+1:]...)
	return out
}

// syncImageSettings pushes the settings-derived per-image attributes
// onto every image in the working list. The dispatcher runs this once
// per operator call, before the operator sees the list.
func (ctx *Context) syncImageSettings() {
	s := ctx.settings
	var page struct {
		set  bool
		x, y int
	}
	if v := s.Get(KeyPage); v != "" {
		if info, flags := geometry.Parse(v); flags&(geometry.XiValue|geometry.PsiValue) != 0 {
			page.set = true
			page.x = int(info.Xi)
			page.y = int(info.Psi)
		}
	}
	for _, im := range ctx.images {
		im.Background = s.Background
		if page.set {
			im.Page.X = page.x
			im.Page.Y = page.y
		}
		if v := s.Get(KeyLabel); v != "" {
			im.Label = v
		}
		if v := s.Get(KeyOrient); v != "" {
			im.Orientation = v
		}
	}
}

// parseSettingColor resolves a stored color value, reporting ok=false
// for empty or malformed values.
func parseSettingColor(v string) (color.NRGBA, bool) {
	if v == "" {
		return color.NRGBA{}, false
	}
	return imaging.ParseColorNRGBA(v)
}
