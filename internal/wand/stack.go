package wand

import (
	"strings"

	"go.uber.org/zap"

	"github.com/imagewand/imagewand/internal/geometry"
	"github.com/imagewand/imagewand/internal/imaging"
)

// Stack Controller: nested grouping over two independently toggled
// scopes. "(" / ")" group the image list, "{" / "}" group settings
// snapshots. The respect-parenthesis setting couples them: an image push
// also pushes settings, and an image pop also pops them.
//
// The coupling is deliberately asymmetric, faithfully so: on "(" the
// toggle is read from the settings in effect going into the push, but on
// ")" it is read from the snapshot on top of the settings stack — the
// one the matching "{" saved. Changing the toggle inside a group
// therefore affects neither that group's entry nor its exit.

// pushImages saves the working list on the image-list stack and starts
// an empty one. At the depth limit the push is refused and the state is
// left untouched.
func (ctx *Context) pushImages() {
	if len(ctx.imageStack) >= maxStackDepth {
		ctx.sink.Reportf(SeverityError, CodeNestedTooDeeply, "image group nested deeper than %d", maxStackDepth)
		return
	}
	ctx.imageStack = append(ctx.imageStack, ctx.images)
	ctx.images = nil

	if ctx.settings.IsSet(KeyRespectParens) {
		ctx.pushSettings()
	}
}

// popImages restores the most recent saved list, appending the current
// working list onto its tail.
func (ctx *Context) popImages() {
	n := len(ctx.imageStack)
	if n == 0 {
		ctx.sink.Report(SeverityError, CodeUnbalancedGrouping, "')' without matching '('")
		return
	}
	saved := ctx.imageStack[n-1]
	ctx.imageStack = ctx.imageStack[:n-1]
	ctx.images = append(saved, ctx.images...)

	if m := len(ctx.settingsStack); m > 0 {
		if ctx.settingsStack[m-1].IsSet(KeyRespectParens) {
			ctx.popSettings()
		}
	}
}

// pushSettings snapshots the settings scope: the original store goes on
// the stack and a clone becomes current, so mutations inside the group
// never reach the snapshot.
func (ctx *Context) pushSettings() {
	if len(ctx.settingsStack) >= maxStackDepth {
		ctx.sink.Reportf(SeverityError, CodeNestedTooDeeply, "settings group nested deeper than %d", maxStackDepth)
		return
	}
	original := ctx.settings
	ctx.settingsStack = append(ctx.settingsStack, original)
	ctx.settings = original.Clone()
}

// popSettings discards the current store, restores the saved snapshot,
// and re-derives the draw and quantize defaults from it.
func (ctx *Context) popSettings() {
	n := len(ctx.settingsStack)
	if n == 0 {
		ctx.sink.Report(SeverityError, CodeUnbalancedGrouping, "'}' without matching '{'")
		return
	}
	ctx.settings = ctx.settingsStack[n-1]
	ctx.settingsStack = ctx.settingsStack[:n-1]
	ctx.draw = deriveDrawDefaults(ctx.settings)
	ctx.quantize = deriveQuantizeDefaults(ctx.settings)
}

// cloneImages duplicates images selected from the top of the image-list
// stack — the list saved by the innermost open "(" — and appends the
// clones to the working list. "+clone" selects the last image.
func (ctx *Context) cloneImages(normal bool, arg string) {
	if !normal {
		arg = "-1"
	}
	if len(ctx.imageStack) == 0 {
		ctx.sink.Report(SeverityError, CodeNoSourceToClone, "no open image group to clone from")
		return
	}
	source := ctx.imageStack[len(ctx.imageStack)-1]
	if len(source) == 0 {
		ctx.sink.Report(SeverityError, CodeNoSourceToClone, "saved image list is empty")
		return
	}
	indexes, err := geometry.ParseSceneList(arg, len(source))
	if err != nil {
		ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "clone: %v", err)
		return
	}
	for _, i := range indexes {
		ctx.images = append(ctx.images, source[i].Clone())
	}
}

// readImages loads a source into a fresh sequence appended to the
// working list. With the ping setting on, only headers are decoded.
func (ctx *Context) readImages(arg string) {
	seq, err := imaging.Load(arg, ctx.settings.Bool(KeyPing))
	if err != nil {
		ctx.sink.Reportf(SeverityError, CodeDelegateFailed, "read %q: %v", arg, err)
		return
	}
	ctx.images = append(ctx.images, seq...)
}

// listCategory logs an introspection listing. Unknown categories are a
// reported error.
func (ctx *Context) listCategory(arg string) {
	switch strings.ToLower(arg) {
	case "transform", "transforms":
		for _, name := range imaging.TransformNames() {
			ctx.log.Info("transform", zap.String("name", name))
		}
	case "option", "options":
		for _, name := range OptionNames() {
			ctx.log.Info("option", zap.String("name", name))
		}
	case "format", "formats":
		for _, name := range []string{"gif", "jpeg", "png"} {
			ctx.log.Info("format", zap.String("name", name))
		}
	case "color", "colors":
		for _, name := range imaging.ColorNames() {
			ctx.log.Info("color", zap.String("name", name))
		}
	default:
		ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "unknown list category %q", arg)
	}
}
