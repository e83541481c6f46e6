package wand

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Class partitions options into the four mutually exclusive dispatch
// modes. Classification of a name into a class is a table lookup the
// front end performs before calling the matching Apply function.
type Class int

const (
	ClassNone Class = iota
	ClassSetting
	ClassSimple
	ClassList
	ClassControl
)

func (c Class) String() string {
	switch c {
	case ClassSetting:
		return "setting"
	case ClassSimple:
		return "per-image"
	case ClassList:
		return "list"
	case ClassControl:
		return "control"
	}
	return "none"
}

// OptionSpec describes how the front end should feed one option.
type OptionSpec struct {
	Class Class
	// NArgs is how many argument tokens the option consumes.
	NArgs int
	// PlusNoArg marks options whose "+" form consumes no argument
	// (e.g. +clone, +delete, +repage).
	PlusNoArg bool
}

// Classify looks up an option name (without its sigil). The zero spec is
// returned for unknown names.
func Classify(name string) OptionSpec {
	return optionTable[name]
}

// OptionNames returns every known option name, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(optionTable))
	for name := range optionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitOption strips the leading sigil: "-name" is the normal form,
// "+name" the alternate/reset form. A bare name counts as normal.
func splitOption(option string) (string, bool) {
	if option == "" {
		return "", true
	}
	switch option[0] {
	case '-':
		return option[1:], true
	case '+':
		return option[1:], false
	}
	return option, true
}

// errInvalidArgument marks a malformed option argument. It aborts only
// the current option.
var errInvalidArgument = errors.New("invalid argument")

// reportOptionError files a handler error under the matching diagnostic
// code. Parse-class failures and delegate failures are distinguished so
// the per-image loop can abort or continue appropriately.
func reportOptionError(ctx *Context, option string, err error) {
	switch {
	case errors.Is(err, ErrInvalidArgumentCount):
		ctx.sink.Reportf(SeverityError, CodeInvalidArgumentCount, "%s: %v", option, err)
	case errors.Is(err, ErrUnexpectedColorToken):
		ctx.sink.Reportf(SeverityError, CodeUnexpectedColorToken, "%s: %v", option, err)
	case errors.Is(err, errInvalidArgument):
		ctx.sink.Reportf(SeverityError, CodeInvalidArgument, "%s: %v", option, err)
	default:
		ctx.sink.Reportf(SeverityError, CodeDelegateFailed, "%s: %v", option, err)
	}
}

// isParseErr reports whether the error is a malformed-argument failure,
// which aborts the whole option rather than one image's step.
func isParseErr(err error) bool {
	return errors.Is(err, errInvalidArgument) ||
		errors.Is(err, ErrInvalidArgumentCount) ||
		errors.Is(err, ErrUnexpectedColorToken)
}

// ApplySetting processes a setting option: it mutates only the settings
// store (mirroring into the draw/quantize defaults where names overlap)
// and never touches the image list, so it is always legal before any
// image exists. "-name value" sets; "+name" resets to the default.
func ApplySetting(ctx *Context, option, arg string) {
	if ctx.sink.Fatal() {
		return
	}
	name, set := splitOption(option)
	ctx.log.Debug("setting", zap.String("option", option), zap.String("arg", arg))

	h, ok := settingHandlers[name]
	if !ok {
		ctx.sink.Reportf(SeverityError, CodeUnrecognizedOption, "unknown setting %q", option)
		return
	}
	h(ctx, set, arg)
}

// ApplyPerImageOperator applies one simple operator independently to
// every image in the working list, in list order.
//
// The image list must be non-empty; calling with an empty list is a
// caller contract violation and panics. Per-image attributes are synced
// from the settings store once, before the loop. A handler may mutate
// its image in place (nil result), produce a replacement, or produce a
// replacement sequence; the slot is spliced with the produced sequence
// and iteration resumes after its last element, so produced images are
// never revisited. Exactly as many slots are visited as the list had at
// entry: images appended during the pass are not revisited either.
//
// A delegate failure aborts only that image's step, leaving the image in
// its pre-operator state; a malformed argument aborts the whole option.
func ApplyPerImageOperator(ctx *Context, option, arg1, arg2 string) {
	if ctx.sink.Fatal() {
		return
	}
	name, normal := splitOption(option)
	ctx.log.Debug("per-image operator", zap.String("option", option), zap.String("arg1", arg1), zap.String("arg2", arg2))

	h, ok := simpleHandlers[name]
	if !ok {
		ctx.sink.Reportf(SeverityError, CodeUnrecognizedOption, "unknown per-image operator %q", option)
		return
	}
	if len(ctx.images) == 0 {
		panic(fmt.Sprintf("wand: per-image operator %q invoked with empty image list", option))
	}

	ctx.syncImageSettings()

	n := len(ctx.images)
	slot := 0
	for i := 0; i < n; i++ {
		repl, err := h(ctx, ctx.images[slot], normal, arg1, arg2)
		if err != nil {
			reportOptionError(ctx, option, err)
			if isParseErr(err) {
				return
			}
			slot++
			continue
		}
		if repl == nil {
			slot++
			continue
		}
		ctx.images = spliceImages(ctx.images, slot, repl)
		slot += len(repl)
	}
}

// ApplyListOperator applies one operator to the entire working list.
// Attributes are synced once; if the handler produces a non-empty
// replacement the old sequence is atomically discarded in its favor,
// otherwise the list is left as the handler (possibly in place) left it.
// The list must be non-empty; an empty list is a caller contract
// violation and panics.
func ApplyListOperator(ctx *Context, option, arg1, arg2 string) {
	if ctx.sink.Fatal() {
		return
	}
	name, normal := splitOption(option)
	ctx.log.Debug("list operator", zap.String("option", option), zap.String("arg1", arg1), zap.String("arg2", arg2))

	h, ok := listHandlers[name]
	if !ok {
		ctx.sink.Reportf(SeverityError, CodeUnrecognizedOption, "unknown list operator %q", option)
		return
	}
	if len(ctx.images) == 0 {
		panic(fmt.Sprintf("wand: list operator %q invoked with empty image list", option))
	}

	ctx.syncImageSettings()

	repl, err := h(ctx, ctx.images, normal, arg1, arg2)
	if err != nil {
		reportOptionError(ctx, option, err)
		return
	}
	if len(repl) > 0 {
		ctx.images = repl
	}
}

// ApplyControl processes grouping, stack, clone, read, no-op and
// introspection options — the only class permitted with an empty list.
func ApplyControl(ctx *Context, token, arg string) {
	if ctx.sink.Fatal() {
		return
	}
	ctx.log.Debug("control", zap.String("token", token), zap.String("arg", arg))

	switch token {
	case "(":
		ctx.pushImages()
		return
	case ")":
		ctx.popImages()
		return
	case "{":
		ctx.pushSettings()
		return
	case "}":
		ctx.popSettings()
		return
	case "--":
		ctx.readImages(arg)
		return
	}

	name, normal := splitOption(token)
	switch name {
	case "clone":
		ctx.cloneImages(normal, arg)
	case "read":
		ctx.readImages(arg)
	case "noop", "sans", "sans0", "sans2":
		// Deliberate no-ops.
	case "list":
		ctx.listCategory(arg)
	default:
		ctx.sink.Reportf(SeverityError, CodeUnrecognizedOption, "unknown control option %q", token)
	}
}

// ReportFatal records an unrecoverable failure (resource exhaustion or a
// fatal delegate report). All subsequent option dispatch is refused.
func ReportFatal(ctx *Context, code, context string) {
	ctx.sink.Report(SeverityFatal, code, context)
}
