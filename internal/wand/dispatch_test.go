package wand

import (
	"image"
	imagecolor "image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagewand/imagewand/internal/imaging"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Class
	}{
		{"quality", ClassSetting},
		{"respect-parenthesis", ClassSetting},
		{"blur", ClassSimple},
		{"sparse-color", ClassSimple},
		{"append", ClassList},
		{"swap", ClassList},
		{"(", ClassControl},
		{"clone", ClassControl},
		{"read", ClassControl},
		{"no-such-option", ClassNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name).Class)
		})
	}
}

func TestClassify_ArgumentCounts(t *testing.T) {
	assert.Equal(t, 1, Classify("blur").NArgs)
	assert.Equal(t, 2, Classify("sparse-color").NArgs)
	assert.Equal(t, 0, Classify("flip").NArgs)
	assert.True(t, Classify("clone").PlusNoArg)
	assert.True(t, Classify("delete").PlusNoArg)
	assert.False(t, Classify("blur").PlusNoArg)
}

func TestApplySetting(t *testing.T) {
	ctx := New(nil)

	ApplySetting(ctx, "-quality", "85")
	assert.Equal(t, "85", ctx.Settings().Get(KeyQuality))

	ApplySetting(ctx, "+quality", "")
	assert.Equal(t, "92", ctx.Settings().Get(KeyQuality), "plus form restores the default")

	ApplySetting(ctx, "-background", "blue")
	assert.Equal(t, imagecolor.NRGBA{0, 0, 255, 255}, ctx.Settings().Background)

	ApplySetting(ctx, "-background", "not-a-color")
	records := ctx.Sink().Records()
	require.NotEmpty(t, records)
	assert.Equal(t, CodeInvalidArgument, records[len(records)-1].Code)
	assert.Equal(t, imagecolor.NRGBA{0, 0, 255, 255}, ctx.Settings().Background,
		"a rejected value leaves the previous one in place")
}

func TestApplySetting_Unknown(t *testing.T) {
	ctx := New(nil)

	ApplySetting(ctx, "-frobnicate", "1")

	records := ctx.Sink().Records()
	require.Len(t, records, 1)
	assert.Equal(t, CodeUnrecognizedOption, records[0].Code)
}

func TestApplyPerImageOperator_PreservesCount(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"), testImage("c"))

	ApplyPerImageOperator(ctx, "-negate", "", "")

	assert.Len(t, ctx.Images(), 3)
	assert.Equal(t, []string{"a", "b", "c"}, labels(ctx.Images()))
	assert.False(t, ctx.Sink().Drain(false))
}

func TestApplyPerImageOperator_SpliceOneWithMany(t *testing.T) {
	ctx := New(nil)
	big := imaging.NewImage(image.NewNRGBA(image.Rect(0, 0, 20, 10)))
	big.Label = "big"
	ctx.AppendImages(testImage("a"), big, testImage("b"))

	// 20x10 split into 10x10 tiles yields 2 images in the middle slot.
	ApplyPerImageOperator(ctx, "-crop", "10x10", "")

	require.Len(t, ctx.Images(), 4)
	assert.Equal(t, []string{"a", "big", "big", "b"}, labels(ctx.Images()))
}

func TestApplyPerImageOperator_ParseErrorAbortsOption(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"))

	ApplyPerImageOperator(ctx, "-blur", "bogus", "")

	records := ctx.Sink().Records()
	require.Len(t, records, 1, "a malformed argument reports once, not per image")
	assert.Equal(t, CodeInvalidArgument, records[0].Code)
	assert.Len(t, ctx.Images(), 2)
}

func TestApplyPerImageOperator_DelegateErrorSkipsOneImage(t *testing.T) {
	ctx := New(nil)
	probed := &imaging.Image{Width: 10, Height: 10, Colorspace: "rgb", Attrs: map[string]string{}}
	probed.Label = "probed"
	ctx.AppendImages(testImage("a"), probed, testImage("b"))

	ApplyPerImageOperator(ctx, "-negate", "", "")

	records := ctx.Sink().Records()
	require.Len(t, records, 1)
	assert.Equal(t, CodeDelegateFailed, records[0].Code)
	// The failing image stays in place untouched; its neighbors are processed.
	assert.Equal(t, []string{"a", "probed", "b"}, labels(ctx.Images()))
}

func TestApplyPerImageOperator_EmptyListPanics(t *testing.T) {
	ctx := New(nil)

	assert.Panics(t, func() { ApplyPerImageOperator(ctx, "-negate", "", "") })
	assert.Panics(t, func() { ApplyListOperator(ctx, "-reverse", "", "") })
}

func TestApplyPerImageOperator_Unknown(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"))

	ApplyPerImageOperator(ctx, "-frobnicate", "", "")

	records := ctx.Sink().Records()
	require.Len(t, records, 1)
	assert.Equal(t, CodeUnrecognizedOption, records[0].Code)
}

func TestApplyPerImageOperator_SparseColor(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"))

	ApplyPerImageOperator(ctx, "-sparse-color", "voronoi", "0,0,red 7,7,blue")

	require.False(t, ctx.Sink().Drain(false))
	require.Len(t, ctx.Images(), 1)
	r, _, _, _ := ctx.Images()[0].Pix.At(0, 0).RGBA()
	assert.Equal(t, uint8(255), uint8(r>>8))
}

func TestApplyPerImageOperator_Repage(t *testing.T) {
	ctx := New(nil)
	im := testImage("a")
	ctx.AppendImages(im)

	ApplyPerImageOperator(ctx, "-repage", "+3+4", "")
	assert.Equal(t, image.Pt(3, 4), im.Page)

	ApplyPerImageOperator(ctx, "+repage", "", "")
	assert.Equal(t, image.Point{}, im.Page)
}

func TestApplyListOperator_Reverse(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"), testImage("c"))

	ApplyListOperator(ctx, "-reverse", "", "")

	assert.Equal(t, []string{"c", "b", "a"}, labels(ctx.Images()))
}

func TestApplyListOperator_Delete(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"), testImage("c"))

	ApplyListOperator(ctx, "-delete", "1", "")
	assert.Equal(t, []string{"a", "c"}, labels(ctx.Images()))

	ApplyListOperator(ctx, "+delete", "", "")
	assert.Equal(t, []string{"a"}, labels(ctx.Images()))
}

func TestApplyListOperator_Swap(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"), testImage("c"))

	ApplyListOperator(ctx, "-swap", "0,2", "")
	assert.Equal(t, []string{"c", "b", "a"}, labels(ctx.Images()))

	ApplyListOperator(ctx, "+swap", "", "")
	assert.Equal(t, []string{"c", "a", "b"}, labels(ctx.Images()))
}

func TestApplyListOperator_Duplicate(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"))

	ApplyListOperator(ctx, "-duplicate", "1", "")

	assert.Equal(t, []string{"a", "b", "a", "b"}, labels(ctx.Images()))
}

func TestApplyListOperator_AppendCollapsesList(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"))

	ApplyListOperator(ctx, "-append", "", "")

	require.Len(t, ctx.Images(), 1)
	assert.Equal(t, 16, ctx.Images()[0].Height, "two 8px images stacked vertically")
}

func TestApplyListOperator_WriteLeavesListIntact(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"))

	dest := filepath.Join(t.TempDir(), "out.png")
	ApplyListOperator(ctx, "-write", dest, "")

	assert.False(t, ctx.Sink().Drain(false))
	assert.Len(t, ctx.Images(), 2, "write must not consume the list")
}

func TestApplyControl_GroupingAndClone(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"), testImage("b"))

	ApplyControl(ctx, "(", "")
	ApplyControl(ctx, "+clone", "")
	ApplyPerImageOperator(ctx, "-flip", "", "")
	ApplyControl(ctx, ")", "")

	assert.Equal(t, []string{"a", "b", "b"}, labels(ctx.Images()))
	assert.False(t, ctx.Sink().Drain(false))
}

func TestApplyControl_Noop(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"))

	for _, tok := range []string{"-noop", "-sans", "-sans0", "-sans2"} {
		ApplyControl(ctx, tok, "")
	}

	assert.Equal(t, []string{"a"}, labels(ctx.Images()))
	assert.Empty(t, ctx.Sink().Records())
}

func TestFatalBlocksDispatch(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"))

	ReportFatal(ctx, CodeAllocationFailure, "out of resources")

	ApplySetting(ctx, "-quality", "10")
	ApplyPerImageOperator(ctx, "-negate", "", "")
	ApplyListOperator(ctx, "-reverse", "", "")
	ApplyControl(ctx, "(", "")

	assert.Equal(t, "92", ctx.Settings().Get(KeyQuality))
	assert.Empty(t, ctx.imageStack)
	require.Len(t, ctx.Sink().Records(), 1, "blocked dispatch must not add records")
	assert.True(t, ctx.DrainExceptions(false), "fatal severity blocks the run")
}

func TestSettingsSyncBeforeOperator(t *testing.T) {
	ctx := New(nil)
	ctx.AppendImages(testImage("a"))

	ApplySetting(ctx, "-background", "red")
	ApplyPerImageOperator(ctx, "-negate", "", "")

	assert.Equal(t, imagecolor.NRGBA{255, 0, 0, 255}, ctx.Images()[0].Background)
}
