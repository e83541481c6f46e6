package wand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSparseArgs_MixedColorsAndNumerics(t *testing.T) {
	// Three control points for a 3-channel image: a named color, a hex
	// color, and three bare channel values.
	values, err := parseSparseArgs("0,0,red 10,10,#00ff00 20,20,0.1,0.2,0.3", 3, "rgb", false)
	require.NoError(t, err)
	require.Len(t, values, 15)

	assert.Equal(t, []float64{0, 0, 1, 0, 0}, values[0:5])
	assert.Equal(t, []float64{10, 10, 0, 1, 0}, values[5:10])
	assert.InDeltaSlice(t, []float64{20, 20, 0.1, 0.2, 0.3}, values[10:15], 1e-9)
}

func TestParseSparseArgs_SingleChannel(t *testing.T) {
	values, err := parseSparseArgs("0,0,0.5 5,5,1.0", 1, "gray", false)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0.5, 5, 5, 1.0}, values)
}

func TestParseSparseArgs_MatteAddsAlpha(t *testing.T) {
	// 4 channels: rgb plus matte. "red" expands to 1,0,0,1.
	values, err := parseSparseArgs("3,4,red", 4, "rgb", true)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 4, 1, 0, 0, 1}, values)
}

func TestParseSparseArgs_QuotedTokens(t *testing.T) {
	values, err := parseSparseArgs(`0,0,'red' 1,1,"#0000ff"`, 3, "rgb", false)
	require.NoError(t, err)
	require.Len(t, values, 10)

	assert.Equal(t, []float64{0, 0, 1, 0, 0}, values[0:5])
	assert.Equal(t, []float64{1, 1, 0, 0, 1}, values[5:10])
}

func TestParseSparseArgs_BadArity(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"empty", ""},
		{"coordinates only", "0,0"},
		{"short channel list", "0,0,0.1,0.2"},
		{"dangling coordinate", "0,0,red 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSparseArgs(tt.arg, 3, "rgb", false)
			assert.ErrorIs(t, err, ErrInvalidArgumentCount)
		})
	}
}

func TestParseSparseArgs_ColorInCoordinatePosition(t *testing.T) {
	// Total token weight still fills whole tuples, so only the second
	// pass can catch the misplaced color.
	_, err := parseSparseArgs("red,0,0", 3, "rgb", false)
	assert.ErrorIs(t, err, ErrUnexpectedColorToken)
}

func TestParseSparseArgs_NothingOnError(t *testing.T) {
	values, err := parseSparseArgs("0,0,red 10,bogus-not-a-number", 3, "rgb", false)
	require.Error(t, err)
	assert.Nil(t, values)
}
