package wand

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/imagewand/imagewand/internal/imaging"
)

// Errors raised by the sparse argument mini-parser. Both abort the
// option with no partial result.
var (
	ErrInvalidArgumentCount = errors.New("argument count is not a multiple of the tuple arity")
	ErrUnexpectedColorToken = errors.New("color found where a coordinate was expected")
)

// parseSparseArgs converts a mixed coordinate/color argument string like
//
//	"0,0,red 10,10,#00ff00 20,20,0.1,0.2,0.3"
//
// into a flat numeric array for sparse interpolation. Each group is
// (x, y, color): a color given as a name or #hex expands to exactly
// channels normalized components; given as channels consecutive bare
// numbers they are taken literally. channels must be 1-5, derived from
// the target image's color model.
//
// Two explicit passes: the first counts tokens to size the result and
// validate the tuple arity before anything is allocated, the second
// fills the array and re-checks that colors do not appear in coordinate
// positions.
func parseSparseArgs(arg string, channels int, colorspace string, matte bool) ([]float64, error) {
	arity := 2 + channels

	// Pass 1: count.
	total := 0
	for tok, rest := sparseToken(arg); tok != ""; tok, rest = sparseToken(rest) {
		if isColorToken(tok) {
			total += channels
		} else {
			total++
		}
	}
	if total == 0 || total%arity != 0 {
		return nil, fmt.Errorf("%w: %d values, arity %d", ErrInvalidArgumentCount, total, arity)
	}

	// Pass 2: fill.
	out := make([]float64, 0, total)
	rest := arg
	var tok string
	for len(out) < total {
		// X then Y coordinate; a color here is malformed input.
		for i := 0; i < 2; i++ {
			tok, rest = sparseToken(rest)
			if tok == "" {
				return nil, fmt.Errorf("%w: truncated input", ErrInvalidArgumentCount)
			}
			if isColorToken(tok) {
				return nil, fmt.Errorf("%w: %q", ErrUnexpectedColorToken, tok)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid coordinate %q: %w", tok, err)
			}
			out = append(out, v)
		}

		tok, rest = sparseToken(rest)
		if tok == "" {
			return nil, fmt.Errorf("%w: truncated input", ErrInvalidArgumentCount)
		}
		if isColorToken(tok) {
			c, alpha, ok := imaging.ParseColor(tok)
			if !ok {
				return nil, fmt.Errorf("invalid color %q", tok)
			}
			out = append(out, imaging.ChannelValues(c, alpha, colorspace, matte)...)
			continue
		}
		// Bare numeric channel values, channels of them, the first
		// already in hand.
		for i := 0; i < channels; i++ {
			if i > 0 {
				tok, rest = sparseToken(rest)
				if tok == "" || isColorToken(tok) {
					return nil, fmt.Errorf("%w: expected %d channel values", ErrInvalidArgumentCount, channels)
				}
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid channel value %q: %w", tok, err)
			}
			out = append(out, v)
		}
	}
	if len(out) != total {
		return nil, fmt.Errorf("%w: parsed %d of %d values", ErrInvalidArgumentCount, len(out), total)
	}
	return out, nil
}

// sparseToken returns the next token and the remaining input. Tokens are
// separated by commas and whitespace; single- or double-quoted tokens
// keep their content verbatim.
func sparseToken(s string) (string, string) {
	i := 0
	for i < len(s) && isSeparator(s[i]) {
		i++
	}
	if i == len(s) {
		return "", ""
	}

	if q := s[i]; q == '\'' || q == '"' {
		j := i + 1
		for j < len(s) && s[j] != q {
			j++
		}
		tok := s[i+1 : j]
		if j < len(s) {
			j++
		}
		return tok, s[j:]
	}

	j := i
	for j < len(s) && !isSeparator(s[j]) {
		j++
	}
	return s[i:j], s[j:]
}

func isSeparator(c byte) bool {
	return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isColorToken reports whether a token is a color specification rather
// than a bare number: it starts with a letter or '#'.
func isColorToken(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '#' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
