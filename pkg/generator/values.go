// Package generator implements the random table generation engine: value
// generators, the missing-value category selector, the row builder and the
// sequential or parallel table executor.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/TFMV/randcsv/pkg/core"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// FloatOffset is subtracted from the requested length to get the number of
// fractional digits of a generated float.
const FloatOffset = 2

func checkLength(what string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: number of %s must be positive, got %d", core.ErrInvalidArgument, what, n)
	}
	return nil
}

// String returns n letters drawn uniformly, with replacement, from a-z and A-Z.
func String(r *rand.Rand, n int) (string, error) {
	if err := checkLength("characters", n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[r.IntN(len(letters))]
	}
	return string(b), nil
}

// Integer returns the decimal text of an integer with exactly n digits,
// drawn uniformly from [10^(n-1), 10^n-1]. A uniform leading digit in 1-9
// followed by uniform digits in 0-9 has that distribution for any n.
func Integer(r *rand.Rand, n int) (string, error) {
	if err := checkLength("digits", n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	b[0] = byte('1' + r.IntN(9))
	for i := 1; i < n; i++ {
		b[i] = byte('0' + r.IntN(10))
	}
	return string(b), nil
}

// Float formats a uniform value in [0,1) with n-FloatOffset fractional
// digits, floored at zero.
func Float(r *rand.Rand, n int) (string, error) {
	if err := checkLength("decimal places", n); err != nil {
		return "", err
	}
	return strconv.FormatFloat(r.Float64(), 'f', FractionalDigits(n), 64), nil
}

// FractionalDigits returns the number of fractional digits Float uses for
// the requested length n.
func FractionalDigits(n int) int {
	return max(n-FloatOffset, 0)
}

// Value generates a regular cell of the given data type.
func Value(r *rand.Rand, dt core.DataType, n int) (core.Cell, error) {
	var (
		text string
		kind core.CellKind
		err  error
	)
	switch dt {
	case core.String:
		text, err = String(r, n)
		kind = core.KindString
	case core.Integer:
		text, err = Integer(r, n)
		kind = core.KindInteger
	case core.Float:
		text, err = Float(r, n)
		kind = core.KindFloat
	default:
		return core.Cell{}, fmt.Errorf("%w: no generator for data type %s", core.ErrInvalidState, dt)
	}
	if err != nil {
		return core.Cell{}, err
	}
	return core.Cell{Kind: kind, Text: text}, nil
}
