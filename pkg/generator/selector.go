package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/TFMV/randcsv/pkg/core"
)

// Category is the class a cell falls into before its value is produced.
type Category int

const (
	Regular Category = iota
	MissingNaN
	MissingEmpty
)

func (c Category) String() string {
	switch c {
	case Regular:
		return "regular"
	case MissingNaN:
		return "nan"
	case MissingEmpty:
		return "empty"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// interval is the half-open range [lo, hi) of draws mapped to a category.
type interval struct {
	category Category
	lo, hi   float64
}

// Selector maps a uniform draw in [0,1) to a category. Weights are sorted
// ascending and laid out as cumulative intervals; only the width of each
// interval matters, not its position.
type Selector struct {
	intervals [3]interval
}

// NewSelector builds a selector for the given missing-value frequencies.
func NewSelector(nanFreq, emptyFreq float64) (*Selector, error) {
	for _, f := range []float64{nanFreq, emptyFreq} {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return nil, fmt.Errorf("%w: frequency %v must be in [0, 1]", core.ErrInvalidArgument, f)
		}
	}
	regular := 1 - nanFreq - emptyFreq
	if regular < -sumTolerance {
		return nil, fmt.Errorf("%w: nan frequency + empty frequency must be in [0, 1], got %v",
			core.ErrInvalidArgument, nanFreq+emptyFreq)
	}
	regular = max(regular, 0)

	weights := []struct {
		category Category
		weight   float64
	}{
		{Regular, regular},
		{MissingNaN, nanFreq},
		{MissingEmpty, emptyFreq},
	}
	sort.SliceStable(weights, func(i, j int) bool { return weights[i].weight < weights[j].weight })

	s := &Selector{}
	lo := 0.0
	for i, w := range weights {
		hi := lo + w.weight
		if i == len(weights)-1 {
			hi = 1
		}
		s.intervals[i] = interval{category: w.category, lo: lo, hi: hi}
		lo = hi
	}
	return s, nil
}

const sumTolerance = 1e-9

// Pick returns the category whose interval contains u.
func (s *Selector) Pick(u float64) (Category, error) {
	for _, iv := range s.intervals {
		if iv.lo <= u && u < iv.hi {
			return iv.category, nil
		}
	}
	return 0, fmt.Errorf("%w: draw %v outside every category interval", core.ErrInvalidState, u)
}

// Cell draws a category and produces the matching cell. Regular cells use a
// data type picked uniformly from types.
func (s *Selector) Cell(r *rand.Rand, types []core.DataType, valueLength int) (core.Cell, error) {
	category, err := s.Pick(r.Float64())
	if err != nil {
		return core.Cell{}, err
	}
	switch category {
	case Regular:
		if len(types) == 0 {
			return core.Cell{}, fmt.Errorf("%w: no data types to choose from", core.ErrInvalidState)
		}
		return Value(r, types[r.IntN(len(types))], valueLength)
	case MissingNaN:
		return core.NaNCell(), nil
	case MissingEmpty:
		return core.EmptyCell(), nil
	default:
		return core.Cell{}, fmt.Errorf("%w: unknown category %s", core.ErrInvalidState, category)
	}
}
